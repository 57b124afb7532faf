package common

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the active logger. Accessed atomically so that SetLogger can be
// called while the render goroutine is logging.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger installs the logger used by every engine package.
// By default nothing is logged. Passing nil restores the silent default.
//
// Parameters:
//   - l: the zap logger to install
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger installed with SetLogger.
//
// Returns:
//   - *zap.Logger: the active logger, never nil
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
