package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"go.uber.org/zap"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// inFlight, when set, reports the frames submitted and not yet completed.
	inFlight func() int
	last     Stats
}

// Stats are the figures logged at the end of an interval.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
	InFlight    int
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are logged. Values <= 0 keep the default of one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithInFlight adds the number of frames in flight to each report.
func WithInFlight(fn func() int) ProfilerOption {
	return func(p *Profiler) {
		p.inFlight = fn
	}
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
		// TotalAlloc only grows, so its delta is the churn over the interval.
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}
	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		start := p.lastGCCount
		if s.GCCount-start > 256 {
			start = s.GCCount - 256
		}
		for i := start; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}
	if p.inFlight != nil {
		s.InFlight = p.inFlight()
	}

	common.Logger().Info("profiler",
		zap.Float64("fps", s.FPS),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb_s", s.AllocRateMB),
		zap.Uint32("gc", s.GCCount),
		zap.Uint64("gc_last_pause_us", s.LastPauseUs),
		zap.Uint64("gc_max_pause_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB),
		zap.Int("frames_in_flight", s.InFlight),
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics of the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}
