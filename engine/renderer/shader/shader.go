package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/gogpu/naga"
	"go.uber.org/zap"
)

// Stage identifies the pipeline stage an entry point runs in.
type Stage int

const (
	// StageVertex is a @vertex entry point.
	StageVertex Stage = iota

	// StageFragment is a @fragment entry point.
	StageFragment

	// StageCompute is a @compute entry point.
	StageCompute
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	}
	return "unknown"
}

var (
	// ErrEntryPointNotFound is returned when a requested function is not defined by any loaded module.
	ErrEntryPointNotFound = errors.New("shader: entry point not found")

	// ErrStageMismatch is returned when a function exists but runs in a different stage than requested.
	ErrStageMismatch = errors.New("shader: entry point has the wrong stage")
)

// Function is one entry point of a compiled shader module.
type Function struct {
	// Name is the WGSL function name.
	Name string

	// Stage is the pipeline stage declared by the function's attribute.
	Stage Stage

	// WorkgroupSize is the @workgroup_size of compute functions, [1, 1, 1] otherwise.
	WorkgroupSize [3]uint32

	// Module is the compiled module that defines the function.
	Module gpu.ShaderModule

	// File is the source file the function was declared in.
	File string
}

// Library is the set of shader functions compiled from a directory of WGSL files.
type Library interface {
	// Function looks up an entry point by name.
	//
	// Parameters:
	//   - name: the WGSL function name
	//
	// Returns:
	//   - Function: the entry point
	//   - error: ErrEntryPointNotFound if no loaded module defines name
	Function(name string) (Function, error)

	// StageFunction looks up an entry point by name and checks its stage.
	//
	// Returns:
	//   - Function: the entry point
	//   - error: ErrEntryPointNotFound or ErrStageMismatch
	StageFunction(name string, stage Stage) (Function, error)

	// Functions returns every entry point name, sorted.
	Functions() []string

	// Source returns the pre-processed source of a loaded file, or "" if it was not loaded.
	Source(file string) string

	// Release releases every compiled module.
	Release()
}

type library struct {
	functions map[string]Function
	sources   map[string]string
	modules   []gpu.ShaderModule
}

var _ Library = &library{}

type loadConfig struct {
	includes map[string]string
	validate bool
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithIncludes registers WGSL sources that files can pull in with an include directive.
func WithIncludes(includes map[string]string) LoadOption {
	return func(c *loadConfig) {
		for k, v := range includes {
			c.includes[k] = v
		}
	}
}

// WithValidation compiles every file with naga before handing it to the device,
// so WGSL errors are reported with the file name before pipeline creation.
func WithValidation(validate bool) LoadOption {
	return func(c *loadConfig) {
		c.validate = validate
	}
}

// Load compiles every *.wgsl file at the root of fsys into a shader module and indexes
// its entry points. Files are processed in name order.
//
// Parameters:
//   - device: the device that compiles modules
//   - fsys: the file system holding the WGSL sources
//   - options: functional options
//
// Returns:
//   - Library: the loaded library
//   - error: an error if no file is found, a file fails to pre-process or validate,
//     the device rejects a module, or two files define the same entry point
func Load(device gpu.Device, fsys fs.FS, options ...LoadOption) (Library, error) {
	cfg := &loadConfig{includes: make(map[string]string)}
	for _, opt := range options {
		opt(cfg)
	}

	files, err := fs.Glob(fsys, "*.wgsl")
	if err != nil {
		return nil, fmt.Errorf("list shader files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("shader: no .wgsl files found")
	}
	sort.Strings(files)

	lib := &library{
		functions: make(map[string]Function),
		sources:   make(map[string]string),
	}
	pp := NewPreProcessor(cfg.includes)

	for _, file := range files {
		if err := lib.loadFile(device, fsys, pp, file, cfg.validate); err != nil {
			lib.Release()
			return nil, err
		}
	}

	common.Logger().Debug("shader library loaded",
		zap.Int("files", len(files)),
		zap.Int("functions", len(lib.functions)),
	)
	return lib, nil
}

func (l *library) loadFile(device gpu.Device, fsys fs.FS, pp PreProcessor, file string, validate bool) error {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read shader %s: %w", file, err)
	}
	source, err := pp.Process(string(data))
	if err != nil {
		return fmt.Errorf("pre-process shader %s: %w", file, err)
	}
	if validate {
		if _, err := naga.Compile(source); err != nil {
			return fmt.Errorf("validate shader %s: %w", file, err)
		}
	}

	entries := parseEntryPoints(source)
	for _, ep := range entries {
		if prev, ok := l.functions[ep.name]; ok {
			return fmt.Errorf("shader: entry point %s defined in both %s and %s", ep.name, prev.File, file)
		}
	}

	module, err := device.CreateShaderModule(path.Base(file), source)
	if err != nil {
		return err
	}
	l.modules = append(l.modules, module)
	l.sources[file] = source

	for _, ep := range entries {
		l.functions[ep.name] = Function{
			Name:          ep.name,
			Stage:         ep.stage,
			WorkgroupSize: ep.workgroupSize,
			Module:        module,
			File:          file,
		}
	}
	return nil
}

func (l *library) Function(name string) (Function, error) {
	fn, ok := l.functions[name]
	if !ok {
		return Function{}, fmt.Errorf("%w: %s", ErrEntryPointNotFound, name)
	}
	return fn, nil
}

func (l *library) StageFunction(name string, stage Stage) (Function, error) {
	fn, err := l.Function(name)
	if err != nil {
		return Function{}, err
	}
	if fn.Stage != stage {
		return Function{}, fmt.Errorf("%w: %s is a %s function, wanted %s", ErrStageMismatch, name, fn.Stage, stage)
	}
	return fn, nil
}

func (l *library) Functions() []string {
	names := make([]string, 0, len(l.functions))
	for name := range l.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *library) Source(file string) string {
	return l.sources[file]
}

func (l *library) Release() {
	for i := len(l.modules) - 1; i >= 0; i-- {
		l.modules[i].Release()
	}
	l.modules = nil
	l.functions = map[string]Function{}
}
