// Command oxy-deferred opens a window and runs the deferred renderer: an animated
// grid of instanced spheres over a slime-mold trail field, lit by a shadowing sun
// and orbiting point lights.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shaders"
	"github.com/Carmen-Shannon/oxy-deferred/engine/settings"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
	"github.com/Carmen-Shannon/oxy-deferred/engine/window"
	"go.uber.org/zap"
)

type options struct {
	shaderDir    string
	textureDir   string
	width        int
	height       int
	vsync        bool
	rows         int
	columns      int
	depth        int
	families     int
	particles    int
	interactions bool
	software     bool
	validate     bool
	debug        bool
	profile      bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.shaderDir, "shaders", "", "directory of .wgsl files overriding the embedded shaders")
	flag.StringVar(&o.textureDir, "textures", "", "directory of material textures (BaseColorMap.png, ...); missing ones fall back to solid colors")
	flag.IntVar(&o.width, "width", 1280, "initial window width")
	flag.IntVar(&o.height, "height", 720, "initial window height")
	flag.BoolVar(&o.vsync, "vsync", true, "wait for vertical blank when presenting")
	flag.IntVar(&o.rows, "rows", model.DefaultGridDimension, "instance grid rows")
	flag.IntVar(&o.columns, "columns", model.DefaultGridDimension, "instance grid columns")
	flag.IntVar(&o.depth, "depth", model.DefaultGridDimension, "instance grid depth")
	flag.IntVar(&o.families, "families", simulation.DefaultFamily, "number of active agent families (1-4)")
	flag.IntVar(&o.particles, "particles", simulation.ParticleCount, "agent population")
	flag.BoolVar(&o.interactions, "interactions", false, "let the left mouse button steer agents")
	flag.BoolVar(&o.software, "software", false, "force the software fallback adapter")
	flag.BoolVar(&o.validate, "validate", true, "validate shaders with naga before creating pipelines")
	flag.BoolVar(&o.debug, "debug", false, "development logging and per-frame matrix dumps")
	flag.BoolVar(&o.profile, "profile", false, "log frame statistics every second")
	flag.Parse()
	return o
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	o := parseFlags()

	logger, err := newLogger(o.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	common.SetLogger(logger)

	if err := run(o); err != nil {
		logger.Error("oxy-deferred exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(o options) error {
	w := window.NewWindow(
		window.WithTitle("oxy-deferred"),
		window.WithSize(o.width, o.height),
	)
	defer func() { _ = w.Close() }()

	present := gpu.PresentModeUncapped
	if o.vsync {
		present = gpu.PresentModeVSync
	}
	device := gpu.NewWGPUDevice(w.SurfaceDescriptor(), w.Width(), w.Height(),
		gpu.WithPresentMode(present),
		gpu.WithForceSoftwareRenderer(o.software),
	)
	defer device.Release()

	var shaderFS fs.FS
	if o.shaderDir != "" {
		shaderFS = os.DirFS(o.shaderDir)
	}
	lib, err := shaders.Load(device, shaderFS, o.validate)
	if err != nil {
		return fmt.Errorf("load shaders: %w", err)
	}
	defer lib.Release()

	catalog := resource.NewSolidCatalog()
	if o.textureDir != "" {
		catalog = resource.Layered(resource.NewDirCatalog(os.DirFS(o.textureDir)), catalog)
	}

	s := settings.NewSettings()
	s.SetInstances(o.rows, o.columns, o.depth)
	s.SetFamily(o.families)

	r := renderer.NewRenderer(device, lib, catalog, w.Width(), w.Height(),
		renderer.WithSettings(s),
		renderer.WithParticleCount(o.particles),
		renderer.WithInteractions(o.interactions),
		renderer.WithDebugOutput(o.debug),
	)
	defer r.Release()

	e := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithDevice(device),
		engine.WithRenderer(r),
		engine.WithProfiling(o.profile),
	)
	e.Run()
	return nil
}
