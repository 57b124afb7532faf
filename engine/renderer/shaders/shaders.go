// Package shaders embeds the renderer's WGSL library.
package shaders

import (
	"embed"
	"io/fs"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
)

//go:embed *.wgsl
var files embed.FS

// FS returns the embedded WGSL files.
func FS() fs.FS {
	return files
}

// Includes returns the shared struct declarations the WGSL files pull in.
func Includes() map[string]string {
	return map[string]string{
		frame.FrameUniformsInclude:  frame.FrameUniformsWGSL,
		model.InstanceDataInclude:   model.InstanceDataSource,
		light.PointLightDataInclude: light.PointLightDataSource,
		simulation.Include:          simulation.Source,
	}
}

// Load compiles the library from fsys, falling back to the embedded files when fsys is nil.
//
// Parameters:
//   - device: the device that compiles modules
//   - fsys: a directory of WGSL overrides, or nil
//   - validate: compile every file with naga first
//
// Returns:
//   - shader.Library: the library
//   - error: the load error
func Load(device gpu.Device, fsys fs.FS, validate bool) (shader.Library, error) {
	if fsys == nil {
		fsys = files
	}
	return shader.Load(device, fsys, shader.WithIncludes(Includes()), shader.WithValidation(validate))
}
