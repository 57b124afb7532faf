// Package resource builds every GPU object the renderer needs before the first
// frame: pipelines, static meshes, the agent buffer, the simulation field, the
// shadow map, material textures and the G-buffer set.
package resource

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// Formats are the pixel formats the pipelines and attachments are created with.
type Formats struct {
	// Color is the drawable's color format.
	Color gpu.TextureFormat
	// DepthStencil is the drawable's depth/stencil format. It must carry a stencil aspect.
	DepthStencil gpu.TextureFormat

	Albedo gpu.TextureFormat
	Normal gpu.TextureFormat
	Depth  gpu.TextureFormat

	SampleCount uint32
}

// DefaultFormats returns the G-buffer formats used with a surface of the given formats.
//
// Parameters:
//   - color: the drawable color format
//   - depthStencil: the drawable depth/stencil format
//
// Returns:
//   - Formats: the formats
func DefaultFormats(color, depthStencil gpu.TextureFormat) Formats {
	return Formats{
		Color:        color,
		DepthStencil: depthStencil,
		Albedo:       gpu.FormatRGBA8UnormSrgb,
		Normal:       gpu.FormatRGBA8Snorm,
		Depth:        gpu.FormatR32Float,
		SampleCount:  1,
	}
}
