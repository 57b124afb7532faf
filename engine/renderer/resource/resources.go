package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"go.uber.org/zap"
)

// Pipelines holds every pipeline the stages bind.
type Pipelines struct {
	// Shadow and GBuffer hold one pipeline per selectable primitive topology.
	Shadow  map[gpu.Topology]pipeline.Pipeline
	GBuffer map[gpu.Topology]pipeline.Pipeline

	Ground           pipeline.Pipeline
	DirectionalLight pipeline.Pipeline
	LightMask        pipeline.Pipeline
	PointLight       pipeline.Pipeline
	Skybox           pipeline.Pipeline
	Points           pipeline.Pipeline

	Init         pipeline.Pipeline
	Advance      pipeline.Pipeline
	Trail        pipeline.Pipeline
	UpdateFamily pipeline.Pipeline
	// Interactions is nil unless the builder was asked for it.
	Interactions pipeline.Pipeline
}

// MeshBuffers is a mesh uploaded to the GPU.
type MeshBuffers struct {
	Mesh     model.Mesh
	Vertices gpu.Buffer
	// Indices is nil for non-indexed meshes.
	Indices gpu.Buffer
}

// Meshes are the static geometry drawn every frame.
type Meshes struct {
	Quad        MeshBuffers
	Ground      MeshBuffers
	PointDisc   MeshBuffers
	Sphere      MeshBuffers
	Icosahedron MeshBuffers
	Sky         MeshBuffers
}

// GBuffer is the set of intermediate targets sized to the drawable. DepthStencil is
// written by the geometry pass and loaded by the composition pass, so it lives here
// rather than with the drawable, which is acquired only after the geometry stream.
type GBuffer struct {
	Albedo       gpu.Texture
	Normal       gpu.Texture
	Depth        gpu.Texture
	DepthStencil gpu.Texture

	Width, Height uint32
}

func (g *GBuffer) release() {
	for _, t := range []gpu.Texture{g.DepthStencil, g.Depth, g.Normal, g.Albedo} {
		if t != nil {
			t.Release()
		}
	}
	*g = GBuffer{}
}

// Resources is everything produced by Builder.Build. It owns every handle it
// holds; Release frees them in reverse creation order.
type Resources struct {
	Formats   Formats
	Pipelines Pipelines
	Meshes    Meshes

	// LightData holds the static per-light color, radius and speed.
	LightData gpu.Buffer
	// LightCount is the number of lights in LightData.
	LightCount int
	// Particles is the agent array shared by every simulation kernel.
	Particles gpu.Buffer
	// ParticleCount is the number of agents in Particles.
	ParticleCount int
	// Field is the trail texture the simulation mutates in place across frames.
	Field     gpu.Texture
	ShadowMap gpu.Texture
	// Textures holds the catalog textures by name.
	Textures map[string]gpu.Texture

	LinearSampler gpu.Sampler
	ShadowSampler gpu.Sampler

	GBuffer GBuffer

	device gpu.Device
	owned  []gpu.Releaser
}

// own records h for release and returns it.
func own[T gpu.Releaser](r *Resources, h T) T {
	r.owned = append(r.owned, h)
	return h
}

// SkyMap is the environment texture sampled by the skybox.
func (r *Resources) SkyMap() gpu.Texture {
	return r.Textures[IrradianceMap]
}

// Resize reallocates the G-buffer set for a drawable of width x height. Nothing else
// is touched. On failure the previous set is kept and the error is returned.
//
// Parameters:
//   - width: drawable width in pixels
//   - height: drawable height in pixels
//
// Returns:
//   - error: the allocation error, if any
func (r *Resources) Resize(width, height int) error {
	w, h := uint32(max(width, 1)), uint32(max(height, 1))
	if r.GBuffer.Albedo != nil && r.GBuffer.Width == w && r.GBuffer.Height == h {
		return nil
	}
	next, err := newGBuffer(r.device, r.Formats, w, h)
	if err != nil {
		return err
	}
	r.GBuffer.release()
	r.GBuffer = next
	common.Logger().Debug("g-buffer reallocated", zap.Uint32("width", w), zap.Uint32("height", h))
	return nil
}

func newGBuffer(device gpu.Device, f Formats, w, h uint32) (GBuffer, error) {
	g := GBuffer{Width: w, Height: h}
	targets := []struct {
		dst    *gpu.Texture
		label  string
		format gpu.TextureFormat
	}{
		{&g.Albedo, "Albedo GBuffer", f.Albedo},
		{&g.Normal, "Normal GBuffer", f.Normal},
		{&g.Depth, "Depth GBuffer", f.Depth},
		{&g.DepthStencil, "Depth Stencil GBuffer", f.DepthStencil},
	}
	for _, t := range targets {
		tex, err := device.CreateTexture(gpu.TextureDesc{
			Label:       t.label,
			Width:       w,
			Height:      h,
			Format:      t.format,
			Usage:       gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
			SampleCount: f.SampleCount,
		})
		if err != nil {
			g.release()
			return GBuffer{}, fmt.Errorf("g-buffer %s: %w", t.label, err)
		}
		*t.dst = tex
	}
	return g, nil
}

// Release frees the G-buffer set and then every other owned handle, newest first.
func (r *Resources) Release() {
	r.GBuffer.release()
	for i := len(r.owned) - 1; i >= 0; i-- {
		r.owned[i].Release()
	}
	r.owned = nil
}
