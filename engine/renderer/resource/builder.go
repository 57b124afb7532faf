package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-deferred/engine/settings"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
	"go.uber.org/zap"
)

// Shader entry points resolved at build time.
const (
	ShadowVertex         = "shadow_vertex"
	GBufferVertex        = "vertexMain"
	GBufferFragment      = "fragmentMain"
	GroundVertex         = "ground_vertex"
	GroundFragment       = "ground_fragment"
	LightingVertex       = "lighting_vertex"
	LightingFragment     = "lighting_fragment"
	LightMaskVertex      = "light_mask_vertex"
	LightMaskFragment    = "light_mask_fragment"
	PointLightVertex     = "deferred_point_lighting_vertex"
	PointLightFragment   = "deferred_point_lighting_fragment_traditional"
	SkyboxVertex         = "skybox_vertex"
	SkyboxFragment       = "skybox_fragment"
	PointVertex          = "point_vertex"
	PointFragment        = "point_fragment"
	InitFunction         = "init_function"
	AdvanceFunction      = "compute_function"
	TrailFunction        = "trail_function"
	UpdateFamilyFunction = "update_family_function"
	InteractionsFunction = "interactions_function"
)

// Builder produces the renderer's Resources.
type Builder interface {
	// Build creates every pipeline, buffer, texture and sampler. Any failure
	// releases what was created so far and is returned wrapped.
	//
	// Returns:
	//   - *Resources: the resources
	//   - error: shader.ErrEntryPointNotFound, ErrMissingTexture or a device error
	Build() (*Resources, error)
}

type builder struct {
	device  gpu.Device
	lib     shader.Library
	catalog Catalog
	formats Formats

	lights        light.PointLights
	particleCount int
	seed          uint64
	width, height int
	interactions  bool

	pipelines int
}

var _ Builder = &builder{}

// NewBuilder creates a Builder for device, resolving functions in lib and textures in catalog.
//
// Parameters:
//   - device: the device that creates every resource
//   - lib: the shader library
//   - catalog: the texture catalog
//   - formats: the attachment formats
//   - options: variadic list of BuilderOption functions
//
// Returns:
//   - Builder: the builder
func NewBuilder(device gpu.Device, lib shader.Library, catalog Catalog, formats Formats, options ...BuilderOption) Builder {
	b := &builder{
		device:        device,
		lib:           lib,
		catalog:       catalog,
		formats:       formats,
		particleCount: simulation.ParticleCount,
		seed:          1,
		width:         1,
		height:        1,
	}
	for _, option := range options {
		option(b)
	}
	if b.lights == nil {
		b.lights = light.NewPointLights()
	}
	if b.formats.SampleCount == 0 {
		b.formats.SampleCount = 1
	}
	return b
}

func (b *builder) Build() (res *Resources, err error) {
	r := &Resources{
		Formats:       b.formats,
		ParticleCount: b.particleCount,
		Textures:      make(map[string]gpu.Texture),
		device:        b.device,
	}
	b.pipelines = 0
	defer func() {
		if err != nil {
			r.Release()
		}
	}()

	if err = b.buildPipelines(r); err != nil {
		return nil, fmt.Errorf("build pipelines: %w", err)
	}
	if err = b.buildMeshes(r); err != nil {
		return nil, fmt.Errorf("build meshes: %w", err)
	}
	if err = b.buildSimulation(r); err != nil {
		return nil, fmt.Errorf("build simulation: %w", err)
	}
	if err = b.buildLights(r); err != nil {
		return nil, fmt.Errorf("build lights: %w", err)
	}
	if err = b.buildTextures(r); err != nil {
		return nil, fmt.Errorf("build textures: %w", err)
	}
	if err = r.Resize(b.width, b.height); err != nil {
		return nil, fmt.Errorf("build g-buffer: %w", err)
	}

	common.Logger().Info("renderer resources built",
		zap.Stringer("color", b.formats.Color),
		zap.Stringer("depth_stencil", b.formats.DepthStencil),
		zap.Int("pipelines", b.pipelines),
		zap.Int("particles", b.particleCount),
		zap.Bool("interactions", b.interactions),
	)
	return r, nil
}

func stripFormat(t gpu.Topology) gpu.IndexFormat {
	if t.IsStrip() {
		return gpu.IndexUint16
	}
	return gpu.IndexUndefined
}

func isTriangles(t gpu.Topology) bool {
	return t == gpu.TopologyTriangleList || t == gpu.TopologyTriangleStrip
}

func (b *builder) render(r *Resources, key, vs, fs string, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	p, err := pipeline.NewRenderPipeline(b.device, b.lib, key, vs, fs, opts...)
	if err != nil {
		return nil, err
	}
	b.pipelines++
	return own(r, p), nil
}

func (b *builder) compute(r *Resources, key, fn string) (pipeline.Pipeline, error) {
	p, err := pipeline.NewComputePipeline(b.device, b.lib, key, fn)
	if err != nil {
		return nil, err
	}
	b.pipelines++
	return own(r, p), nil
}

func (b *builder) buildPipelines(r *Resources) error {
	f := b.formats
	gbufferTargets := []gpu.ColorTarget{
		{Format: f.Albedo, WriteMask: gpu.ColorWriteAll},
		{Format: f.Normal, WriteMask: gpu.ColorWriteAll},
		{Format: f.Depth, WriteMask: gpu.ColorWriteAll},
	}
	color := gpu.ColorTarget{Format: f.Color, WriteMask: gpu.ColorWriteAll}
	var err error

	r.Pipelines.Shadow = make(map[gpu.Topology]pipeline.Pipeline, len(settings.Primitives))
	r.Pipelines.GBuffer = make(map[gpu.Topology]pipeline.Pipeline, len(settings.Primitives))
	for _, topo := range settings.Primitives {
		shadowOpts := []pipeline.PipelineBuilderOption{
			pipeline.WithVertexLayouts(model.ShadowVertexLayout()),
			pipeline.WithDepthStencil(light.ShadowMapFormat, pipeline.ShadowDepth()),
			pipeline.WithTopology(topo),
			pipeline.WithStripIndexFormat(stripFormat(topo)),
			pipeline.WithCullMode(gpu.CullBack),
			pipeline.WithFrontFace(gpu.FrontFaceCCW),
		}
		// Depth bias is only valid for triangle topologies.
		if isTriangles(topo) {
			shadowOpts = append(shadowOpts, pipeline.WithDepthBias(light.ShadowDepthBias))
		}
		if r.Pipelines.Shadow[topo], err = b.render(r, "Shadow "+topo.String(), ShadowVertex, "", shadowOpts...); err != nil {
			return err
		}

		if r.Pipelines.GBuffer[topo], err = b.render(r, "GBuffer "+topo.String(), GBufferVertex, GBufferFragment,
			pipeline.WithVertexLayouts(model.VertexLayout()),
			pipeline.WithColorTargets(gbufferTargets...),
			pipeline.WithDepthStencil(f.DepthStencil, pipeline.GBufferDepthStencil()),
			pipeline.WithTopology(topo),
			pipeline.WithStripIndexFormat(stripFormat(topo)),
			pipeline.WithCullMode(gpu.CullBack),
			pipeline.WithFrontFace(gpu.FrontFaceCCW),
		); err != nil {
			return err
		}
	}

	if r.Pipelines.Ground, err = b.render(r, "Ground", GroundVertex, GroundFragment,
		pipeline.WithVertexLayouts(model.GroundVertexLayout()),
		pipeline.WithColorTargets(gbufferTargets...),
		pipeline.WithDepthStencil(f.DepthStencil, pipeline.GBufferDepthStencil()),
	); err != nil {
		return err
	}

	if r.Pipelines.DirectionalLight, err = b.render(r, "Directional Light", LightingVertex, LightingFragment,
		pipeline.WithVertexLayouts(model.SimpleVertexLayout()),
		pipeline.WithColorTargets(color),
		pipeline.WithDepthStencil(f.DepthStencil, pipeline.DirectionalLightDepthStencil()),
	); err != nil {
		return err
	}

	if r.Pipelines.LightMask, err = b.render(r, "Point Light Mask", LightMaskVertex, LightMaskFragment,
		pipeline.WithVertexLayouts(model.PositionVertexLayout()),
		pipeline.WithColorTargets(gpu.ColorTarget{Format: f.Color, WriteMask: gpu.ColorWriteNone}),
		pipeline.WithDepthStencil(f.DepthStencil, pipeline.LightMaskDepthStencil()),
		pipeline.WithCullMode(gpu.CullFront),
		pipeline.WithFrontFace(gpu.FrontFaceCW),
	); err != nil {
		return err
	}

	additive := pipeline.AdditiveBlend
	if r.Pipelines.PointLight, err = b.render(r, "Point Light", PointLightVertex, PointLightFragment,
		pipeline.WithVertexLayouts(model.PositionVertexLayout()),
		pipeline.WithColorTargets(gpu.ColorTarget{Format: f.Color, Blend: &additive, WriteMask: gpu.ColorWriteAll}),
		pipeline.WithDepthStencil(f.DepthStencil, pipeline.PointLightDepthStencil()),
		pipeline.WithCullMode(gpu.CullBack),
		pipeline.WithFrontFace(gpu.FrontFaceCW),
	); err != nil {
		return err
	}

	if r.Pipelines.Skybox, err = b.render(r, "Skybox", SkyboxVertex, SkyboxFragment,
		pipeline.WithVertexLayouts(model.PositionVertexLayout()),
		pipeline.WithColorTargets(color),
		pipeline.WithDepthStencil(f.DepthStencil, pipeline.DontWriteDepth()),
		pipeline.WithCullMode(gpu.CullFront),
	); err != nil {
		return err
	}

	alpha := pipeline.AlphaAdditiveBlend
	if r.Pipelines.Points, err = b.render(r, "Points", PointVertex, PointFragment,
		pipeline.WithVertexLayouts(model.SimpleVertexLayout()),
		pipeline.WithColorTargets(gpu.ColorTarget{Format: f.Color, Blend: &alpha, WriteMask: gpu.ColorWriteAll}),
		pipeline.WithDepthStencil(f.DepthStencil, pipeline.DontWriteDepth()),
		pipeline.WithTopology(gpu.TopologyTriangleStrip),
	); err != nil {
		return err
	}

	kernels := []struct {
		dst *pipeline.Pipeline
		key string
		fn  string
	}{
		{&r.Pipelines.Init, "Init", InitFunction},
		{&r.Pipelines.Advance, "Advance", AdvanceFunction},
		{&r.Pipelines.Trail, "Trail", TrailFunction},
		{&r.Pipelines.UpdateFamily, "Update Family", UpdateFamilyFunction},
	}
	if b.interactions {
		kernels = append(kernels, struct {
			dst *pipeline.Pipeline
			key string
			fn  string
		}{&r.Pipelines.Interactions, "Interactions", InteractionsFunction})
	}
	for _, k := range kernels {
		if *k.dst, err = b.compute(r, k.key, k.fn); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) upload(r *Resources, m model.Mesh) (MeshBuffers, error) {
	mb := MeshBuffers{Mesh: m}
	vb, err := b.device.CreateBuffer(m.Name()+" Vertices", uint64(len(m.VertexData())), gpu.BufferUsageVertex|gpu.BufferUsageCopyDst)
	if err != nil {
		return mb, err
	}
	mb.Vertices = own(r, vb)
	b.device.WriteBuffer(vb, 0, m.VertexData())

	if m.Indexed() {
		ib, err := b.device.CreateBuffer(m.Name()+" Indices", uint64(len(m.IndexData())), gpu.BufferUsageIndex|gpu.BufferUsageCopyDst)
		if err != nil {
			return mb, err
		}
		mb.Indices = own(r, ib)
		b.device.WriteBuffer(ib, 0, m.IndexData())
	}
	return mb, nil
}

func (b *builder) buildMeshes(r *Resources) error {
	meshes := []struct {
		dst  *MeshBuffers
		mesh model.Mesh
	}{
		{&r.Meshes.Quad, model.FullScreenQuad()},
		{&r.Meshes.Ground, model.Ground()},
		{&r.Meshes.PointDisc, model.PointDisc(model.PointVertices)},
		{&r.Meshes.Sphere, model.UVSphere(model.SphereSegments)},
		{&r.Meshes.Icosahedron, model.Icosahedron(model.IcosahedronRadius)},
		{&r.Meshes.Sky, model.SkySphere(model.SkySlices, model.SkyStacks, model.SkyRadius)},
	}
	for _, m := range meshes {
		mb, err := b.upload(r, m.mesh)
		if err != nil {
			return fmt.Errorf("mesh %s: %w", m.mesh.Name(), err)
		}
		*m.dst = mb
	}
	return nil
}

func (b *builder) buildSimulation(r *Resources) error {
	agents := simulation.SeedAgents(b.particleCount, simulation.FieldWidth, simulation.FieldHeight, b.seed)
	particles, err := b.device.CreateBuffer("Particles", uint64(len(agents)), gpu.BufferUsageStorage|gpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r.Particles = own(r, particles)
	b.device.WriteBuffer(particles, 0, agents)

	field, err := b.device.CreateTexture(gpu.TextureDesc{
		Label:       "Trail Field",
		Width:       simulation.FieldWidth,
		Height:      simulation.FieldHeight,
		Format:      gpu.FormatR32Float,
		Usage:       gpu.TextureUsageStorageBinding | gpu.TextureUsageTextureBinding,
		SampleCount: 1,
	})
	if err != nil {
		return err
	}
	r.Field = own(r, field)
	return nil
}

func (b *builder) buildLights(r *Resources) error {
	data := b.lights.MarshalData()
	buf, err := b.device.CreateBuffer("Light Data", uint64(len(data)), gpu.BufferUsageStorage|gpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r.LightData = own(r, buf)
	r.LightCount = b.lights.Count()
	b.device.WriteBuffer(buf, 0, data)

	shadow, err := b.device.CreateTexture(gpu.TextureDesc{
		Label:       "Shadow Map",
		Width:       light.ShadowMapResolution,
		Height:      light.ShadowMapResolution,
		Format:      light.ShadowMapFormat,
		Usage:       gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
		SampleCount: 1,
	})
	if err != nil {
		return err
	}
	r.ShadowMap = own(r, shadow)

	sampler, err := b.device.CreateSampler(gpu.SamplerDesc{
		Label:   "Shadow Sampler",
		Filter:  gpu.FilterLinear,
		Compare: gpu.CompareLessEqual,
		// Outside the shadow volume reads as lit.
		AddressMode: gpu.AddressClampToEdge,
	})
	if err != nil {
		return err
	}
	r.ShadowSampler = own(r, sampler)
	return nil
}

func (b *builder) buildTextures(r *Resources) error {
	for _, t := range TextureNames {
		staged, err := b.catalog.Texture(t.Name)
		if err != nil {
			return err
		}
		tex, err := b.device.CreateTexture(gpu.TextureDesc{
			Label:       t.Name,
			Width:       staged.Width,
			Height:      staged.Height,
			Format:      t.Format,
			Usage:       gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
			SampleCount: 1,
		})
		if err != nil {
			return fmt.Errorf("texture %s: %w", t.Name, err)
		}
		r.Textures[t.Name] = own(r, tex)
		b.device.WriteTexture(tex, staged.Pixels, staged.Width*4)
	}

	sampler, err := b.device.CreateSampler(gpu.SamplerDesc{
		Label:       "Linear Sampler",
		AddressMode: gpu.AddressRepeat,
		Filter:      gpu.FilterLinear,
	})
	if err != nil {
		return err
	}
	r.LinearSampler = own(r, sampler)
	return nil
}
