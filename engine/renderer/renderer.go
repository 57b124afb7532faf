package renderer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/stage"
	"github.com/Carmen-Shannon/oxy-deferred/engine/settings"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Animation and lighting constants of the frame loop.
const (
	// FrameRate is the modulus of the frame-rate counter.
	FrameRate = 60

	// AngleStep is added to the group rotation angle every frame, in radians.
	AngleStep float32 = 0.01

	// TransformationSpeed and RotationSpeed advance the two animation phases every frame.
	TransformationSpeed float32 = 0.0007
	RotationSpeed       float32 = 0.004

	// PointSize is the half-size of the light billboards.
	PointSize float32 = 0.2

	PointSpecularIntensity float32 = 1
	SunSpecularIntensity   float32 = 1
	ShininessFactor        float32 = 1
)

// SunColor is the color of the directional light.
var SunColor = mgl32.Vec4{0.8, 0.8, 0.8, 1}

// Stream labels.
const (
	GeometryStreamLabel    = "Compute & Shadow & GBuffer Commands"
	CompositionStreamLabel = "Composition Commands"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	device   gpu.Device
	res      *resource.Resources
	ring     *frame.Ring[*frame.Slot]
	gate     *frame.Gate
	settings settings.Settings
	lights   light.PointLights

	simulation stage.Simulation
	shadow     stage.Shadow
	gbuffer    stage.GBuffer
	lighting   stage.Lighting

	// Guarded by mu: written by the window or camera goroutine, read once per frame.
	camera        camera.CameraData
	shadowCamera  camera.CameraData
	width         int
	height        int
	resizePending bool
	aspect        float32
	projection    mgl32.Mat4

	// Guarded by mu: published by the frame producer for other goroutines.
	last        frame.FrameUniformBlock
	frameNumber uint64
	current     *frame.Slot
	phases      [2]float32

	// Owned by the frame producer.
	angle          float32
	transformation float32
	rotation       float32
	direction      float32
	frameRate      int
	instances      []model.InstanceData
	instanceBytes  []byte
	positions      []mgl32.Vec4

	// Pre-creation config collected from builder options
	clock         func() time.Time
	debug         bool
	interactions  bool
	particleCount int
	seed          uint64
}

// Renderer is the frame orchestrator of the deferred renderer.
//
// Each DrawFrame waits for a free frame slot, advances the animation, rewrites every
// per-frame buffer of the slot and records two command streams: the simulation, shadow
// and G-buffer passes, then, once a drawable is available, the composition pass that
// presents it. The completion of the second stream frees the slot.
type Renderer interface {
	// DrawFrame produces one frame. It blocks while MaxFramesInFlight frames are still
	// on the GPU; cancelling ctx abandons the wait.
	//
	// If no drawable can be acquired the composition stream is still committed, empty,
	// so the slot is freed and the next frame can start.
	//
	// Parameters:
	//   - ctx: bounds the wait for a frame slot and for the drawable
	//
	// Returns:
	//   - error: ctx's error, or a stream creation or commit failure
	DrawFrame(ctx context.Context) error

	// Resize recomputes the aspect ratio and projection. The G-buffer set is reallocated
	// by the next DrawFrame, so Resize is safe to call from the window goroutine while
	// frames are produced on another. A height of 0 is treated as 1.
	//
	// Parameters:
	//   - width: the drawable width in pixels
	//   - height: the drawable height in pixels
	Resize(width, height int)

	// SetCameraData replaces the main camera snapshot read by the next frame.
	SetCameraData(d camera.CameraData)

	// SetShadowCameraData replaces the shadow camera snapshot read by the next frame.
	SetShadowCameraData(d camera.CameraData)

	// Settings returns the UI state the renderer snapshots every frame.
	Settings() settings.Settings

	// Resources returns the GPU objects the renderer owns. DrawFrame replaces the
	// G-buffer set after a Resize, so it must not be read concurrently with DrawFrame.
	Resources() *resource.Resources

	// Simulation returns the simulation stage.
	Simulation() stage.Simulation

	// LastFrameUniforms returns the frame uniforms written by the most recent DrawFrame.
	LastFrameUniforms() frame.FrameUniformBlock

	// Slot returns the frame slot written by the most recent DrawFrame.
	Slot() *frame.Slot

	// FrameNumber is the number of frames started so far.
	FrameNumber() uint64

	// Phases returns the transformation and rotation animation phases, both in [0, 1).
	Phases() (transformation, rotation float32)

	// Aspect returns width / max(height, 1) of the last Resize.
	Aspect() float32

	// InFlight is the number of frames committed and not yet completed.
	InFlight() int

	// Wait blocks until every committed frame has completed, or ctx is done.
	Wait(ctx context.Context) error

	// Release waits for in-flight frames and frees every GPU object the renderer owns.
	// The shader library and the device belong to the caller.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer and builds all of its GPU resources. A build failure
// means the shaders, textures and pipelines do not match, which no frame can recover
// from, so NewRenderer panics. Use Build to receive the error instead.
//
// Parameters:
//   - device: the GPU device
//   - lib: the shader library holding every entry point
//   - catalog: the material texture catalog
//   - width: the initial drawable width
//   - height: the initial drawable height
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(device gpu.Device, lib shader.Library, catalog resource.Catalog, width, height int, options ...RendererBuilderOption) Renderer {
	r, err := Build(device, lib, catalog, width, height, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create renderer: %v", err))
	}
	return r
}

// Build is NewRenderer returning the build error.
//
// Parameters:
//   - device: the GPU device
//   - lib: the shader library holding every entry point
//   - catalog: the material texture catalog
//   - width: the initial drawable width
//   - height: the initial drawable height
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: the resource or frame slot allocation error
func Build(device gpu.Device, lib shader.Library, catalog resource.Catalog, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		device:        device,
		direction:     1,
		clock:         time.Now,
		particleCount: simulation.ParticleCount,
		seed:          1,
		instances:     make([]model.InstanceData, model.MaxInstances),
		instanceBytes: make([]byte, model.MaxInstances*model.InstanceDataSize),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.settings == nil {
		r.settings = settings.NewSettings()
	}
	if r.lights == nil {
		r.lights = light.NewPointLights()
	}
	r.positions = make([]mgl32.Vec4, r.lights.Count())
	r.camera = defaultCamera()
	r.shadowCamera = camera.CameraData{View: mgl32.Ident4(), Projection: mgl32.Ident4(), SkyModel: mgl32.Ident4()}

	res, err := resource.NewBuilder(device, lib, catalog,
		resource.DefaultFormats(device.SurfaceFormat(), device.DepthStencilFormat()),
		resource.WithPointLights(r.lights),
		resource.WithParticleCount(r.particleCount),
		resource.WithSeed(r.seed),
		resource.WithSurfaceSize(width, height),
		resource.WithInteractions(r.interactions),
	).Build()
	if err != nil {
		return nil, err
	}
	r.res = res

	sizes := frame.SlotSizes{
		Instances:          model.MaxInstances * model.InstanceDataSize,
		FrameUniforms:      frame.FrameUniformSize,
		SimulationUniforms: simulation.UniformBlockSize,
		LightPositions:     uint64(r.lights.Count() * light.LightPositionSize),
		Time:               simulation.TimeBlockSize,
		Interactions:       simulation.InteractionBlockSize,
	}
	ring, err := frame.NewRing(frame.MaxFramesInFlight, func(i int) (*frame.Slot, error) {
		return frame.NewSlot(device, i, sizes)
	}, (*frame.Slot).Release)
	if err != nil {
		res.Release()
		return nil, fmt.Errorf("frame slots: %w", err)
	}
	// The first Advance lands on slot 0.
	for ring.Index() != ring.Len()-1 {
		ring.Advance()
	}
	r.ring = ring
	r.current = ring.Current()
	r.gate = frame.NewGate(ring.Len())

	r.simulation = stage.NewSimulation(device, res)
	r.shadow = stage.NewShadow(res)
	r.gbuffer = stage.NewGBuffer(res)
	r.lighting = stage.NewLighting(res)

	r.Resize(width, height)
	r.applyResize()
	return r, nil
}

func defaultCamera() camera.CameraData {
	return camera.CameraData{
		FovY:       mgl32.DegToRad(camera.DefaultFovYDegrees),
		Aspect:     1,
		Near:       camera.DefaultNear,
		Far:        camera.DefaultFar,
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
		SkyModel:   mgl32.Ident4(),
	}
}

// updateProjection must be called with mu held.
func (r *renderer) updateProjection() {
	near := cmp.Or(r.camera.Near, camera.DefaultNear)
	far := cmp.Or(r.camera.Far, camera.DefaultFar)
	r.projection = common.Perspective(mgl32.DegToRad(camera.DefaultFovYDegrees), r.aspect, near, far)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = max(width, 1), max(height, 1)
	r.resizePending = true
	r.aspect = common.Aspect(width, height)
	r.updateProjection()
	aspect := r.aspect
	r.mu.Unlock()

	common.Logger().Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float32("aspect", aspect),
	)
}

// applyResize reallocates the G-buffer set for the last requested size.
// It runs on the frame producer only.
func (r *renderer) applyResize() {
	r.mu.Lock()
	pending, width, height := r.resizePending, r.width, r.height
	r.resizePending = false
	r.mu.Unlock()

	if !pending {
		return
	}
	if err := r.res.Resize(width, height); err != nil {
		common.Logger().Error("g-buffer reallocation failed, keeping previous set", zap.Error(err))
	}
}

func (r *renderer) SetCameraData(d camera.CameraData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clip := d.Near != r.camera.Near || d.Far != r.camera.Far
	r.camera = d
	if clip {
		r.updateProjection()
	}
}

func (r *renderer) SetShadowCameraData(d camera.CameraData) {
	r.mu.Lock()
	r.shadowCamera = d
	r.mu.Unlock()
}

func (r *renderer) Settings() settings.Settings {
	return r.settings
}

func (r *renderer) Resources() *resource.Resources {
	return r.res
}

func (r *renderer) Simulation() stage.Simulation {
	return r.simulation
}

func (r *renderer) LastFrameUniforms() frame.FrameUniformBlock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *renderer) Slot() *frame.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *renderer) FrameNumber() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameNumber
}

func (r *renderer) Phases() (float32, float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phases[0], r.phases[1]
}

func (r *renderer) Aspect() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aspect
}

func (r *renderer) InFlight() int {
	return r.gate.InFlight()
}

func (r *renderer) Wait(ctx context.Context) error {
	return r.gate.Drain(ctx)
}

// stepAnimation advances both animation phases.
func (r *renderer) stepAnimation() {
	r.transformation = common.WrapPhase(r.transformation, r.direction, TransformationSpeed)
	r.rotation = common.WrapPhase(r.rotation, r.direction, RotationSpeed)
}

func (r *renderer) DrawFrame(ctx context.Context) error {
	if err := r.gate.Acquire(ctx); err != nil {
		return fmt.Errorf("wait for frame slot: %w", err)
	}
	r.applyResize()

	r.stepAnimation()
	r.ring.Advance()
	slot := r.ring.Current()
	r.frameRate = (r.frameRate + 1) % FrameRate
	r.angle += AngleStep

	r.mu.Lock()
	r.frameNumber++
	frameNumber := r.frameNumber
	r.current = slot
	r.phases = [2]float32{r.transformation, r.rotation}
	cam, shadowCam := r.camera, r.shadowCamera
	projection := r.projection
	width, height := r.width, r.height
	r.mu.Unlock()

	s := r.settings.Snapshot()

	grid := model.GridParams{
		Rows:           s.Rows,
		Columns:        s.Columns,
		Depth:          s.Depth,
		InstanceSize:   s.InstanceSize,
		GroupScale:     s.GroupScale,
		Angle:          r.angle,
		Transformation: r.transformation,
	}
	count := min(grid.Count(), model.MaxInstances)
	transforms := model.Animate(grid, r.instances[:count])
	for i := 0; i < count; i++ {
		r.instances[i].MarshalTo(r.instanceBytes, i*model.InstanceDataSize)
	}
	r.device.WriteBuffer(slot.Instances, 0, r.instanceBytes[:count*model.InstanceDataSize])

	uniforms := r.frameUniforms(s, cam, shadowCam, projection, width, height)
	r.device.WriteBuffer(slot.FrameUniforms, 0, uniforms.Marshal())

	block := simulation.NewUniformBlock(s.Simulation)
	block.ParticleCount = uint32(r.res.ParticleCount)
	r.device.WriteBuffer(slot.SimulationUniforms, 0, block.Marshal())

	r.lights.Positions(frameNumber, cam.View.Mul4(transforms.LightModel), r.positions)
	r.device.WriteBuffer(slot.LightPositions, 0, light.MarshalPositions(r.positions))

	interaction := simulation.InteractionBlock{
		CursorX: s.CursorX / float32(width) * simulation.FieldWidth,
		CursorY: s.CursorY / float32(height) * simulation.FieldHeight,
		Buttons: s.MouseButtons,
	}
	r.device.WriteBuffer(slot.Interactions, 0, interaction.Marshal())

	r.mu.Lock()
	r.last = uniforms
	r.mu.Unlock()
	if r.debug {
		r.logFrame(frameNumber, uniforms)
	}

	f := stage.Frame{Slot: slot, Instances: uint32(count), Primitive: s.Primitive}

	geometry, err := r.device.NewCommandStream(GeometryStreamLabel)
	if err != nil {
		r.gate.Release()
		return fmt.Errorf("geometry stream: %w", err)
	}
	r.simulation.Encode(geometry, slot, r.clock(), uint32(s.Simulation.Family))
	r.shadow.Encode(geometry, f)
	r.gbuffer.Encode(geometry, f)
	if err := r.device.Commit(geometry, nil); err != nil {
		r.gate.Release()
		return fmt.Errorf("commit geometry stream: %w", err)
	}

	composition, err := r.device.NewCommandStream(CompositionStreamLabel)
	if err != nil {
		r.gate.Release()
		return fmt.Errorf("composition stream: %w", err)
	}
	drawable, acquireErr := r.device.AcquireDrawable(ctx)
	if acquireErr != nil {
		common.Logger().Warn("drawable unavailable, skipping composition",
			zap.Uint64("frame", frameNumber),
			zap.Error(acquireErr),
		)
	} else {
		r.lighting.Encode(composition, f, drawable.Texture())
		composition.PresentDrawable(drawable)
	}
	if err := r.device.Commit(composition, r.gate.Release); err != nil {
		r.gate.Release()
		return fmt.Errorf("commit composition stream: %w", err)
	}

	if acquireErr != nil && (errors.Is(acquireErr, context.Canceled) || errors.Is(acquireErr, context.DeadlineExceeded)) {
		return acquireErr
	}
	return nil
}

// frameUniforms assembles the frame constants from the camera snapshots and settings.
func (r *renderer) frameUniforms(s settings.Snapshot, cam, shadowCam camera.CameraData, projection mgl32.Mat4, width, height int) frame.FrameUniformBlock {
	view := cam.View
	return frame.FrameUniformBlock{
		CameraPos: cam.Position,
		CameraDir: cam.Direction,

		ViewMatrix:           view,
		WorldTransform:       view,
		WorldNormalTransform: common.UpperLeft3(view),
		PerspectiveTransform: projection,
		ProjectionInverse:    projection.Inv(),
		SkyModel:             cam.SkyModel,
		SkyModelView:         view.Mul4(cam.SkyModel),
		// The ground plane sits at the world origin.
		PlaneModelView:       view,
		PlaneNormalModelView: common.UpperLeft3(view),
		ScaleMatrix:          mgl32.Ident4(),

		FramebufferWidth:  uint32(width),
		FramebufferHeight: uint32(height),

		PointSize:              PointSize,
		PointSpecularIntensity: PointSpecularIntensity,

		SunColor:             SunColor,
		SunEyeDirection:      cam.SunEyeDirection,
		SunPosition:          cam.SunLightPosition,
		ShininessFactor:      ShininessFactor,
		SunSpecularIntensity: SunSpecularIntensity,

		ShadowView:       shadowCam.View,
		ShadowProjection: shadowCam.Projection,
		ShadowTransform:  frame.ShadowTextureTransform(),

		TextureScale:  s.TextureScale,
		ColorMixBias:  s.ColorMix,
		MetalnessBias: s.Metalness,
		RoughnessBias: s.Roughness,
	}
}

func (r *renderer) logFrame(frameNumber uint64, u frame.FrameUniformBlock) {
	common.Logger().Debug("frame uniforms",
		zap.Uint64("frame", frameNumber),
		zap.Int("slot", r.ring.Index()),
		zap.Int("frame_rate_counter", r.frameRate),
		zap.Float32("angle", r.angle),
		zap.Float32("transformation", r.transformation),
		zap.Float32s("camera_position", u.CameraPos[:]),
		zap.Float32s("camera_direction", u.CameraDir[:]),
		zap.Float32s("sun_eye_direction", u.SunEyeDirection[:]),
		zap.Float32s("view", u.ViewMatrix[:]),
		zap.Float32s("projection", u.PerspectiveTransform[:]),
		zap.Float32s("sky_modelview", u.SkyModelView[:]),
		zap.Float32s("shadow_view", u.ShadowView[:]),
		zap.Float32s("shadow_projection", u.ShadowProjection[:]),
	)
}

func (r *renderer) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.gate.Drain(ctx); err != nil {
		common.Logger().Warn("releasing renderer with frames in flight", zap.Int("in_flight", r.gate.InFlight()))
	}
	for i := r.ring.Len() - 1; i >= 0; i-- {
		r.ring.At(i).Release()
	}
	r.res.Release()
}
