package stage

// Every resource lives in bind group 0. Each pipeline's layout is derived from the
// bindings its entry points use, so a stage binds exactly those slots.
const BindGroup = 0

// SlotVertices is the vertex buffer slot of every mesh.
const SlotVertices = 0

// Compute kernel slots.
const (
	SlotParticles          = 0
	SlotSimulationUniforms = 1
	SlotTime               = 2
	SlotField              = 3
	SlotInteractions       = 4
)

// Render pipeline slots.
const (
	SlotFrameUniforms = 0
	SlotInstances     = 1

	// material maps read by the G-buffer fragment function
	SlotBaseColorMap = 2
	SlotNormalMap    = 3
	SlotMetallicMap  = 4
	SlotRoughnessMap = 5
	SlotAOMap        = 6

	SlotLinearSampler = 7
	SlotFieldTexture  = 8
	SlotShadowMap     = 9
	SlotShadowSampler = 10
	SlotSkyMap        = 11
	SlotLightData     = 12
	SlotLightPosition = 13
	SlotPointMap      = 14

	// G-buffer attachments read back by the composition functions
	SlotAlbedoGBuffer = 1
	SlotNormalGBuffer = 2
	SlotDepthGBuffer  = 3
)
