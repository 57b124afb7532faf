package light

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// ShadowMapResolution is the width and height in texels of the shadow depth texture.
const ShadowMapResolution = 2048

// ShadowMapFormat is the depth format of the shadow map.
const ShadowMapFormat = gpu.FormatDepth16Unorm

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// of the directional light's shadow frustum.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane of the shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane of the shadow projection.
const DefaultShadowFar float32 = 200.0

// ShadowDepthBias is applied by the shadow pipeline to suppress self-shadowing.
// The constant term is in units of the smallest resolvable depth difference.
var ShadowDepthBias = gpu.DepthBias{Constant: 7, SlopeScale: 0.015, Clamp: 0.02}
