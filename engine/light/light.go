// Package light holds the fixed set of orbiting point lights shaded by the
// deferred lighting pass, and the constants of the directional shadow map.
package light

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Point light defaults.
const (
	// NumLights is the number of point lights. Light volumes and billboards are
	// drawn instanced with this count.
	NumLights = 15

	// DefaultDistance is the distance of each light from the orbit axis.
	DefaultDistance float32 = 1.2

	// DefaultHeight is the height of every light above the orbit center.
	DefaultHeight float32 = 0

	// DefaultAngleStep is the initial angle between consecutive lights, in radians.
	DefaultAngleStep float32 = 36

	// DefaultSpeed is the magnitude of the angular speed in radians per frame.
	DefaultSpeed float32 = 0.027 * 0.5

	// DefaultRadius is the light volume radius.
	DefaultRadius float32 = 36.0 / 10.0
)

// DefaultColor is the base color of every light.
var DefaultColor = mgl32.Vec3{0.9, 0.8, 0.4}

// PointLight is one light of the set.
type PointLight struct {
	// Original is the position at frame 0, in the group's model space.
	Original mgl32.Vec4
	Data     PointLightData
}

// pointLights is the implementation of the PointLights interface.
type pointLights struct {
	count     int
	distance  float32
	height    float32
	angleStep float32
	speed     float32
	radius    float32
	color     mgl32.Vec3
	rng       *rand.Rand
	lights    []PointLight
}

// PointLights is the immutable set of point lights. Each light orbits the Y axis
// at its own signed speed; only its derived position changes per frame.
type PointLights interface {
	// Count returns the number of lights.
	//
	// Returns:
	//   - int: the light count
	Count() int

	// Lights returns the lights in index order.
	//
	// Returns:
	//   - []PointLight: the lights, which must not be modified
	Lights() []PointLight

	// MarshalData encodes the static per-light data (color, radius, speed).
	//
	// Returns:
	//   - []byte: Count()*PointLightDataSize bytes
	MarshalData() []byte

	// Positions computes the position of every light at frameNumber: each original
	// position is rotated about Y by speed*frameNumber and then transformed by modelView.
	//
	// Parameters:
	//   - frameNumber: frames elapsed since start
	//   - modelView: view times the light group's model matrix
	//   - dst: destination, at least Count() long
	Positions(frameNumber uint64, modelView mgl32.Mat4, dst []mgl32.Vec4)
}

var _ PointLights = &pointLights{}

// NewPointLights creates the light set. With no options it produces NumLights
// lights with the default layout and a random sign for each speed.
//
// Parameters:
//   - options: variadic list of PointLightsBuilderOption functions
//
// Returns:
//   - PointLights: the light set
func NewPointLights(options ...PointLightsBuilderOption) PointLights {
	p := &pointLights{
		count:     NumLights,
		distance:  DefaultDistance,
		height:    DefaultHeight,
		angleStep: DefaultAngleStep,
		speed:     DefaultSpeed,
		radius:    DefaultRadius,
		color:     DefaultColor,
	}
	for _, option := range options {
		option(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	p.lights = make([]PointLight, p.count)
	for i := range p.lights {
		angle := float64(i) * float64(p.angleStep)
		speed := p.speed
		if p.rng.IntN(2) == 0 {
			speed = -speed
		}
		p.lights[i] = PointLight{
			Original: mgl32.Vec4{
				p.distance * float32(math.Sin(angle)),
				p.height,
				p.distance * float32(math.Cos(angle)),
				1,
			},
			Data: PointLightData{Color: p.color, Radius: p.radius, Speed: speed},
		}
	}
	return p
}

func (p *pointLights) Count() int {
	return len(p.lights)
}

func (p *pointLights) Lights() []PointLight {
	return p.lights
}

func (p *pointLights) MarshalData() []byte {
	b := make([]byte, len(p.lights)*PointLightDataSize)
	for i := range p.lights {
		p.lights[i].Data.MarshalTo(b, i*PointLightDataSize)
	}
	return b
}

func (p *pointLights) Positions(frameNumber uint64, modelView mgl32.Mat4, dst []mgl32.Vec4) {
	for i := range p.lights {
		l := &p.lights[i]
		rotation := mgl32.HomogRotate3DY(l.Data.Speed * float32(frameNumber))
		dst[i] = modelView.Mul4x1(rotation.Mul4x1(l.Original))
	}
}
