package model

import (
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh generation defaults.
const (
	// SphereSegments is the segment count of the instanced UV sphere along both axes.
	SphereSegments = 69

	// SkySlices and SkyStacks tessellate the sky sphere.
	SkySlices = 60
	SkyStacks = 60

	// SkyRadius is the radius of the sky sphere in world units.
	SkyRadius float32 = 150

	// PointVertices is the vertex count of the billboard disc drawn per light.
	PointVertices = 7

	// GroundHalfExtent is half the side length of the ground plane.
	GroundHalfExtent float32 = 250
)

// IcosahedronRadius is the circumradius that gives the icosahedron an inscribed
// sphere of radius 1, so a unit light volume fully encloses the light's sphere.
var IcosahedronRadius = float32(1.0 / (math.Sqrt(3) / 12 * (3 + math.Sqrt(5))))

// UVSphere builds a unit sphere with (segments+1)^2 vertices whose indices form a
// single serpentine triangle strip, alternating row direction.
//
// Parameters:
//   - segments: segments per axis
//
// Returns:
//   - Mesh: the sphere with VertexLayout() vertices
func UVSphere(segments int) Mesh {
	n := segments + 1
	verts := make([]byte, n*n*VertexStride)
	i := 0
	for x := 0; x <= segments; x++ {
		for y := 0; y <= segments; y++ {
			xs := float64(x) / float64(segments)
			ys := float64(y) / float64(segments)
			p := mgl32.Vec3{
				float32(math.Cos(xs*2*math.Pi) * math.Sin(ys*math.Pi)),
				float32(math.Cos(ys * math.Pi)),
				float32(math.Sin(xs*2*math.Pi) * math.Sin(ys*math.Pi)),
			}
			off := i * VertexStride
			common.PutVec3(verts, off, p)
			common.PutFloat32(verts, off+12, float32(xs))
			common.PutFloat32(verts, off+16, float32(ys))
			common.PutVec3(verts, off+20, p)
			i++
		}
	}

	indices := make([]uint16, 0, segments*n*2)
	odd := false
	for y := 0; y < segments; y++ {
		if !odd {
			for x := 0; x <= segments; x++ {
				indices = append(indices, uint16(y*n+x), uint16((y+1)*n+x))
			}
		} else {
			for x := segments; x >= 0; x-- {
				indices = append(indices, uint16((y+1)*n+x), uint16(y*n+x))
			}
		}
		odd = !odd
	}

	return NewMesh(
		WithName("Instance Sphere"),
		WithVertexData(verts, n*n),
		WithIndices16(indices),
		WithTopology(gpu.TopologyTriangleStrip),
		WithLayout(VertexLayout()),
	)
}

// Icosahedron builds the 12-vertex, 20-face light volume.
//
// Parameters:
//   - radius: distance from the center to every vertex
//
// Returns:
//   - Mesh: triangle list with PositionVertexLayout() vertices
func Icosahedron(radius float32) Mesh {
	phi := float32((1 + math.Sqrt(5)) / 2)
	corners := []mgl32.Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	verts := make([]byte, len(corners)*PositionVertexStride)
	for i, c := range corners {
		p := c.Normalize().Mul(radius)
		common.PutVec4(verts, i*PositionVertexStride, p.Vec4(1))
	}
	indices := []uint16{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
	return NewMesh(
		WithName("Icosahedron"),
		WithVertexData(verts, len(corners)),
		WithIndices16(indices),
		WithLayout(PositionVertexLayout()),
	)
}

// SkySphere builds a latitude/longitude sphere for the skybox.
//
// Parameters:
//   - slices: longitudinal subdivisions
//   - stacks: latitudinal subdivisions
//   - radius: sphere radius
//
// Returns:
//   - Mesh: triangle list with PositionVertexLayout() vertices
func SkySphere(slices, stacks int, radius float32) Mesh {
	count := (slices + 1) * (stacks + 1)
	verts := make([]byte, count*PositionVertexStride)
	i := 0
	for st := 0; st <= stacks; st++ {
		theta := float64(st) / float64(stacks) * math.Pi
		for sl := 0; sl <= slices; sl++ {
			phi := float64(sl) / float64(slices) * 2 * math.Pi
			p := mgl32.Vec4{
				radius * float32(math.Sin(theta)*math.Cos(phi)),
				radius * float32(math.Cos(theta)),
				radius * float32(math.Sin(theta)*math.Sin(phi)),
				1,
			}
			common.PutVec4(verts, i*PositionVertexStride, p)
			i++
		}
	}

	indices := make([]uint16, 0, slices*stacks*6)
	for st := 0; st < stacks; st++ {
		for sl := 0; sl < slices; sl++ {
			a := uint16(st*(slices+1) + sl)
			b := a + uint16(slices+1)
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return NewMesh(
		WithName("Sky Sphere"),
		WithVertexData(verts, count),
		WithIndices16(indices),
		WithLayout(PositionVertexLayout()),
	)
}

// FullScreenQuad builds the two clip-space triangles used by the directional light pass.
func FullScreenQuad() Mesh {
	pts := []mgl32.Vec2{{-1, -1}, {-1, 1}, {1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	verts := make([]byte, len(pts)*SimpleVertexStride)
	for i, p := range pts {
		common.PutFloat32(verts, i*SimpleVertexStride, p[0])
		common.PutFloat32(verts, i*SimpleVertexStride+4, p[1])
	}
	return NewMesh(
		WithName("Quad"),
		WithVertexData(verts, len(pts)),
		WithLayout(SimpleVertexLayout()),
	)
}

// Ground builds the ground plane quad in the z = 0 plane.
func Ground() Mesh {
	e := GroundHalfExtent
	corners := []struct{ x, y float32 }{{-1, -1}, {-1, 1}, {1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	verts := make([]byte, len(corners)*GroundVertexStride)
	for i, c := range corners {
		off := i * GroundVertexStride
		common.PutVec4(verts, off, mgl32.Vec4{c.x * e, c.y * e, 0, 1})
		common.PutVec3(verts, off+16, mgl32.Vec3{c.x, c.y, 0})
	}
	return NewMesh(
		WithName("Ground"),
		WithVertexData(verts, len(corners)),
		WithLayout(GroundVertexLayout()),
	)
}

// PointDisc builds a disc of n vertices ordered for a triangle strip, alternating
// around the circle from the top.
func PointDisc(n int) Mesh {
	angle := 2 * math.Pi / float64(n)
	verts := make([]byte, n*SimpleVertexStride)
	for v := 0; v < n; v++ {
		point := -v / 2
		if v%2 == 1 {
			point = (v + 1) / 2
		}
		common.PutFloat32(verts, v*SimpleVertexStride, float32(math.Sin(float64(point)*angle)))
		common.PutFloat32(verts, v*SimpleVertexStride+4, float32(math.Cos(float64(point)*angle)))
	}
	return NewMesh(
		WithName("Point Disc"),
		WithVertexData(verts, n),
		WithTopology(gpu.TopologyTriangleStrip),
		WithLayout(SimpleVertexLayout()),
	)
}
