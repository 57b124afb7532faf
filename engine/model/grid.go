package model

import (
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Grid dimensions.
const (
	// DefaultGridDimension is the fallback for any rejected row, column or depth count.
	DefaultGridDimension = 1

	// MaxGridDimension bounds every grid axis (exclusive); the instance buffers are
	// sized for (MaxGridDimension-1)^3 instances.
	MaxGridDimension = 10

	// MaxInstances is the capacity of one frame slot's instance buffer.
	MaxInstances = (MaxGridDimension - 1) * (MaxGridDimension - 1) * (MaxGridDimension - 1)
)

// GridParams is the state the procedural instance animation is computed from.
type GridParams struct {
	Rows, Columns, Depth int

	// InstanceSize scales every instance.
	InstanceSize float32
	// GroupScale scales the spacing between instances.
	GroupScale float32

	// Angle is the frame rotation angle in radians, advanced each frame.
	Angle float32
	// Transformation is the eased animation phase in [0, 1).
	Transformation float32
}

// Count is the number of instances the grid produces.
func (p GridParams) Count() int {
	return p.Rows * p.Columns * p.Depth
}

// GridTransforms are the group transforms shared by every instance of a frame.
type GridTransforms struct {
	// Center is the world position the group rotates around.
	Center mgl32.Vec3
	// Model rotates the group about Center.
	Model mgl32.Mat4
	// LightModel is Model without the move back from Center; the point lights orbit with it.
	LightModel mgl32.Mat4
}

// Animate fills dst with one InstanceData per grid cell and returns the group transforms.
// dst must hold at least p.Count() entries; extra entries are left untouched.
//
// Instances are laid out x-first. The x counter wraps at Rows and the y counter also
// wraps at Rows, so non-cubic grids fold rows into the next layer.
//
// Parameters:
//   - p: the grid and animation state
//   - dst: destination instance records
//
// Returns:
//   - GridTransforms: the shared group transforms
func Animate(p GridParams, dst []InstanceData) GridTransforms {
	n := p.Count()
	rowCount := float32(math.Cbrt(float64(n)))
	center := mgl32.Vec3{0, 4 + rowCount/2, -1 - rowCount*1.5}

	rt := mgl32.Translate3D(center.X(), center.Y(), center.Z())
	rotation := mgl32.HomogRotate3DY(-p.Angle).Mul4(mgl32.HomogRotate3DX(p.Angle))
	rtInv := mgl32.Translate3D(-center.X(), -center.Y(), -center.Z())
	tr := GridTransforms{
		Center:     center,
		LightModel: rt.Mul4(rotation),
	}
	tr.Model = tr.LightModel.Mul4(rtInv)

	xRotate := 360 * common.EaseCircularInOut(p.Transformation)
	yFactor := float32(1)
	if xRotate != 0 {
		yFactor = (0.01*p.Angle + xRotate) / xRotate
	}

	scale := mgl32.Scale3D(p.InstanceSize, p.InstanceSize, p.InstanceSize)
	spacing := 2.5 * p.GroupScale
	ix, iy, iz := 0, 0, 0
	for i := 0; i < n && i < len(dst); i++ {
		if ix == p.Rows {
			ix = 0
			iy++
		}
		if iy == p.Rows {
			iy = 0
			iz++
		}

		x := (float32(ix)-float32(p.Rows)/2.5)*spacing + p.GroupScale
		y := (float32(iy)-float32(p.Columns)/2.5)*spacing + p.GroupScale
		z := (float32(iz)-float32(p.Depth)/2.5)*spacing + p.GroupScale
		pos := center.Add(mgl32.Vec3{x, y, z})

		translate := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
		zrot := mgl32.HomogRotate3DZ(2 * p.Angle * float32(math.Sin(float64(ix))))
		yrot := mgl32.HomogRotate3DY(yFactor * float32(math.Cos(float64(iy))))
		m := tr.Model.Mul4(translate).Mul4(yrot).Mul4(zrot).Mul4(scale)

		f := float64(i) / float64(n)
		dst[i] = InstanceData{
			Transform:       m,
			NormalTransform: common.UpperLeft3(m),
			Color: mgl32.Vec4{
				float32(math.Sin(f)),
				float32(math.Cos(f)),
				float32(math.Sin(2 * math.Pi * f)),
				1,
			},
		}
		ix++
	}
	return tr
}
