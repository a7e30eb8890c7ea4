package types

import "math"

// An axis-aligned bounding box. A box that has not been expanded by any point
// is empty; its corners are inverted so that any slab test against it fails.
type BBox struct {
	Min Vec3
	Max Vec3
}

// Create an empty bounding box.
func EmptyBBox() BBox {
	return BBox{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Create a bounding box that encloses all supplied points.
func BBoxOf(points ...Vec3) BBox {
	b := EmptyBBox()
	for _, p := range points {
		b.ExpandPoint(p)
	}
	return b
}

// Returns true if the box contains at least one point.
func (b BBox) IsValid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Grow the box so that it contains p.
func (b *BBox) ExpandPoint(p Vec3) {
	b.Min = MinVec3(b.Min, p)
	b.Max = MaxVec3(b.Max, p)
}

// Grow the box so that it contains other. Empty boxes are ignored.
func (b *BBox) Expand(other BBox) {
	if !other.IsValid() {
		return
	}
	b.Min = MinVec3(b.Min, other.Min)
	b.Max = MaxVec3(b.Max, other.Max)
}

// Return the union of two boxes.
func (b BBox) Union(other BBox) BBox {
	b.Expand(other)
	return b
}

// Get the box side lengths. Empty boxes have a zero extent.
func (b BBox) Extent() Vec3 {
	if !b.IsValid() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b BBox) Centroid() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the total area of the six box faces. Empty boxes have a zero area.
func (b BBox) SurfaceArea() float32 {
	side := b.Extent()
	return 2.0 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// Returns true if other lies entirely inside this box.
func (b BBox) Contains(other BBox) bool {
	if !other.IsValid() {
		return true
	}
	return b.Min[0] <= other.Min[0] && b.Min[1] <= other.Min[1] && b.Min[2] <= other.Min[2] &&
		b.Max[0] >= other.Max[0] && b.Max[1] >= other.Max[1] && b.Max[2] >= other.Max[2]
}
