package bvh

import (
	"github.com/achilleasa/meshbvh/types"
	"github.com/pkg/errors"
)

const (
	// Floats per node in the bounding limits array:
	// [minX, maxX, minY, maxY, minZ, maxZ].
	LimitsStride = 6

	// Words per node in the node record array:
	// [flag|count, left child, right child, triangle list offset].
	NodeStride = 4

	// Floats per triangle in the intersection data array:
	// [n.xyz, d, e1.xyz, d1, e2.xyz, d2, e3.xyz, d3].
	IntersectionStride = 16

	// Set in the first word of leaf records. The remaining bits hold the
	// leaf triangle count.
	LeafFlag uint32 = 1 << 31
)

// The Arrays interface is implemented by anything that exposes a flattened
// BVH tree; the built Tree and trees loaded from an archive.
type Arrays interface {
	Limits() []float32
	Nodes() []uint32
	TriangleIndices() []uint32
	IntersectionData() []float32
	MaxDepth() uint32
}

// A read-only view of a single node record.
type NodeRecord [NodeStride]uint32

// Returns true if this is a leaf record.
func (r NodeRecord) IsLeaf() bool {
	return r[0]&LeafFlag != 0
}

// Get the number of triangles in a leaf. Inner nodes report 0.
func (r NodeRecord) Count() uint32 {
	if !r.IsLeaf() {
		return 0
	}
	return r[0] &^ LeafFlag
}

// Get the left child index. Only valid for inner nodes.
func (r NodeRecord) Left() uint32 {
	return r[1]
}

// Get the right child index. Only valid for inner nodes.
func (r NodeRecord) Right() uint32 {
	return r[2]
}

// Get the offset of the first leaf triangle in the triangle index list.
// Only valid for leafs.
func (r NodeRecord) Start() uint32 {
	return r[3]
}

// Get the number of nodes in a flattened tree.
func NumNodes(a Arrays) int {
	return len(a.Nodes()) / NodeStride
}

// Get the record of the node at index.
func Node(a Arrays, index uint32) NodeRecord {
	var rec NodeRecord
	copy(rec[:], a.Nodes()[index*NodeStride:])
	return rec
}

// Get the bounding box of the node at index.
func NodeBBox(a Arrays, index uint32) types.BBox {
	l := a.Limits()[index*LimitsStride:]
	return types.BBox{
		Min: types.Vec3{l[0], l[2], l[4]},
		Max: types.Vec3{l[1], l[3], l[5]},
	}
}

// Get the triangle ids stored in a leaf record.
func LeafTriangles(a Arrays, rec NodeRecord) []uint32 {
	if !rec.IsLeaf() {
		return nil
	}
	return a.TriangleIndices()[rec.Start() : rec.Start()+rec.Count()]
}

// Check the structural invariants of a flattened tree: array sizes agree, every
// child index is in range, the walk from the root never revisits a node and
// reaches every record, and each leaf references valid triangle ids.
func Validate(a Arrays) error {
	limits, nodes := a.Limits(), a.Nodes()
	triIndices, triData := a.TriangleIndices(), a.IntersectionData()

	if len(nodes) == 0 || len(nodes)%NodeStride != 0 {
		return errors.Errorf("bvh: node array length %d is not a positive multiple of %d", len(nodes), NodeStride)
	}
	numNodes := len(nodes) / NodeStride
	if len(limits) != numNodes*LimitsStride {
		return errors.Errorf("bvh: expected %d bounding limits for %d nodes; got %d", numNodes*LimitsStride, numNodes, len(limits))
	}
	if len(triData)%IntersectionStride != 0 {
		return errors.Errorf("bvh: intersection data length %d is not a multiple of %d", len(triData), IntersectionStride)
	}
	numTriangles := uint32(len(triData) / IntersectionStride)

	visited := make([]bool, numNodes)
	visitCount := 0
	stack := []uint32{0}
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[index] {
			return errors.Errorf("bvh: node %d is reachable more than once", index)
		}
		visited[index] = true
		visitCount++

		rec := Node(a, index)
		if rec.IsLeaf() {
			end := uint64(rec.Start()) + uint64(rec.Count())
			if end > uint64(len(triIndices)) {
				return errors.Errorf("bvh: leaf %d references triangle list range [%d, %d) outside list of length %d", index, rec.Start(), end, len(triIndices))
			}
			for _, tri := range LeafTriangles(a, rec) {
				if tri >= numTriangles {
					return errors.Errorf("bvh: leaf %d references unknown triangle %d", index, tri)
				}
			}
			continue
		}

		for _, child := range []uint32{rec.Right(), rec.Left()} {
			if child >= uint32(numNodes) {
				return errors.Errorf("bvh: node %d references out of range child %d", index, child)
			}
			if child == index {
				return errors.Errorf("bvh: node %d references itself as a child", index)
			}
			stack = append(stack, child)
		}
	}

	if visitCount != numNodes {
		return errors.Errorf("bvh: %d of %d nodes are unreachable from the root", numNodes-visitCount, numNodes)
	}
	return nil
}
