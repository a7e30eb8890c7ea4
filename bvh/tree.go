// Package bvh builds a bounding volume hierarchy over a triangle mesh and
// exposes it as flat arrays that ray traversal engines can consume directly.
//
// A tree is built once, when it is constructed. The pointer based hierarchy
// produced by the SAH builder is flattened in pre-order into four arrays:
//
//   - bounding limits: 6 floats per node [minX, maxX, minY, maxY, minZ, maxZ]
//   - node records: 4 words per node [flag|count, left, right, start]
//   - triangle index list: the concatenated triangle ids of all leafs
//   - intersection data: 16 floats per triangle (plane and edge planes)
//
// The arrays are immutable after construction and may be shared by any number
// of concurrent readers.
package bvh

import (
	"runtime"
	"time"

	"github.com/achilleasa/meshbvh/log"
	"github.com/achilleasa/meshbvh/mesh"
	"github.com/achilleasa/meshbvh/types"
)

// Options for building a tree.
type Options struct {
	// The max number of goroutines that build subtrees in parallel. Values
	// less than 1 select runtime.GOMAXPROCS(0).
	Workers int
}

// Get the default build options.
func DefaultOptions() Options {
	return Options{
		Workers: runtime.GOMAXPROCS(0),
	}
}

// A flattened BVH tree over a triangle mesh.
type Tree struct {
	triangles    []Triangle
	bbox         types.BBox
	droppedFaces int

	limits           []float32
	nodes            []uint32
	triangleIndices  []uint32
	intersectionData []float32
	maxDepth         uint32
}

// Build a tree from a flat vertex buffer (3 floats per vertex) and a flat face
// buffer (3 vertex indices per face). Degenerate faces and faces referencing
// missing vertices are excluded from the tree; DroppedFaces reports how many.
func New(vertices []float32, faces []uint32, opts Options) *Tree {
	logger := log.New("bvh")
	start := time.Now()

	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	t := &Tree{}
	t.triangles, t.bbox, t.droppedFaces = preprocess(vertices, faces)
	if t.droppedFaces > 0 {
		logger.Warningf("dropped %d of %d faces (degenerate or referencing missing vertices)", t.droppedFaces, len(faces)/3)
	}

	var root node
	root, t.maxDepth = buildTree(t.triangles, opts.Workers)
	t.limits, t.nodes, t.triangleIndices = flatten(root)
	t.intersectionData = intersectionData(t.triangles)

	logger.Infof(
		"built BVH for %d triangles in %d ms (nodes: %d, max depth: %d)",
		len(t.triangles), time.Since(start).Nanoseconds()/1e6, t.NumNodes(), t.maxDepth,
	)
	return t
}

// Build a tree from a mesh buffer.
func NewFromMesh(m mesh.Buffer, opts Options) *Tree {
	return New(m.Vertices(), m.Faces(), opts)
}

// Get the bounding limits array (6 floats per node in pre-order). The
// returned slice must not be modified.
func (t *Tree) Limits() []float32 {
	return t.limits
}

// Get the node record array (4 words per node). The returned slice must not
// be modified.
func (t *Tree) Nodes() []uint32 {
	return t.nodes
}

// Get the concatenated leaf triangle index list. The returned slice must not
// be modified.
func (t *Tree) TriangleIndices() []uint32 {
	return t.triangleIndices
}

// Get the per-triangle intersection data (16 floats per triangle id). The
// returned slice must not be modified.
func (t *Tree) IntersectionData() []float32 {
	return t.intersectionData
}

// Get the max leaf depth observed while building the tree. The root is at
// depth 0.
func (t *Tree) MaxDepth() uint32 {
	return t.maxDepth
}

// Get the number of tree nodes.
func (t *Tree) NumNodes() int {
	return len(t.nodes) / NodeStride
}

// Get the number of triangles that made it into the tree.
func (t *Tree) NumTriangles() int {
	return len(t.triangles)
}

// Get the preprocessed triangle table indexed by triangle id. The returned
// slice must not be modified.
func (t *Tree) Triangles() []Triangle {
	return t.triangles
}

// Get the number of input faces that were excluded from the tree.
func (t *Tree) DroppedFaces() int {
	return t.droppedFaces
}

// Get the bounding box of all triangles in the tree.
func (t *Tree) BBox() types.BBox {
	return t.bbox
}
