package bvh

import (
	"math"
	"reflect"
	"testing"

	"github.com/achilleasa/meshbvh/mesh"
	"github.com/achilleasa/meshbvh/types"
)

// Generate n*n*n small triangles placed on a regular grid.
func gridMesh(n int) (vertices []float32, faces []uint32) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				x, y, z := float32(2*i), float32(2*j), float32(2*k)
				base := uint32(len(vertices) / 3)
				vertices = append(vertices,
					x, y, z,
					x+1, y, z,
					x, y+1, z+0.5,
				)
				faces = append(faces, base, base+1, base+2)
			}
		}
	}
	return vertices, faces
}

// A unit cube with two triangles per side.
func cubeMesh() (vertices []float32, faces []uint32) {
	vertices = []float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
		0, 0, 1,
		1, 0, 1,
		1, 1, 1,
		0, 1, 1,
	}
	faces = []uint32{
		0, 2, 1, 0, 3, 2, // bottom
		4, 5, 6, 4, 6, 7, // top
		0, 1, 5, 0, 5, 4, // front
		3, 7, 6, 3, 6, 2, // back
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}
	return vertices, faces
}

// Walk the flattened tree and verify that every triangle appears in exactly
// one leaf and that node bounds contain their children / leaf triangles.
func checkTree(t *testing.T, tree *Tree) {
	if err := Validate(tree); err != nil {
		t.Fatal(err)
	}

	seen := make([]int, tree.NumTriangles())
	var walk func(index uint32)
	walk = func(index uint32) {
		rec := Node(tree, index)
		bbox := NodeBBox(tree, index)
		if rec.IsLeaf() {
			for _, tri := range LeafTriangles(tree, rec) {
				seen[tri]++
				if !bbox.Contains(tree.Triangles()[tri].BBox) {
					t.Fatalf("leaf %d bbox %v does not contain triangle %d bbox %v", index, bbox, tri, tree.Triangles()[tri].BBox)
				}
			}
			return
		}

		for _, child := range []uint32{rec.Left(), rec.Right()} {
			if !bbox.Contains(NodeBBox(tree, child)) {
				t.Fatalf("node %d bbox %v does not contain child %d bbox %v", index, bbox, child, NodeBBox(tree, child))
			}
			walk(child)
		}
	}
	walk(0)

	for tri, count := range seen {
		if count != 1 {
			t.Fatalf("expected triangle %d to appear in exactly one leaf; found %d times", tri, count)
		}
	}
}

func TestSingleTriangle(t *testing.T) {
	tree := New([]float32{0, 0, 0, 1, 0, 0, 0, 1, 2}, []uint32{0, 1, 2}, DefaultOptions())
	checkTree(t, tree)

	if tree.NumNodes() != 1 {
		t.Fatalf("expected tree to contain a single node; got %d", tree.NumNodes())
	}

	rec := Node(tree, 0)
	if !rec.IsLeaf() || rec.Count() != 1 {
		t.Fatalf("expected root to be a leaf with 1 triangle; got %v", rec)
	}

	expBBox := types.BBoxOf(types.XYZ(0, 0, 0), types.XYZ(1, 1, 2))
	if bbox := NodeBBox(tree, 0); bbox != expBBox {
		t.Fatalf("expected root bbox %v; got %v", expBBox, bbox)
	}
	if tree.MaxDepth() != 0 {
		t.Fatalf("expected max depth 0; got %d", tree.MaxDepth())
	}
}

func TestCubeMesh(t *testing.T) {
	vertices, faces := cubeMesh()
	tree := NewFromMesh(mesh.New("cube", vertices, faces), DefaultOptions())
	checkTree(t, tree)

	if tree.NumTriangles() != 12 {
		t.Fatalf("expected 12 triangles; got %d", tree.NumTriangles())
	}

	expBBox := types.BBoxOf(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1))
	if bbox := NodeBBox(tree, 0); bbox != expBBox {
		t.Fatalf("expected root bbox %v; got %v", expBBox, bbox)
	}
	if tree.BBox() != expBBox {
		t.Fatalf("expected tree bbox %v; got %v", expBBox, tree.BBox())
	}

	if len(tree.TriangleIndices()) != 12 {
		t.Fatalf("expected triangle list to contain 12 entries; got %d", len(tree.TriangleIndices()))
	}
	if len(tree.IntersectionData()) != 12*IntersectionStride {
		t.Fatalf("expected %d intersection floats; got %d", 12*IntersectionStride, len(tree.IntersectionData()))
	}
}

func TestDegenerateTriangleExclusion(t *testing.T) {
	vertices, faces := gridMesh(3)
	faces = faces[:30]

	// Append a face with a repeated vertex index
	faces = append(faces, 0, 0, 1)

	tree := New(vertices, faces, DefaultOptions())
	checkTree(t, tree)

	if tree.NumTriangles() != 10 {
		t.Fatalf("expected 10 triangles; got %d", tree.NumTriangles())
	}
	if tree.DroppedFaces() != 1 {
		t.Fatalf("expected 1 dropped face; got %d", tree.DroppedFaces())
	}
	for _, tri := range tree.Triangles() {
		if tri.Face == 10 {
			t.Fatal("expected degenerate face to be excluded from the triangle table")
		}
	}
	if len(tree.TriangleIndices()) != 10 {
		t.Fatalf("expected triangle list to contain 10 entries; got %d", len(tree.TriangleIndices()))
	}
}

func TestEmptyMesh(t *testing.T) {
	tree := New(nil, nil, DefaultOptions())
	checkTree(t, tree)

	if tree.NumNodes() != 1 {
		t.Fatalf("expected tree to contain a single node; got %d", tree.NumNodes())
	}
	rec := Node(tree, 0)
	if !rec.IsLeaf() || rec.Count() != 0 {
		t.Fatalf("expected root to be an empty leaf; got %v", rec)
	}

	expLimits := []float32{
		math.MaxFloat32, -math.MaxFloat32,
		math.MaxFloat32, -math.MaxFloat32,
		math.MaxFloat32, -math.MaxFloat32,
	}
	if !reflect.DeepEqual(tree.Limits(), expLimits) {
		t.Fatalf("expected empty root limits %v; got %v", expLimits, tree.Limits())
	}
	if NodeBBox(tree, 0).IsValid() {
		t.Fatal("expected empty root bbox to be invalid")
	}
}

func TestLargeGrid(t *testing.T) {
	vertices, faces := gridMesh(16)
	tree := New(vertices, faces, Options{Workers: 8})
	checkTree(t, tree)

	numTriangles := tree.NumTriangles()
	if numTriangles != 4096 {
		t.Fatalf("expected 4096 triangles; got %d", numTriangles)
	}

	// A leaf holds at most 4 triangles so at least log2(N/4) levels are needed
	minDepth := uint32(math.Log2(float64(numTriangles) / maxLeafItems))
	maxDepth := uint32(2 * math.Log2(float64(numTriangles)))
	if tree.MaxDepth() < minDepth || tree.MaxDepth() > maxDepth {
		t.Fatalf("expected max depth to be in [%d, %d]; got %d", minDepth, maxDepth, tree.MaxDepth())
	}

	if s := Summarize(tree); s.MaxLeafSize > maxLeafItems {
		t.Fatalf("expected leafs to hold at most %d triangles; got %d", maxLeafItems, s.MaxLeafSize)
	}
}

func TestBuildIsIndependentOfWorkerCount(t *testing.T) {
	vertices, faces := gridMesh(12)

	serial := New(vertices, faces, Options{Workers: 1})
	parallel := New(vertices, faces, Options{Workers: 16})

	if !reflect.DeepEqual(serial.Nodes(), parallel.Nodes()) {
		t.Fatal("expected node records to match")
	}
	if !reflect.DeepEqual(serial.Limits(), parallel.Limits()) {
		t.Fatal("expected bounding limits to match")
	}
	if !reflect.DeepEqual(serial.TriangleIndices(), parallel.TriangleIndices()) {
		t.Fatal("expected triangle lists to match")
	}
	if serial.MaxDepth() != parallel.MaxDepth() {
		t.Fatalf("expected max depth %d; got %d", serial.MaxDepth(), parallel.MaxDepth())
	}
}

func TestNoBeneficialSplit(t *testing.T) {
	// Identical triangles share the same bbox so every bucket split is
	// rejected and all of them end up in a single leaf.
	var faces []uint32
	for i := 0; i < 9; i++ {
		faces = append(faces, 0, 1, 2)
	}
	tree := New([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, faces, DefaultOptions())
	checkTree(t, tree)

	rec := Node(tree, 0)
	if tree.NumNodes() != 1 || !rec.IsLeaf() || rec.Count() != 9 {
		t.Fatalf("expected a single leaf with 9 triangles; got %d nodes and root %v", tree.NumNodes(), rec)
	}
}

func BenchmarkBuild(b *testing.B) {
	vertices, faces := gridMesh(32)
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		New(vertices, faces, opts)
	}
}
