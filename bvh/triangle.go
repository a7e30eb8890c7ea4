package bvh

import "github.com/achilleasa/meshbvh/types"

// A preprocessed mesh triangle together with the plane data required by ray
// intersection tests.
type Triangle struct {
	// Vertex indices into the source vertex buffer.
	Indices [3]uint32

	// Index of the source face this triangle was generated from.
	Face uint32

	BBox   types.BBox
	Center types.Vec3

	// Unit normal and plane distance so that Normal·P = D for every point P
	// on the triangle plane.
	Normal types.Vec3
	D      float32

	// Planes through each edge (v0->v1, v1->v2, v2->v0), perpendicular to
	// the triangle plane. Points inside the triangle satisfy
	// EdgePlanes[i]·P >= EdgeD[i] for all three edges.
	EdgePlanes [3]types.Vec3
	EdgeD      [3]float32
}

// Build a triangle from its vertices. Returns false if any of the edge cross
// products has zero length (zero area or coincident vertices).
func newTriangle(v0, v1, v2 types.Vec3) (Triangle, bool) {
	verts := [3]types.Vec3{v0, v1, v2}
	edges := [3]types.Vec3{v1.Sub(v0), v2.Sub(v1), v0.Sub(v2)}

	// All three cross products are parallel; the longest one is picked to
	// limit the error introduced by nearly parallel edges.
	var normal types.Vec3
	var bestLen float32
	for i := 0; i < 3; i++ {
		c := edges[i].Cross(edges[(i+1)%3])
		l := c.Len()
		if l == 0 {
			return Triangle{}, false
		}
		if l > bestLen {
			bestLen = l
			normal = c
		}
	}
	normal = normal.Mul(1.0 / bestLen)

	tri := Triangle{
		BBox:   types.BBoxOf(v0, v1, v2),
		Center: v0.Add(v1).Add(v2).Mul(1.0 / 3.0),
		Normal: normal,
		D:      normal.Dot(v0),
	}
	for i := 0; i < 3; i++ {
		tri.EdgePlanes[i] = normal.Cross(edges[i]).Normalize()
		tri.EdgeD[i] = tri.EdgePlanes[i].Dot(verts[i])
	}

	return tri, true
}

// Convert raw vertex (3 floats per vertex) and face (3 indices per face)
// buffers into triangle records. Faces that are degenerate or reference
// vertices outside the vertex buffer are skipped; their number is returned
// as dropped. Trailing values that do not form a complete vertex or face are
// ignored.
func preprocess(vertices []float32, faces []uint32) (triangles []Triangle, bounds types.BBox, dropped int) {
	numVertices := uint32(len(vertices) / 3)
	numFaces := len(faces) / 3

	vertex := func(index uint32) types.Vec3 {
		return types.Vec3{vertices[3*index], vertices[3*index+1], vertices[3*index+2]}
	}

	triangles = make([]Triangle, 0, numFaces)
	bounds = types.EmptyBBox()
	for face := 0; face < numFaces; face++ {
		indices := [3]uint32{faces[3*face], faces[3*face+1], faces[3*face+2]}
		if indices[0] >= numVertices || indices[1] >= numVertices || indices[2] >= numVertices {
			dropped++
			continue
		}

		tri, ok := newTriangle(vertex(indices[0]), vertex(indices[1]), vertex(indices[2]))
		if !ok {
			dropped++
			continue
		}
		tri.Indices = indices
		tri.Face = uint32(face)

		triangles = append(triangles, tri)
		bounds.Expand(tri.BBox)
	}

	return triangles, bounds, dropped
}

// Serialize the intersection data of each triangle as 16 floats:
// normal.xyz, d, e1.xyz, d1, e2.xyz, d2, e3.xyz, d3.
func intersectionData(triangles []Triangle) []float32 {
	data := make([]float32, 0, IntersectionStride*len(triangles))
	for i := range triangles {
		tri := &triangles[i]
		data = append(data, tri.Normal[0], tri.Normal[1], tri.Normal[2], tri.D)
		for e := 0; e < 3; e++ {
			data = append(data, tri.EdgePlanes[e][0], tri.EdgePlanes[e][1], tri.EdgePlanes[e][2], tri.EdgeD[e])
		}
	}
	return data
}
