// Package mesh provides the triangle mesh buffers consumed by the BVH builder
// and readers that load them from Wavefront OBJ and ASCII PLY files.
package mesh

// The Buffer interface is implemented by triangle mesh containers. Vertices
// are stored as 3 floats per vertex and faces as 3 vertex indices per face.
type Buffer interface {
	Vertices() []float32
	Faces() []uint32
}

// A triangle mesh backed by flat vertex and face arrays.
type Mesh struct {
	Name string

	vertices []float32
	faces    []uint32
}

// Create a mesh from flat vertex and face arrays.
func New(name string, vertices []float32, faces []uint32) *Mesh {
	return &Mesh{
		Name:     name,
		vertices: vertices,
		faces:    faces,
	}
}

// Get the flat vertex array.
func (m *Mesh) Vertices() []float32 {
	return m.vertices
}

// Get the flat face index array.
func (m *Mesh) Faces() []uint32 {
	return m.faces
}

// Get the number of vertices.
func (m *Mesh) NumVertices() int {
	return len(m.vertices) / 3
}

// Get the number of triangle faces.
func (m *Mesh) NumFaces() int {
	return len(m.faces) / 3
}

// Append a vertex and return its index.
func (m *Mesh) AddVertex(x, y, z float32) uint32 {
	m.vertices = append(m.vertices, x, y, z)
	return uint32(m.NumVertices() - 1)
}

// Append a polygon given as a list of vertex indices. Polygons with more than
// three vertices are split into a triangle fan around the first vertex.
func (m *Mesh) AddPolygon(indices ...uint32) {
	for i := 2; i < len(indices); i++ {
		m.faces = append(m.faces, indices[0], indices[i-1], indices[i])
	}
}
