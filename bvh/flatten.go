package bvh

// The flattener converts the pointer tree into flat arrays by visiting nodes
// in pre-order. Each node is detached from its parent once visited so the
// pointer tree is released while the arrays are filled.
type flattener struct {
	limits          []float32
	nodes           []uint32
	triangleIndices []uint32

	// Index that will be assigned to the next visited node.
	nextIndex uint32
}

// Flatten a tree and return the bounding limits, node records and the
// concatenated leaf triangle index list.
func flatten(root node) (limits []float32, nodes []uint32, triangleIndices []uint32) {
	f := &flattener{}
	f.visit(root)
	return f.limits, f.nodes, f.triangleIndices
}

// Copy node data to the flat arrays and return the index assigned to it.
func (f *flattener) visit(n node) uint32 {
	index := f.nextIndex
	f.nextIndex++

	bbox := n.bounds()
	f.limits = append(f.limits,
		bbox.Min[0], bbox.Max[0],
		bbox.Min[1], bbox.Max[1],
		bbox.Min[2], bbox.Max[2],
	)

	slot := len(f.nodes)
	switch t := n.(type) {
	case *innerNode:
		f.nodes = append(f.nodes, 0, 0, 0, 0)

		left, right := t.left, t.right
		t.left, t.right = nil, nil
		f.nodes[slot+1] = f.visit(left)
		f.nodes[slot+2] = f.visit(right)
	case *leafNode:
		f.nodes = append(f.nodes,
			LeafFlag|uint32(len(t.triangles)),
			0,
			0,
			uint32(len(f.triangleIndices)),
		)
		f.triangleIndices = append(f.triangleIndices, t.triangles...)
		t.triangles = nil
	}

	return index
}
