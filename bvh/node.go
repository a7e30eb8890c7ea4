package bvh

import "github.com/achilleasa/meshbvh/types"

// A node of the transient pointer tree produced by the builder. It is either
// an *innerNode or a *leafNode.
type node interface {
	bounds() types.BBox
}

// An inner node owns exactly two children.
type innerNode struct {
	bbox        types.BBox
	left, right node
}

func newInnerNode(left, right node) *innerNode {
	return &innerNode{
		bbox:  left.bounds().Union(right.bounds()),
		left:  left,
		right: right,
	}
}

func (n *innerNode) bounds() types.BBox {
	return n.bbox
}

// A leaf node holds indices into the preprocessed triangle table.
type leafNode struct {
	bbox      types.BBox
	triangles []uint32
}

func (n *leafNode) bounds() types.BBox {
	return n.bbox
}
