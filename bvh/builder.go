package bvh

import (
	"sync/atomic"
	"time"

	"github.com/achilleasa/meshbvh/log"
	"github.com/achilleasa/meshbvh/types"
	"golang.org/x/sync/semaphore"
)

const (
	// Work lists with at most this many items always become leafs.
	maxLeafItems = 4

	// The number of equal-width buckets used for evaluating SAH split
	// candidates along an axis.
	numBuckets = 32

	// The builder will not attempt to calculate split candidates if the
	// node bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-4

	// Work lists smaller than this are never handed to another goroutine.
	minForkItems = 256
)

// A bounding primitive; the unit of work that gets partitioned.
type primitive struct {
	bbox     types.BBox
	center   types.Vec3
	triangle uint32
}

type bucket struct {
	bbox  types.BBox
	count int
}

// A split candidate. Items whose bucket index along axis is less than
// bucketIndex go to the left partition.
type splitCandidate struct {
	axis        int
	bucketIndex int
	axisMin     float32
	invWidth    float32
}

// Returns true if p belongs to the left side of the split. The bucket
// computation must match the one used while scoring candidates.
func (s splitCandidate) isLeft(p *primitive) bool {
	return bucketFor(p.center[s.axis], s.axisMin, s.invWidth) < s.bucketIndex
}

func bucketFor(value, axisMin, invWidth float32) int {
	index := int((value - axisMin) * invWidth)
	if index < 0 {
		return 0
	}
	if index >= numBuckets {
		return numBuckets - 1
	}
	return index
}

type builder struct {
	logger log.Logger

	// The bounding primitive table; indexed by the entries of the work list.
	prims []primitive

	// Limits the number of subtrees that are built concurrently.
	workers *semaphore.Weighted

	maxDepth atomic.Uint32
	nodes    atomic.Int64
	leafs    atomic.Int64
}

// Build a pointer BVH tree over a triangle table. The workers param bounds
// the number of goroutines (including the caller) that build subtrees in
// parallel. Returns the tree root and the max depth observed.
func buildTree(triangles []Triangle, workers int) (node, uint32) {
	if workers < 1 {
		workers = 1
	}

	b := &builder{
		logger:  log.New("bvh builder"),
		prims:   make([]primitive, len(triangles)),
		workers: semaphore.NewWeighted(int64(workers - 1)),
	}

	workList := make([]uint32, len(triangles))
	for index := range triangles {
		b.prims[index] = primitive{
			bbox:     triangles[index].BBox,
			center:   triangles[index].BBox.Centroid(),
			triangle: uint32(index),
		}
		workList[index] = uint32(index)
	}

	start := time.Now()
	root := b.partition(workList, 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d, workers: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.maxDepth.Load(), b.nodes.Load(), b.leafs.Load(), workers,
	)
	return root, b.maxDepth.Load()
}

// Partition the work list and return the subtree covering it. The work list
// entries are reordered in place; concurrent calls always receive disjoint
// sub-slices.
func (b *builder) partition(workList []uint32, depth uint32) node {
	bbox := types.EmptyBBox()
	for _, item := range workList {
		bbox.Expand(b.prims[item].bbox)
	}

	// Do we have enough items for partitioning? If not create a leaf
	if len(workList) <= maxLeafItems {
		return b.createLeaf(bbox, workList, depth)
	}

	// If we can't find a split that improves the current node score create a leaf
	split, found := b.findSplit(workList, bbox)
	if !found {
		return b.createLeaf(bbox, workList, depth)
	}

	// Items in [0, mid) go left, the rest go right
	mid := 0
	for last := len(workList) - 1; mid <= last; {
		if split.isLeft(&b.prims[workList[mid]]) {
			mid++
			continue
		}
		workList[mid], workList[last] = workList[last], workList[mid]
		last--
	}
	b.nodes.Add(1)

	leftWorkList, rightWorkList := workList[:mid], workList[mid:]
	if len(workList) >= minForkItems && b.workers.TryAcquire(1) {
		leftCh := make(chan node, 1)
		go func() {
			defer b.workers.Release(1)
			leftCh <- b.partition(leftWorkList, depth+1)
		}()
		right := b.partition(rightWorkList, depth+1)
		return newInnerNode(<-leftCh, right)
	}

	left := b.partition(leftWorkList, depth+1)
	right := b.partition(rightWorkList, depth+1)
	return newInnerNode(left, right)
}

// Evaluate the SAH cost of every bucket boundary along each axis and return
// the cheapest split. The cost of not splitting (count * node area) is used
// as the baseline so a split is only reported if it is strictly cheaper.
// Ties are resolved in favor of the first candidate found.
func (b *builder) findSplit(workList []uint32, bbox types.BBox) (best splitCandidate, found bool) {
	bestScore := float32(len(workList)) * bbox.SurfaceArea()

	var buckets [numBuckets]bucket
	var rightBBoxes [numBuckets]types.BBox
	var rightCounts [numBuckets]int

	side := bbox.Extent()
	for axis := 0; axis < 3; axis++ {
		// Skip axis if bbox dimension is too small
		if side[axis] < minSideLength {
			continue
		}

		invWidth := float32(numBuckets) / side[axis]
		for i := range buckets {
			buckets[i] = bucket{bbox: types.EmptyBBox()}
		}
		for _, item := range workList {
			p := &b.prims[item]
			bi := bucketFor(p.center[axis], bbox.Min[axis], invWidth)
			buckets[bi].count++
			buckets[bi].bbox.Expand(p.bbox)
		}

		// Sweep from the right to get the bbox and count of every suffix
		acc := types.EmptyBBox()
		accCount := 0
		for i := numBuckets - 1; i > 0; i-- {
			if buckets[i].count > 0 {
				acc.Expand(buckets[i].bbox)
				accCount += buckets[i].count
			}
			rightBBoxes[i] = acc
			rightCounts[i] = accCount
		}

		leftBBox := types.EmptyBBox()
		leftCount := 0
		for i := 1; i < numBuckets; i++ {
			if buckets[i-1].count > 0 {
				leftBBox.Expand(buckets[i-1].bbox)
				leftCount += buckets[i-1].count
			}

			rightCount := rightCounts[i]
			if leftCount <= 1 || rightCount <= 1 || !leftBBox.IsValid() || !rightBBoxes[i].IsValid() {
				continue
			}

			score := float32(leftCount)*leftBBox.SurfaceArea() + float32(rightCount)*rightBBoxes[i].SurfaceArea()
			if score < bestScore {
				bestScore = score
				best = splitCandidate{
					axis:        axis,
					bucketIndex: i,
					axisMin:     bbox.Min[axis],
					invWidth:    invWidth,
				}
				found = true
			}
		}
	}

	return best, found
}

// Create a leaf containing all items in the work list.
func (b *builder) createLeaf(bbox types.BBox, workList []uint32, depth uint32) *leafNode {
	leaf := &leafNode{
		bbox:      bbox,
		triangles: make([]uint32, len(workList)),
	}
	for index, item := range workList {
		leaf.triangles[index] = b.prims[item].triangle
	}

	b.leafs.Add(1)
	for {
		cur := b.maxDepth.Load()
		if depth <= cur || b.maxDepth.CompareAndSwap(cur, depth) {
			break
		}
	}

	return leaf
}
