package bvh

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Summary counters of a flattened tree.
type Summary struct {
	Nodes       int
	InnerNodes  int
	Leafs       int
	EmptyLeafs  int
	Triangles   int
	MaxLeafSize int
	MaxDepth    uint32
}

// Collect summary counters for a flattened tree.
func Summarize(a Arrays) Summary {
	s := Summary{
		Nodes:     NumNodes(a),
		Triangles: len(a.IntersectionData()) / IntersectionStride,
		MaxDepth:  a.MaxDepth(),
	}
	for index := 0; index < s.Nodes; index++ {
		rec := Node(a, uint32(index))
		if !rec.IsLeaf() {
			s.InnerNodes++
			continue
		}

		s.Leafs++
		count := int(rec.Count())
		if count == 0 {
			s.EmptyLeafs++
		}
		if count > s.MaxLeafSize {
			s.MaxLeafSize = count
		}
	}
	return s
}

// Build a tabular representation of tree statistics.
func Stats(a Arrays) string {
	s := Summarize(a)
	avgLeafSize := 0.0
	if s.Leafs > 0 {
		avgLeafSize = float64(len(a.TriangleIndices())) / float64(s.Leafs)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Section", "Item", "Value"})
	table.Append([]string{"Tree", "Nodes", fmt.Sprintf("%d", s.Nodes)})
	table.Append([]string{"", "Inner nodes", fmt.Sprintf("%d", s.InnerNodes)})
	table.Append([]string{"", "Leafs", fmt.Sprintf("%d", s.Leafs)})
	table.Append([]string{"", "Empty leafs", fmt.Sprintf("%d", s.EmptyLeafs)})
	table.Append([]string{"", "Max depth", fmt.Sprintf("%d", s.MaxDepth)})
	table.Append([]string{"", "Triangles", fmt.Sprintf("%d", s.Triangles)})
	table.Append([]string{"", "Avg. leaf size", fmt.Sprintf("%.2f", avgLeafSize)})
	table.Append([]string{"", "Max leaf size", fmt.Sprintf("%d", s.MaxLeafSize)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Arrays", "Bounding limits", fmtSize(len(a.Limits()))})
	table.Append([]string{"", "Node records", fmtSize(len(a.Nodes()))})
	table.Append([]string{"", "Triangle list", fmtSize(len(a.TriangleIndices()))})
	table.Append([]string{"", "Intersection data", fmtSize(len(a.IntersectionData()))})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(len(a.Limits()), len(a.Nodes()), len(a.TriangleIndices()), len(a.IntersectionData())), " ")})

	table.Render()
	return buf.String()
}

// Sum the space used by a set of arrays with 4-byte elements and return back
// a formatted value with the appropriate byte/kb/mb unit.
func fmtSize(lengths ...int) string {
	var totalBytes float32
	for _, l := range lengths {
		totalBytes += float32(4 * l)
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
