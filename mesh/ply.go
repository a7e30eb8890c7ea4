package mesh

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/achilleasa/meshbvh/log"
	"github.com/pkg/errors"
)

// Reads vertex positions and faces from ASCII PLY files. Vertex properties
// beyond x, y, z are ignored; binary encodings are rejected.
type plyReader struct {
	logger log.Logger
}

func newPlyReader() *plyReader {
	return &plyReader{
		logger: log.New("ply reader"),
	}
}

type plyHeader struct {
	numVertices int
	numFaces    int

	// Column of the x, y and z vertex properties.
	coordCols [3]int
	numProps  int
}

// Parse an ASCII PLY stream.
func (r *plyReader) Read(name string, in io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(in)
	lineNum := 0
	nextLine := func() ([]string, error) {
		for scanner.Scan() {
			lineNum++
			if tokens := strings.Fields(scanner.Text()); len(tokens) != 0 {
				return tokens, nil
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrapf(err, "%s", name)
		}
		return nil, errors.Errorf("%s:%d: unexpected end of file", name, lineNum)
	}

	hdr, err := r.parseHeader(name, nextLine)
	if err != nil {
		return nil, err
	}

	m := New(name, nil, nil)
	for i := 0; i < hdr.numVertices; i++ {
		tokens, err := nextLine()
		if err != nil {
			return nil, err
		}
		if len(tokens) < hdr.numProps {
			return nil, errors.Errorf("%s:%d: expected %d vertex properties; got %d", name, lineNum, hdr.numProps, len(tokens))
		}

		var v [3]float32
		for axis, col := range hdr.coordCols {
			coord, err := strconv.ParseFloat(tokens[col], 32)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", name, lineNum)
			}
			v[axis] = float32(coord)
		}
		m.AddVertex(v[0], v[1], v[2])
	}

	for i := 0; i < hdr.numFaces; i++ {
		tokens, err := nextLine()
		if err != nil {
			return nil, err
		}

		count, err := strconv.Atoi(tokens[0])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", name, lineNum)
		}
		if count < 3 || len(tokens) < count+1 {
			return nil, errors.Errorf("%s:%d: invalid face with %d vertices", name, lineNum, count)
		}

		indices := make([]uint32, count)
		for j := 0; j < count; j++ {
			index, err := strconv.ParseUint(tokens[j+1], 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", name, lineNum)
			}
			if int(index) >= hdr.numVertices {
				return nil, errors.Errorf("%s:%d: vertex index %d out of bounds", name, lineNum, index)
			}
			indices[j] = uint32(index)
		}
		m.AddPolygon(indices...)
	}

	return m, nil
}

func (r *plyReader) parseHeader(name string, nextLine func() ([]string, error)) (*plyHeader, error) {
	tokens, err := nextLine()
	if err != nil {
		return nil, err
	}
	if tokens[0] != "ply" {
		return nil, errors.Errorf("%s: missing ply magic", name)
	}

	hdr := &plyHeader{coordCols: [3]int{-1, -1, -1}}
	curElement := ""
	for {
		tokens, err = nextLine()
		if err != nil {
			return nil, err
		}

		switch tokens[0] {
		case "end_header":
			if hdr.numVertices > 0 && (hdr.coordCols[0] < 0 || hdr.coordCols[1] < 0 || hdr.coordCols[2] < 0) {
				return nil, errors.Errorf("%s: vertex element is missing x, y or z properties", name)
			}
			return hdr, nil
		case "format":
			if len(tokens) < 2 || tokens[1] != "ascii" {
				return nil, errors.Errorf("%s: only ascii ply files are supported", name)
			}
		case "element":
			if len(tokens) != 3 {
				return nil, errors.Errorf(`%s: unsupported syntax for "element"; expected 2 arguments; got %d`, name, len(tokens)-1)
			}
			count, err := strconv.Atoi(tokens[2])
			if err != nil {
				return nil, errors.Wrapf(err, "%s", name)
			}
			if count < 0 {
				return nil, errors.Errorf("%s: invalid element count %d", name, count)
			}

			curElement = tokens[1]
			switch curElement {
			case "vertex":
				hdr.numVertices = count
			case "face":
				hdr.numFaces = count
			default:
				if count > 0 {
					return nil, errors.Errorf(`%s: unsupported element "%s"`, name, curElement)
				}
			}
		case "property":
			if curElement != "vertex" {
				continue
			}
			switch tokens[len(tokens)-1] {
			case "x":
				hdr.coordCols[0] = hdr.numProps
			case "y":
				hdr.coordCols[1] = hdr.numProps
			case "z":
				hdr.coordCols[2] = hdr.numProps
			}
			hdr.numProps++
		case "comment", "obj_info":
		default:
			r.logger.Debugf(`ignoring header line "%s"`, strings.Join(tokens, " "))
		}
	}
}
