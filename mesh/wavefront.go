package mesh

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/achilleasa/meshbvh/log"
	"github.com/pkg/errors"
)

// Reads vertex positions and faces from Wavefront OBJ files. All other
// statements (normals, uvs, groups, materials) are ignored.
type wavefrontReader struct {
	logger log.Logger
}

func newWavefrontReader() *wavefrontReader {
	return &wavefrontReader{
		logger: log.New("wavefront reader"),
	}
}

// Parse a wavefront obj stream.
func (r *wavefrontReader) Read(name string, in io.Reader) (*Mesh, error) {
	m := New(name, nil, nil)
	skipped := make(map[string]int)

	lineNum := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", name, lineNum)
			}
			m.AddVertex(v[0], v[1], v[2])
		case "f":
			if len(lineTokens) < 4 {
				return nil, errors.Errorf(`%s:%d: unsupported syntax for "f"; expected at least 3 arguments; got %d`, name, lineNum, len(lineTokens)-1)
			}

			indices := make([]uint32, len(lineTokens)-1)
			for i, token := range lineTokens[1:] {
				index, err := selectVertexIndex(token, m.NumVertices())
				if err != nil {
					return nil, errors.Wrapf(err, "%s:%d", name, lineNum)
				}
				indices[i] = uint32(index)
			}
			m.AddPolygon(indices...)
		default:
			skipped[lineTokens[0]]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}

	for statement, count := range skipped {
		r.logger.Debugf(`ignored %d "%s" statements`, count, statement)
	}
	return m, nil
}

// Given a face vertex token (v, v/vt, v//vn or v/vt/vn) calculate the offset
// into the vertex list. Wavefront format can also use negative indices to
// reference elements from the end of the vertex list.
func selectVertexIndex(token string, numVertices int) (int, error) {
	if slash := strings.IndexByte(token, '/'); slash != -1 {
		token = token[:slash]
	}

	index, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int
	if index < 0 {
		offset = numVertices + int(index)
	} else {
		offset = int(index - 1)
	}
	if offset < 0 || offset >= numVertices {
		return -1, errors.Errorf("vertex index %d out of bounds", index)
	}
	return offset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) ([3]float32, error) {
	var v [3]float32
	if len(lineTokens) < 4 {
		return v, errors.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
