package mesh

import (
	"io"
	"path"
	"strings"
	"time"

	"github.com/achilleasa/meshbvh/log"
	"github.com/pkg/errors"
)

// The reader interface is implemented by all mesh format readers.
type reader interface {
	Read(name string, r io.Reader) (*Mesh, error)
}

// Select a reader based on the file extension.
func readerFor(filename string) (reader, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".obj":
		return newWavefrontReader(), nil
	case ".ply":
		return newPlyReader(), nil
	}
	return nil, errors.Errorf("mesh: unsupported file format %q", ext)
}

// Returns true if ReadMesh can load files with this name.
func IsSupported(filename string) bool {
	_, err := readerFor(filename)
	return err == nil
}

// Read a mesh from a local file or an http/https URL. The format is selected
// using the file extension (.obj or .ply).
func ReadMesh(filename string) (*Mesh, error) {
	logger := log.New("mesh reader")

	rd, err := readerFor(filename)
	if err != nil {
		return nil, err
	}

	res, err := openResource(filename)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	logger.Noticef(`parsing mesh from "%s"`, res.Path())
	start := time.Now()

	name := strings.TrimSuffix(path.Base(res.url.Path), path.Ext(res.url.Path))
	m, err := rd.Read(name, res)
	if err != nil {
		return nil, err
	}

	logger.Noticef("parsed %d vertices and %d faces in %d ms", m.NumVertices(), m.NumFaces(), time.Since(start).Nanoseconds()/1e6)
	return m, nil
}
