package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/achilleasa/meshbvh/bvh"
	"github.com/achilleasa/meshbvh/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A flattened tree loaded from an archive. Data implements bvh.Arrays.
type Data struct {
	Meta Meta

	limits           []float32
	nodes            []uint32
	triangleIndices  []uint32
	intersectionData []float32
}

func (d *Data) Limits() []float32           { return d.limits }
func (d *Data) Nodes() []uint32             { return d.nodes }
func (d *Data) TriangleIndices() []uint32   { return d.triangleIndices }
func (d *Data) IntersectionData() []float32 { return d.intersectionData }
func (d *Data) MaxDepth() uint32            { return d.Meta.MaxDepth }

type zipReader struct {
	logger log.Logger
	file   string
}

// Read a flattened tree from the zip archive at path. The loaded arrays are
// validated before being returned.
func Read(path string) (*Data, error) {
	r := &zipReader{
		logger: log.New("archive"),
		file:   path,
	}
	return r.Read()
}

func (r *zipReader) Read() (*Data, error) {
	r.logger.Noticef(`loading compressed BVH from "%s"`, r.file)
	start := time.Now()

	zr, err := zip.OpenReader(r.file)
	if err != nil {
		return nil, errors.Wrap(err, "archive: could not open zip file")
	}
	defer zr.Close()

	entries := make(map[string]*zip.File)
	for _, f := range zr.File {
		switch f.Name {
		case metaFile, limitsFile, nodesFile, trianglesFile, intersectionsFile:
			entries[f.Name] = f
		default:
			r.logger.Warningf("unknown file %s in BVH archive; skipping", f.Name)
		}
	}

	d := &Data{}
	if err = r.readMeta(entries[metaFile], &d.Meta); err != nil {
		return nil, err
	}

	arrays := []struct {
		name  string
		words uint64
		alloc func(n int) interface{}
	}{
		{limitsFile, uint64(d.Meta.Nodes) * bvh.LimitsStride, func(n int) interface{} { d.limits = make([]float32, n); return d.limits }},
		{nodesFile, uint64(d.Meta.Nodes) * bvh.NodeStride, func(n int) interface{} { d.nodes = make([]uint32, n); return d.nodes }},
		{trianglesFile, uint64(d.Meta.TriangleIndices), func(n int) interface{} { d.triangleIndices = make([]uint32, n); return d.triangleIndices }},
		{intersectionsFile, uint64(d.Meta.Triangles) * bvh.IntersectionStride, func(n int) interface{} { d.intersectionData = make([]float32, n); return d.intersectionData }},
	}

	// Entry headers must agree with the metadata before anything is allocated
	for _, array := range arrays {
		if err = checkEntry(entries[array.name], array.name, array.words); err != nil {
			return nil, err
		}
	}

	for _, array := range arrays {
		buf, err := r.readEntry(entries[array.name], array.name, array.words)
		if err != nil {
			return nil, err
		}
		if err = binary.Read(bytes.NewReader(buf), binary.LittleEndian, array.alloc(int(array.words))); err != nil {
			return nil, errors.Wrapf(err, "archive: failed to load %s", array.name)
		}
	}

	if err = bvh.Validate(d); err != nil {
		return nil, errors.Wrapf(err, "archive: %s contains an invalid tree", r.file)
	}

	r.logger.Noticef("loaded BVH with %d nodes in %d ms", d.Meta.Nodes, time.Since(start).Nanoseconds()/1e6)
	return d, nil
}

func (r *zipReader) readMeta(f *zip.File, meta *Meta) error {
	if f == nil {
		return errors.Errorf("archive: missing %s", metaFile)
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "archive: could not open %s", metaFile)
	}
	defer rc.Close()

	if err = yaml.NewDecoder(rc).Decode(meta); err != nil {
		return errors.Wrapf(err, "archive: failed to load %s", metaFile)
	}

	switch {
	case meta.Version != FormatVersion:
		return errors.Errorf("archive: unsupported format version %d", meta.Version)
	case meta.Nodes < 1 || meta.Triangles < 0 || meta.TriangleIndices < 0,
		int64(meta.Nodes) > math.MaxUint32, int64(meta.Triangles) > math.MaxUint32, int64(meta.TriangleIndices) > math.MaxUint32:
		return errors.Errorf("archive: invalid array sizes in %s", metaFile)
	}
	return nil
}

func checkEntry(f *zip.File, name string, words uint64) error {
	if f == nil {
		return errors.Errorf("archive: missing %s", name)
	}
	if f.UncompressedSize64 != 4*words {
		return errors.Errorf("archive: expected %s to contain %d bytes; got %d", name, 4*words, f.UncompressedSize64)
	}
	return nil
}

// Read the raw contents of an entry. Headers can lie about the entry size so
// the buffer only grows with the data actually stored in the archive.
func (r *zipReader) readEntry(f *zip.File, name string, words uint64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "archive: could not open %s", name)
	}
	defer rc.Close()

	buf, err := io.ReadAll(io.LimitReader(rc, int64(4*words)+1))
	if err != nil {
		return nil, errors.Wrapf(err, "archive: failed to load %s", name)
	}
	if uint64(len(buf)) != 4*words {
		return nil, errors.Errorf("archive: expected %s to contain %d bytes; got %d", name, 4*words, len(buf))
	}
	return buf, nil
}
