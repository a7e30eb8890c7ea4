// Package archive stores flattened BVH trees as zip files so they can be
// compiled once and loaded by ray traversal engines without rebuilding.
//
// Each array is written as a separate zip entry holding its raw little-endian
// words. A meta.yaml entry records the array sizes and the tree depth.
package archive

import (
	"archive/zip"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/achilleasa/meshbvh/bvh"
	"github.com/achilleasa/meshbvh/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The archive layout version written into meta.yaml.
const FormatVersion = 1

const (
	metaFile          = "meta.yaml"
	limitsFile        = "limits.bin"
	nodesFile         = "nodes.bin"
	trianglesFile     = "triangles.bin"
	intersectionsFile = "intersections.bin"
)

// Archive metadata.
type Meta struct {
	Version         int    `yaml:"version"`
	Nodes           int    `yaml:"nodes"`
	Triangles       int    `yaml:"triangles"`
	TriangleIndices int    `yaml:"triangle_indices"`
	MaxDepth        uint32 `yaml:"max_depth"`
}

func metaFor(a bvh.Arrays) Meta {
	return Meta{
		Version:         FormatVersion,
		Nodes:           len(a.Nodes()) / bvh.NodeStride,
		Triangles:       len(a.IntersectionData()) / bvh.IntersectionStride,
		TriangleIndices: len(a.TriangleIndices()),
		MaxDepth:        a.MaxDepth(),
	}
}

type zipWriter struct {
	logger log.Logger
	file   string
}

// Write a flattened tree to a zip archive at path.
func Write(path string, a bvh.Arrays) error {
	w := &zipWriter{
		logger: log.New("archive"),
		file:   path,
	}
	return w.Write(a)
}

// Write the archive to a temporary file next to the target and move it into
// place once complete. Failed writes leave nothing behind.
func (w *zipWriter) Write(a bvh.Arrays) error {
	w.logger.Noticef(`writing compressed BVH to "%s"`, w.file)
	start := time.Now()

	tmpFile, err := os.CreateTemp(filepath.Dir(w.file), filepath.Base(w.file)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "archive: could not create output file")
	}

	err = writeZip(tmpFile, a)
	if err == nil {
		err = errors.Wrap(tmpFile.Chmod(0644), "archive: could not set output file mode")
	}
	if closeErr := tmpFile.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, "archive: could not close output file")
	}
	if err == nil {
		err = errors.Wrap(os.Rename(tmpFile.Name(), w.file), "archive: could not move output file into place")
	}
	if err != nil {
		os.Remove(tmpFile.Name())
		return err
	}

	w.logger.Noticef("compressed BVH in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Write the metadata and array entries of a zip archive to out.
func writeZip(out io.Writer, a bvh.Arrays) error {
	zw := zip.NewWriter(out)

	meta, err := yaml.Marshal(metaFor(a))
	if err != nil {
		return errors.Wrap(err, "archive: could not encode metadata")
	}
	cw, err := zw.Create(metaFile)
	if err == nil {
		_, err = cw.Write(meta)
	}
	if err != nil {
		return errors.Wrapf(err, "archive: could not write %s", metaFile)
	}

	entries := []struct {
		name string
		data interface{}
	}{
		{limitsFile, a.Limits()},
		{nodesFile, a.Nodes()},
		{trianglesFile, a.TriangleIndices()},
		{intersectionsFile, a.IntersectionData()},
	}
	for _, entry := range entries {
		cw, err = zw.Create(entry.name)
		if err == nil {
			err = binary.Write(cw, binary.LittleEndian, entry.data)
		}
		if err != nil {
			return errors.Wrapf(err, "archive: could not write %s", entry.name)
		}
	}

	return errors.Wrap(zw.Close(), "archive: could not finalize zip file")
}
