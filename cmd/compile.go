package cmd

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/achilleasa/meshbvh/archive"
	"github.com/achilleasa/meshbvh/bvh"
	"github.com/achilleasa/meshbvh/mesh"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Archive file extension.
const archiveExt = ".bvh.zip"

// Build a BVH for each mesh argument and write it to an archive.
func CompileMesh(ctx *cli.Context) error {
	cfg, closer, err := setupLogging(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	if ctx.NArg() == 0 {
		return errors.New("missing mesh file arguments")
	}

	opts := cfg.BuildOptions()
	if workers := ctx.Int("workers"); workers > 0 {
		opts.Workers = workers
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		meshFile := ctx.Args().Get(idx)
		if !mesh.IsSupported(meshFile) {
			logger.Warningf("skipping unsupported file %s", meshFile)
			continue
		}

		m, err := mesh.ReadMesh(meshFile)
		if err != nil {
			return err
		}

		logger.Noticef("building BVH for %q using %d workers", m.Name, opts.Workers)
		start := time.Now()
		tree := bvh.NewFromMesh(m, opts)
		logger.Noticef("built BVH in %d ms; max depth: %d", time.Since(start).Nanoseconds()/1e6, tree.MaxDepth())
		if tree.DroppedFaces() > 0 {
			logger.Warningf("%d faces were excluded from the BVH", tree.DroppedFaces())
		}

		// Display tree info
		logger.Noticef("BVH information:\n%s", bvh.Stats(tree))

		if err = archive.Write(archiveFile(meshFile), tree); err != nil {
			return err
		}
	}

	return nil
}

// Get the archive filename for a mesh file. Archives for remote meshes are
// written to the current folder.
func archiveFile(meshFile string) string {
	if u, err := url.Parse(meshFile); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		meshFile = path.Base(u.Path)
	}
	return strings.TrimSuffix(meshFile, filepath.Ext(meshFile)) + archiveExt
}
