package cmd

import (
	"strings"

	"github.com/achilleasa/meshbvh/archive"
	"github.com/achilleasa/meshbvh/bvh"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Display stored BVH info.
func ShowInfo(ctx *cli.Context) error {
	_, closer, err := setupLogging(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	if ctx.NArg() != 1 {
		return errors.New("missing BVH archive file")
	}

	zipFile := ctx.Args().First()
	if !strings.HasSuffix(zipFile, ".zip") {
		return errors.New("only BVH archives with a .zip extension are supported")
	}

	d, err := archive.Read(zipFile)
	if err != nil {
		return err
	}

	logger.Noticef("BVH information:\n%s", bvh.Stats(d))
	return nil
}
