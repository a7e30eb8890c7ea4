package cmd

import "github.com/urfave/cli"

// Create the meshbvh command line application.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "meshbvh"
	app.Usage = "build ray tracing acceleration structures for triangle meshes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a YAML config file",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "write logs to a size-rotated file instead of stdout",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "build a BVH for a mesh and store it in a compressed archive",
			Description: `
Parse a triangle mesh from a wavefront obj or ascii ply file, build a BVH tree
using the surface area heuristic and flatten it into GPU-friendly arrays.

The flattened tree is written next to the mesh file as a <name>.bvh.zip archive
which can be supplied as an argument to the info command.`,
			ArgsUsage: "mesh_file1.obj mesh_file2.ply ...",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "max number of parallel subtree builders (overrides build.workers)",
				},
			},
			Action: CompileMesh,
		},
		{
			Name:      "info",
			Usage:     "print statistics for a stored BVH archive",
			ArgsUsage: "mesh.bvh.zip",
			Action:    ShowInfo,
		},
	}

	return app
}
