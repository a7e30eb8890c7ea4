package cmd

import (
	"io"

	"github.com/achilleasa/meshbvh/config"
	"github.com/achilleasa/meshbvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("meshbvh")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Load the tool config and apply its logging settings. The -v/-vv and
// --log-file flags take precedence over the config file. The returned closer
// releases the log file sink, if any.
func setupLogging(ctx *cli.Context) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if logFile := ctx.GlobalString("log-file"); logFile != "" {
		cfg.Logging.File = logFile
	}
	if cfg.Logging.File != "" {
		closer = log.SetFileSink(cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays)
	}

	level, _ := log.ParseLevel(cfg.Logging.Level)
	if ctx.GlobalBool("v") {
		level = log.Info
	}
	if ctx.GlobalBool("vv") {
		level = log.Debug
	}
	log.SetLevel(level)

	return cfg, closer, nil
}
