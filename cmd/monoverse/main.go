// Package main implements the monoverse CLI: the resolve, tag and
// validate subcommands that drive internal/engine end-to-end.
// entrypoint is split from main so deferred cleanup runs before the
// process exits on error.
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/monoverse/monoverse/pkg/slogext"
)

func entrypoint(log slogext.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := newApp(log)
	return app.RunContext(ctx, os.Args)
}

func main() {
	log := slogext.New()

	if err := entrypoint(log); err != nil {
		log.WithError(err).Error("failed to run")
		os.Exit(1)
	}
}

func newApp(log slogext.Logger) *cli.App {
	return &cli.App{
		Name:        "monoverse",
		Usage:       "compute and tag versions for projects in a monorepo",
		Description: "A version resolution engine: one resolve call per project, driven by branch type, commit history and file changes.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(slogext.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			newResolveCommand(log),
			newTagCommand(log),
			newValidateCommand(),
		},
	}
}
