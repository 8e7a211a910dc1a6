package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/validator"
	"github.com/monoverse/monoverse/pkg/config"
	"github.com/monoverse/monoverse/pkg/version"
)

func newValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check a candidate version against configured constraints",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Required: true, Usage: "path to a monoverse configuration file"},
			&cli.StringFlag{Name: "project-name", Required: true},
			&cli.StringFlag{Name: "version", Required: true, Usage: "candidate version"},
			&cli.StringFlag{Name: "previous", Usage: "previous version, for require_monotonic_increase"},
			&cli.StringFlag{Name: "bump", Value: "none", Usage: "none|patch|minor|major"},
			&cli.BoolFlag{Name: "major-approved"},
		},
		Action: runValidate,
	}
}

func runValidate(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	candidate, err := version.Parse(c.String("version"))
	if err != nil {
		return fmt.Errorf("parsing --version: %w", err)
	}

	var previous *version.Version
	if s := c.String("previous"); s != "" {
		v, err := version.Parse(s)
		if err != nil {
			return fmt.Errorf("parsing --previous: %w", err)
		}
		previous = &v
	}

	bump, err := parseBumpFlag(c.String("bump"))
	if err != nil {
		return err
	}

	vcfg := cfg.ToValidatorConfig()
	vcfg.MajorApproved = c.Bool("major-approved")

	result := validator.Check(vcfg, candidate, previous, bump)

	// Exit semantics at the CLI boundary (spec §6): 0 on success
	// regardless of is_valid, non-zero only on I/O/configuration
	// errors, which the error returns above already cover.
	fmt.Fprintf(c.App.Writer, "valid=%t\n", result.IsValid)
	for _, e := range result.Errors {
		fmt.Fprintf(c.App.Writer, "error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(c.App.Writer, "warning: %s\n", w)
	}
	return nil
}

func parseBumpFlag(s string) (model.BumpType, error) {
	switch s {
	case "", "none":
		return model.BumpNone, nil
	case "patch":
		return model.BumpPatch, nil
	case "minor":
		return model.BumpMinor, nil
	case "major":
		return model.BumpMajor, nil
	default:
		return model.BumpNone, fmt.Errorf("unrecognized --bump %q", s)
	}
}
