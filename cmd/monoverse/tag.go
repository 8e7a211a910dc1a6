package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/monoverse/monoverse/internal/gitadapter"
	"github.com/monoverse/monoverse/pkg/slogext"
	"github.com/monoverse/monoverse/pkg/version"
)

func newTagCommand(log slogext.Logger) *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "create the tag for a resolved version",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repo", Value: ".", Usage: "path to the git repository"},
			&cli.StringFlag{Name: "version", Required: true, Usage: "the resolved version, e.g. 1.2.0 or 1.2.0-alpha.1"},
			&cli.StringFlag{Name: "project-name", Usage: "project name; omit for a whole-repository (global) tag"},
			&cli.StringFlag{Name: "prefix", Value: "v", Usage: "tag prefix"},
			&cli.StringFlag{Name: "message", Usage: "annotated tag message"},
			&cli.BoolFlag{Name: "dry-run", Usage: "validate and report, but don't write the tag"},
		},
		Action: func(c *cli.Context) error {
			return runTag(c, log)
		},
	}
}

func runTag(c *cli.Context, log slogext.Logger) error {
	v, err := version.Parse(c.String("version"))
	if err != nil {
		return fmt.Errorf("parsing --version: %w", err)
	}

	repo, err := gitadapter.Open(c.String("repo"), log)
	if err != nil {
		return err
	}
	defer repo.Close()

	head, err := repo.HeadHash()
	if err != nil {
		return err
	}

	name := tagLabel(v, c.String("project-name"), c.String("prefix"))

	outcome, err := repo.CreateTag(name, c.String("message"), head, c.Bool("dry-run"))
	if err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}

	fmt.Fprintf(c.App.Writer, "%s: %s\n", name, outcome)
	return nil
}

// tagLabel implements spec §6's tag label grammar: a major release
// (M.0.0, no prerelease) gets a global tag `<prefix><version>`, as does
// any version when projectName is empty; anything else is
// project-scoped `<name>/<prefix><version>`.
func tagLabel(v version.Version, projectName, prefix string) string {
	isMajorRelease := v.Minor == 0 && v.Patch == 0 && !v.IsPrerelease()
	label := v.WithPrefix(prefix)
	if isMajorRelease || projectName == "" {
		return label
	}
	return projectName + "/" + label
}
