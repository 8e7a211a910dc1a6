package main

import (
	"encoding/json"
	"fmt"
	"io"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/urfave/cli/v2"

	"github.com/monoverse/monoverse/internal/cache"
	"github.com/monoverse/monoverse/internal/engine"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/yaml"
	"github.com/monoverse/monoverse/pkg/config"
	"github.com/monoverse/monoverse/pkg/slogext"
	"github.com/monoverse/monoverse/pkg/version"
)

func newResolveCommand(log slogext.Logger) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "compute the version for one project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repo", Value: ".", Usage: "path to the git repository"},
			&cli.StringFlag{Name: "project-name", Required: true},
			&cli.StringFlag{Name: "project-path", Required: true, Usage: "project directory, relative to repo root"},
			&cli.StringFlag{Name: "config", Usage: "path to a monoverse configuration file"},
			&cli.BoolFlag{Name: "is-test", Usage: "mark the project as a test project"},
			&cli.BoolFlag{Name: "is-packable", Usage: "mark the project as packable/publishable"},
			&cli.StringFlag{Name: "force-version", Usage: "short-circuit resolution and emit this literal version"},
			&cli.BoolFlag{Name: "major-approved", Usage: "pre-approve a Major bump, skipping the confirmation prompt"},
			&cli.StringFlag{Name: "output", Value: "text", Usage: "text|json|yaml"},
		},
		Action: func(c *cli.Context) error {
			return runResolve(c, log)
		},
	}
}

func runResolve(c *cli.Context, log slogext.Logger) error {
	req, cfg, err := buildResolveRequest(c)
	if err != nil {
		return err
	}

	cch := cache.New()
	result, err := engine.Resolve(c.Context, req, cch, log)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	if cfg != nil && cfg.Constraints.RequireMajorApproval && result.BumpType == model.BumpMajor && !req.MajorApproved {
		approved, askErr := confirmMajorBump(result)
		if askErr != nil {
			return fmt.Errorf("confirm major bump: %w", askErr)
		}
		if !approved {
			return fmt.Errorf("major version bump to %s was not approved", result.VersionString)
		}
		req.MajorApproved = true
		result, err = engine.Resolve(c.Context, req, cch, log)
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
	}

	return printResult(c.App.Writer, c.String("output"), result)
}

func confirmMajorBump(result model.VersionResult) (bool, error) {
	approved := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Resolved version %s is a Major bump. Approve?", result.VersionString),
	}
	if err := survey.AskOne(prompt, &approved); err != nil {
		return false, err
	}
	return approved, nil
}

func buildResolveRequest(c *cli.Context) (engine.Request, *config.Config, error) {
	project := model.ProjectIdentity{
		Name:       c.String("project-name"),
		Path:       c.String("project-path"),
		IsTest:     c.Bool("is-test"),
		IsPackable: c.Bool("is-packable"),
	}

	req := engine.Request{
		RepoPath:      c.String("repo"),
		Project:       project,
		MajorApproved: c.Bool("major-approved"),
	}

	var cfg *config.Config
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return req, nil, fmt.Errorf("loading config: %w", err)
		}
		req.Config = cfg.EngineConfig(project.Name)
		if fv := cfg.ForceVersion(project.Name); fv != nil {
			req.ForceVersion = fv
		}
	} else {
		req.Config = engine.Config{TagPrefix: "v"}
	}

	if fv := c.String("force-version"); fv != "" {
		v, err := version.Parse(fv)
		if err != nil {
			return req, cfg, fmt.Errorf("parsing --force-version: %w", err)
		}
		req.ForceVersion = &v
	}

	return req, cfg, nil
}

func printResult(w io.Writer, format string, result model.VersionResult) error {
	switch format {
	case "json":
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(b))
		return err
	default:
		_, err := fmt.Fprintf(w, "%s  (bump=%s branch=%s changed=%t valid=%t)\n",
			result.VersionString, result.BumpType, result.BranchType, result.VersionChanged, result.Validation.IsValid)
		return err
	}
}
