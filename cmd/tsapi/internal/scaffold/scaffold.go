// Package scaffold implements tsapi init.
package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/Masterminds/semver/v3"
	"github.com/broady/tsapi/cmd/tsapi/internal/ui"
	"github.com/broady/tsapi/internal/config"
	"github.com/broady/tsapi/sink"
	"github.com/cockroachdb/errors"
)

// StarterDocument is written when the input document does not exist yet.
const StarterDocument = `# tsapi document: types by id, and the endpoint tree that uses them.
types:
  1: {kind: String}
  2:
    kind: Struct
    name: User
    description: A registered user.
    fields:
      id: 1
      name: 1
      email: {typeId: 3, description: Primary address; absent when unverified.}
  3: {kind: Nullable, itemTypeId: 1}
  4: {kind: List, itemTypeId: 2}
api:
  ping: {input: 1, output: 1}
  users:
    get: {input: 1, output: 2, description: Fetch one user by id.}
    list: {input: 1, output: 4}
`

type Cmd struct {
	Dir      string `help:"Directory to create the project file in." default:"." type:"existingdir"`
	Input    string `help:"Input document path, relative to the project file." default:"api.yaml"`
	Output   string `help:"Generated TypeScript path, relative to the project file." default:"src/api.ts"`
	RootName string `help:"Name of the aggregate API type." default:"API" name:"root-name"`
	Syntax   string `help:"Project file syntax." enum:"yaml,toml" default:"yaml"`
	Yes      bool   `help:"Accept the flag values without prompting." short:"y"`
	Force    bool   `help:"Overwrite an existing project file."`
}

// answers receives survey responses; field names match question names.
type answers struct {
	Input    string
	Output   string
	RootName string `survey:"rootName"`
	Syntax   string
}

// ask is replaced in tests.
var ask = func(qs []*survey.Question, response any) error {
	return survey.Ask(qs, response)
}

func (c *Cmd) Run(logger *slog.Logger, out *ui.Printer, version config.ToolVersion) error {
	a := answers{Input: c.Input, Output: c.Output, RootName: c.RootName, Syntax: c.Syntax}
	if !c.Yes {
		if err := ask(c.questions(), &a); err != nil {
			return errors.Wrap(err, "prompt")
		}
	}

	cfg := &config.Config{
		Targets: []config.Target{{Input: a.Input, Output: a.Output}},
	}
	if a.RootName != "" && a.RootName != "API" {
		cfg.Targets[0].RootName = a.RootName
	}
	if v := string(version); v != "" {
		cfg.Requires = requires(v)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ext := ".yaml"
	if a.Syntax == "toml" {
		ext = ".toml"
	}
	data, err := cfg.Encode(ext)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s := sink.NewFilesystemSink(c.Dir)
	s.Overwrite = c.Force

	name := "tsapi" + ext
	if _, err := s.WriteFile(ctx, name, data); err != nil {
		if errors.Is(err, sink.ErrExists) {
			return errors.WithHint(err, "pass --force to replace it")
		}
		return err
	}
	out.Success("wrote %s", filepath.Join(c.Dir, name))
	logger.Debug("project file", slog.String("path", name), slog.Int("targets", len(cfg.Targets)))

	// The starter document is only written when missing.
	rel := filepath.ToSlash(filepath.Clean(a.Input))
	if sink.ValidatePath(rel) != nil {
		out.Info("input %s is outside the project directory; not creating it", a.Input)
		return nil
	}
	s.Overwrite = false
	_, err = s.WriteFile(ctx, rel, []byte(StarterDocument))
	switch {
	case errors.Is(err, sink.ErrExists):
		out.Info("kept existing %s", a.Input)
	case err != nil:
		return err
	default:
		out.Success("wrote starter document %s", filepath.Join(c.Dir, a.Input))
	}
	out.Info("run tsapi gen to generate %s", a.Output)
	return nil
}

func (c *Cmd) questions() []*survey.Question {
	return []*survey.Question{
		{
			Name:     "input",
			Prompt:   &survey.Input{Message: "Input document:", Default: c.Input, Help: "JSON or YAML file with types and api sections"},
			Validate: survey.Required,
		},
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "Generated TypeScript file:", Default: c.Output},
			Validate: survey.Required,
		},
		{
			Name:     "rootName",
			Prompt:   &survey.Input{Message: "Root type name:", Default: c.RootName},
			Validate: survey.Required,
		},
		{
			Name: "syntax",
			Prompt: &survey.Select{
				Message: "Project file syntax:",
				Options: []string{"yaml", "toml"},
				Default: c.Syntax,
			},
		},
	}
}

// requires pins the project file to the running minor version line,
// e.g. "0.1.4" becomes ">= 0.1.0". Unparseable versions pin nothing.
func requires(version string) string {
	v, err := semver.NewVersion(strings.TrimPrefix(version, "devel-"))
	if err != nil {
		return ""
	}
	return fmt.Sprintf(">= %d.%d.0", v.Major(), v.Minor())
}
