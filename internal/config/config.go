// Package config loads tsapi project files and command-line overrides.
//
// A project file lists generation targets:
//
//	targets:
//	  - input: api/schema.yaml
//	    output: web/src/api.ts
//	    rootName: API
//	    namedAliases: true
//	    header: Code generated by tsapi. DO NOT EDIT.
//	    formatter: canonical
//
// A target using formatter: prettier may set formatterCommand to run a
// different prettier-compatible command line. A top-level requires: entry
// holds a semantic version constraint the tsapi binary must satisfy.
//
// The same structure may be written as TOML ([[targets]] tables).
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/broady/tsapi/typescript"
	"github.com/broady/tsapi/typescript/format"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileNames are the project file names looked up by Find, in order.
var FileNames = []string{"tsapi.yaml", "tsapi.yml", "tsapi.toml"}

// ErrNotFound is returned by Find when no project file exists.
var ErrNotFound = errors.New("no tsapi project file")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("semverconstraint", func(fl validator.FieldLevel) bool {
		_, err := semver.NewConstraint(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Target is one input document and the file generated from it.
type Target struct {
	Input        string `yaml:"input" toml:"input" validate:"required"`
	Output       string `yaml:"output" toml:"output" validate:"required"`
	RootName     string `yaml:"rootName,omitempty" toml:"rootName,omitempty"`
	NamedAliases bool   `yaml:"namedAliases,omitempty" toml:"namedAliases,omitempty"`
	Header       string `yaml:"header,omitempty" toml:"header,omitempty"`
	Formatter    string `yaml:"formatter,omitempty" toml:"formatter,omitempty" validate:"omitempty,oneof=canonical prettier none"`

	// FormatterCommand replaces the default prettier command line.
	FormatterCommand string `yaml:"formatterCommand,omitempty" toml:"formatterCommand,omitempty" validate:"excluded_unless=Formatter prettier"`
}

// Options returns the generator options for t.
func (t Target) Options(logger *slog.Logger) (typescript.Options, error) {
	f, err := format.ByName(t.Formatter)
	if err != nil {
		return typescript.Options{}, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p, ok := f.(format.Prettier)
	if !ok && t.FormatterCommand != "" {
		return typescript.Options{}, errors.Newf("formatterCommand requires formatter prettier, got %q", t.Formatter)
	}
	if ok {
		p.Dir = filepath.Dir(t.Output)
		if t.FormatterCommand != "" {
			if p.Command, err = format.ParseCommand(t.FormatterCommand); err != nil {
				return typescript.Options{}, err
			}
		}
		f = p
	}
	return typescript.Options{
		RootName:     t.RootName,
		NamedAliases: t.NamedAliases,
		Header:       t.Header,
		Formatter:    f,
		Logger:       logger.With(slog.String("target", t.Output)),
	}, nil
}

// Config is a parsed project file.
type Config struct {
	// Requires is a version constraint such as ">= 0.2, < 1".
	Requires string `yaml:"requires,omitempty" toml:"requires,omitempty" validate:"omitempty,semverconstraint"`

	Targets []Target `yaml:"targets" toml:"targets" validate:"required,min=1,dive"`

	// Path is the file the config was loaded from.
	Path string `yaml:"-" toml:"-"`
}

// Find returns the first project file from FileNames present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.WithHintf(
		errors.Wrapf(ErrNotFound, "in %s", dir),
		"create %s or pass an input document to tsapi gen", FileNames[0],
	)
}

// Load reads and validates the project file at path. Relative input and
// output paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	cfg.Path = path

	base := filepath.Dir(path)
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		t.Input = resolvePath(base, t.Input)
		t.Output = resolvePath(base, t.Output)
	}
	return cfg, nil
}

// Parse decodes a project file. ext selects the syntax: ".toml" for TOML,
// anything else for YAML.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Wrap(err, "parse TOML")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("unknown key %q", undecoded[0].String())
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Wrap(err, "parse YAML")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode renders c in the syntax Parse reads for ext.
func (c *Config) Encode(ext string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, errors.Wrap(err, "encode TOML")
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, errors.Wrap(err, "encode YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encode YAML")
		}
	}
	return buf.Bytes(), nil
}

// Validate checks required fields, formatter names and the version
// constraint.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	msgs := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msgs = append(msgs, formatValidationError(ve))
	}
	return errors.Newf("invalid config: %s", strings.Join(msgs, "; "))
}

// ToolVersion is the version of the running tsapi binary. Commands receive
// it to check against Config.Requires.
type ToolVersion string

// CheckVersion reports whether version satisfies c.Requires. Development
// builds ("devel-0.2.0+abc1234") are compared by their base version.
func (c *Config) CheckVersion(version string) error {
	if c.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return errors.Wrapf(err, "requires %q", c.Requires)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "devel-"))
	if err != nil {
		return errors.Wrapf(err, "tsapi version %q", version)
	}
	if ok, reasons := constraint.Validate(v); !ok {
		msgs := make([]string, len(reasons))
		for i, r := range reasons {
			msgs[i] = r.Error()
		}
		return errors.WithHintf(
			errors.Newf("tsapi %s does not satisfy requires %q: %s", version, c.Requires, strings.Join(msgs, "; ")),
			"install a matching version or update %s", filepath.Base(c.Path),
		)
	}
	return nil
}

func formatValidationError(ve validator.FieldError) string {
	field := strings.TrimPrefix(ve.Namespace(), "Config.")
	switch ve.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entry", field, ve.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, ve.Param())
	case "excluded_unless":
		return fmt.Sprintf("%s is only valid with formatter prettier", field)
	case "semverconstraint":
		return fmt.Sprintf("%s is not a version constraint: %q", field, ve.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, ve.Tag())
	}
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
