package check

import (
	"context"
	"log/slog"
	"os"

	"github.com/broady/tsapi/cmd/tsapi/internal/ui"
	"github.com/broady/tsapi/internal/config"
	"github.com/broady/tsapi/schema"
	"github.com/broady/tsapi/typescript"
	"github.com/cockroachdb/errors"
)

type Cmd struct {
	Inputs []string `arg:"" optional:"" help:"Input documents. Without them, inputs come from the project file." type:"existingfile"`
	Config string   `help:"Project file (default: tsapi.yaml, tsapi.yml or tsapi.toml in the current directory)." short:"c" type:"existingfile"`
}

func (c *Cmd) Run(logger *slog.Logger, out *ui.Printer, version config.ToolVersion) error {
	inputs, err := c.inputs(version)
	if err != nil {
		return err
	}
	failed := 0
	for _, in := range inputs {
		if !Input(context.Background(), in, logger, out) {
			failed++
		}
	}
	if failed > 0 {
		return errors.Newf("%d of %d document(s) have problems", failed, len(inputs))
	}
	return nil
}

func (c *Cmd) inputs(version config.ToolVersion) ([]string, error) {
	if len(c.Inputs) > 0 {
		return c.Inputs, nil
	}
	path := c.Config
	if path == "" {
		var err error
		if path, err = config.Find("."); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if version != "" {
		if err := cfg.CheckVersion(string(version)); err != nil {
			return nil, err
		}
	}
	seen := make(map[string]bool)
	var inputs []string
	for _, t := range cfg.Targets {
		if !seen[t.Input] {
			seen[t.Input] = true
			inputs = append(inputs, t.Input)
		}
	}
	return inputs, nil
}

// Input reports every problem in the document at path and returns whether
// it is clean. A document is clean when it decodes, validates, and generates.
func Input(ctx context.Context, path string, logger *slog.Logger, out *ui.Printer) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		out.Error(err)
		return false
	}

	doc, err := schema.Decode(data, schema.FormatForPath(path))
	if err != nil {
		var de *schema.DecodeError
		if errors.As(err, &de) {
			for _, e := range de.Errors {
				out.Error(errors.Wrapf(e, "%s", path))
			}
		} else {
			out.Error(errors.Wrapf(err, "%s", path))
		}
		return false
	}

	if errs := doc.Validate(); len(errs) > 0 {
		for _, e := range errs {
			out.Error(errors.Wrapf(e, "%s", path))
		}
		return false
	}

	res, err := typescript.GenerateResult(ctx, doc, typescript.Options{Logger: logger})
	if err != nil {
		out.Error(errors.Wrapf(err, "%s", path))
		return false
	}

	endpoints := 0
	_ = schema.Walk(doc.API, func([]string, *schema.Endpoint) error {
		endpoints++
		return nil
	})
	out.Success("%s: %d types, %d endpoints, %d declarations", path, doc.Types.Len(), endpoints, res.Declarations)
	return true
}
