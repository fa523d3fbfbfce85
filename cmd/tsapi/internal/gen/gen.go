package gen

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"syscall"

	"github.com/broady/tsapi/cmd/tsapi/internal/ui"
	"github.com/broady/tsapi/internal/config"
	"github.com/broady/tsapi/internal/watch"
	"github.com/broady/tsapi/schema"
	"github.com/broady/tsapi/sink"
	"github.com/broady/tsapi/typescript"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

type Cmd struct {
	Input  string   `arg:"" optional:"" help:"Input document (.json, .yaml or .yml). Without it, targets come from the project file." type:"existingfile"`
	Output string   `help:"Output file. Defaults to stdout when an input is given." short:"o" type:"path"`
	Config string   `help:"Project file (default: tsapi.yaml, tsapi.yml or tsapi.toml in the current directory)." short:"c" type:"existingfile"`
	Set    []string `help:"Override a target option, e.g. rootName=Service. Repeatable." placeholder:"KEY=VALUE"`
	Watch  bool     `help:"Watch inputs and regenerate on change." short:"w"`
	DryRun bool     `help:"Generate without writing; report which outputs would change." name:"dry-run"`

	version config.ToolVersion
}

func (c *Cmd) Run(logger *slog.Logger, out *ui.Printer, version config.ToolVersion) error {
	c.version = version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, cfgPath, err := c.targets()
	if err != nil {
		return err
	}

	r := &Runner{Logger: logger, Out: out, Stdout: os.Stdout, DryRun: c.DryRun}
	err = r.Run(ctx, targets)
	if !c.Watch {
		return err
	}
	if err != nil {
		out.Error(err)
	}
	return c.watch(ctx, r, targets, cfgPath)
}

// targets returns the targets to generate and the project file they came
// from, if any.
func (c *Cmd) targets() ([]config.Target, string, error) {
	overrides, err := config.ParseOverrides(c.Set)
	if err != nil {
		return nil, "", err
	}

	if c.Input != "" {
		t := overrides.Apply(config.Target{Input: c.Input, Output: c.Output})
		return []config.Target{t}, "", nil
	}
	if c.Output != "" {
		return nil, "", errors.New("--output requires an input document")
	}

	path := c.Config
	if path == "" {
		if path, err = config.Find("."); err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if c.version != "" {
		if err := cfg.CheckVersion(string(c.version)); err != nil {
			return nil, "", err
		}
	}
	targets := make([]config.Target, len(cfg.Targets))
	for i, t := range cfg.Targets {
		targets[i] = overrides.Apply(t)
	}
	return targets, path, nil
}

func (c *Cmd) watch(ctx context.Context, r *Runner, targets []config.Target, cfgPath string) error {
	var (
		mu sync.Mutex
		w  *watch.Watcher
	)
	onChange := func(paths []string) {
		mu.Lock()
		defer mu.Unlock()

		var changed []config.Target
		if cfgPath != "" && slices.Contains(paths, absPath(cfgPath)) {
			reloaded, _, err := c.targets()
			if err != nil {
				r.Out.Error(err)
				return
			}
			targets, changed = reloaded, reloaded
			if err := w.SetFiles(watchedFiles(targets, cfgPath)); err != nil {
				r.Out.Error(err)
			}
		} else {
			changed = changedTargets(targets, paths)
		}
		if err := r.Run(ctx, changed); err != nil {
			r.Out.Error(err)
		}
	}

	files := watchedFiles(targets, cfgPath)
	w, err := watch.New(files, watch.DefaultDelay, r.Logger, onChange)
	if err != nil {
		return err
	}
	r.Out.Info("watching %d file(s), press Ctrl-C to stop", len(files))
	return w.Run(ctx)
}

// watchedFiles lists every target input plus the project file, if any.
func watchedFiles(targets []config.Target, cfgPath string) []string {
	files := make([]string, 0, len(targets)+1)
	for _, t := range targets {
		if !slices.Contains(files, t.Input) {
			files = append(files, t.Input)
		}
	}
	if cfgPath != "" {
		files = append(files, cfgPath)
	}
	return files
}

// changedTargets returns the targets whose input is among paths.
func changedTargets(targets []config.Target, paths []string) []config.Target {
	return slices.DeleteFunc(slices.Clone(targets), func(t config.Target) bool {
		return !slices.Contains(paths, absPath(t.Input))
	})
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Runner generates targets concurrently.
type Runner struct {
	Logger *slog.Logger
	Out    *ui.Printer

	// Stdout receives output for targets without an output file.
	Stdout io.Writer

	// DryRun generates into memory and reports what would change.
	DryRun bool

	stdoutMu sync.Mutex
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

type outcome struct {
	status sink.Status
	result *typescript.Result
	err    error
}

// Run generates every target and reports each outcome in target order.
// One failing target does not stop the others.
func (r *Runner) Run(ctx context.Context, targets []config.Target) error {
	outcomes := make([]outcome, len(targets))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range targets {
		g.Go(func() error {
			status, res, err := r.generate(ctx, t)
			outcomes[i] = outcome{status: status, result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, o := range outcomes {
		t := targets[i]
		switch {
		case o.err != nil:
			failed++
			r.Out.Error(errors.Wrapf(o.err, "%s", t.Input))
		case t.Output == "":
		case r.DryRun && o.status == sink.Written:
			r.Out.Warn("%s would change", t.Output)
		case o.status == sink.Unchanged:
			r.Out.Info("%s unchanged", t.Output)
		default:
			r.Out.Success("wrote %s (%d declarations)", t.Output, o.result.Declarations)
		}
	}
	if failed > 0 {
		return errors.Newf("%d of %d target(s) failed", failed, len(targets))
	}
	return nil
}

func (r *Runner) generate(ctx context.Context, t config.Target) (sink.Status, *typescript.Result, error) {
	data, err := os.ReadFile(t.Input)
	if err != nil {
		return sink.Written, nil, err
	}
	doc, err := schema.Decode(data, schema.FormatForPath(t.Input))
	if err != nil {
		return sink.Written, nil, err
	}
	opts, err := t.Options(r.logger())
	if err != nil {
		return sink.Written, nil, err
	}
	res, err := typescript.GenerateResult(ctx, doc, opts)
	if err != nil {
		return sink.Written, nil, err
	}

	if t.Output == "" {
		r.stdoutMu.Lock()
		defer r.stdoutMu.Unlock()
		_, err := io.WriteString(r.Stdout, res.Source)
		return sink.Written, res, err
	}

	dir, name := filepath.Split(t.Output)
	var s sink.Sink = sink.NewFilesystemSink(dir)
	if r.DryRun {
		mem := sink.NewMemorySink()
		if existing, err := os.ReadFile(t.Output); err == nil {
			if _, err := mem.WriteFile(ctx, name, existing); err != nil {
				return sink.Written, nil, err
			}
		}
		s = mem
	}
	status, err := s.WriteFile(ctx, name, []byte(res.Source))
	if err != nil {
		return sink.Written, nil, err
	}
	r.logger().Debug("output", slog.String("path", t.Output), slog.String("status", status.String()))
	return status, res, nil
}
