package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/broady/tsapi/cmd/tsapi/internal/check"
	"github.com/broady/tsapi/cmd/tsapi/internal/gen"
	"github.com/broady/tsapi/cmd/tsapi/internal/scaffold"
	"github.com/broady/tsapi/cmd/tsapi/internal/ui"
	"github.com/broady/tsapi/internal/config"
)

type CLI struct {
	Verbose bool `help:"Log debug output to stderr." short:"v"`
	NoColor bool `help:"Disable colored output." env:"NO_COLOR" name:"no-color"`

	Version VersionCmd   `cmd:"" help:"Print version information."`
	Init    scaffold.Cmd `cmd:"" help:"Create a project file and a starter document."`
	Gen     gen.Cmd      `cmd:"" help:"Generate TypeScript declarations from API documents."`
	Check   check.Cmd    `cmd:"" help:"Validate API documents without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("tsapi"),
		kong.Description("Generate TypeScript type declarations for an API surface."),
		kong.UsageOnError(),
	)

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	printer := ui.New(os.Stderr, cli.NoColor)

	if err := ctx.Run(logger, printer, config.ToolVersion(Version())); err != nil {
		printer.Error(err)
		os.Exit(1)
	}
}
