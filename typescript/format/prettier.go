package format

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
)

// DefaultPrettierCommand runs prettier through npx with the typescript parser.
var DefaultPrettierCommand = []string{"npx", "--yes", "prettier", "--parser", "typescript", "--no-semi"}

// Prettier formats source by piping it through the prettier CLI.
// It requires Node.js on PATH.
type Prettier struct {
	// Command is the argv to run. Default: DefaultPrettierCommand.
	Command []string

	// Dir is the working directory, used by prettier to find its config.
	Dir string
}

// Format implements Formatter.
func (p Prettier) Format(ctx context.Context, src string) (string, error) {
	argv := p.Command
	if len(argv) == 0 {
		argv = DefaultPrettierCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.Dir
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Wrapf(&SyntaxError{Message: msg}, "%s", strings.Join(argv, " "))
	}
	return stdout.String(), nil
}

// ParseCommand splits a shell-style command line such as
// `pnpm exec prettier --parser "typescript"` into argv.
func ParseCommand(line string) ([]string, error) {
	argv, err := shellquote.Split(line)
	if err != nil {
		return nil, errors.Wrapf(err, "formatter command %q", line)
	}
	if len(argv) == 0 {
		return nil, errors.New("formatter command is empty")
	}
	return argv, nil
}

// ByName returns the formatter registered under name: "canonical"
// (the default for ""), "prettier" or "none".
func ByName(name string) (Formatter, error) {
	switch name {
	case "", "canonical":
		return Canonical{}, nil
	case "prettier":
		return Prettier{}, nil
	case "none":
		return Identity, nil
	default:
		return nil, errors.Newf("unknown formatter %q (want canonical, prettier or none)", name)
	}
}
