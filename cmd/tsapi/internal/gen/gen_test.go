package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/broady/tsapi/cmd/tsapi/internal/ui"
	"github.com/broady/tsapi/internal/config"
)

const pingDoc = `types:
  1: {kind: String}
api:
  ping: {input: 1, output: 1}
`

const pingTS = "export type API = {\n  ping: (input: string) => Promise<string>\n}\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var status, stdout bytes.Buffer
	return &Runner{Out: ui.New(&status, true), Stdout: &stdout}, &status, &stdout
}

func TestRunner_WritesTargets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), pingDoc)
	writeFile(t, filepath.Join(dir, "b.json"), `{"types": {"s": {"kind": "String"}}, "api": {"echo": {"input": "s", "output": "s"}}}`)

	targets := []config.Target{
		{Input: filepath.Join(dir, "a.yaml"), Output: filepath.Join(dir, "out", "a.ts")},
		{Input: filepath.Join(dir, "b.json"), Output: filepath.Join(dir, "out", "b.ts"), RootName: "Echo"},
	}
	r, status, _ := newRunner()
	if err := r.Run(context.Background(), targets); err != nil {
		t.Fatalf("Run() error = %v\n%s", err, status)
	}

	got, err := os.ReadFile(targets[0].Output)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != pingTS {
		t.Errorf("a.ts =\n%s\nwant:\n%s", got, pingTS)
	}
	got, err = os.ReadFile(targets[1].Output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "export type Echo = {") {
		t.Errorf("b.ts does not use the root name:\n%s", got)
	}
	if c := strings.Count(status.String(), "✓ wrote"); c != 2 {
		t.Errorf("status output:\n%s", status)
	}

	// A second run finds nothing to do.
	status.Reset()
	if err := r.Run(context.Background(), targets); err != nil {
		t.Fatal(err)
	}
	if c := strings.Count(status.String(), "unchanged"); c != 2 {
		t.Errorf("second run status:\n%s", status)
	}
}

func TestRunner_Stdout(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), pingDoc)

	r, status, stdout := newRunner()
	if err := r.Run(context.Background(), []config.Target{{Input: filepath.Join(dir, "a.yaml")}}); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != pingTS {
		t.Errorf("stdout = %q, want %q", stdout.String(), pingTS)
	}
	if status.Len() != 0 {
		t.Errorf("unexpected status output: %s", status)
	}
}

func TestRunner_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), pingDoc)
	fresh := filepath.Join(dir, "fresh.ts")
	stale := filepath.Join(dir, "stale.ts")
	writeFile(t, fresh, pingTS)
	writeFile(t, stale, "// old\n")

	r, status, _ := newRunner()
	r.DryRun = true
	targets := []config.Target{
		{Input: filepath.Join(dir, "a.yaml"), Output: fresh},
		{Input: filepath.Join(dir, "a.yaml"), Output: stale},
		{Input: filepath.Join(dir, "a.yaml"), Output: filepath.Join(dir, "missing.ts")},
	}
	if err := r.Run(context.Background(), targets); err != nil {
		t.Fatal(err)
	}

	out := status.String()
	if !strings.Contains(out, fresh+" unchanged") {
		t.Errorf("fresh output not reported unchanged:\n%s", out)
	}
	if !strings.Contains(out, stale+" would change") || !strings.Contains(out, "missing.ts would change") {
		t.Errorf("stale outputs not reported:\n%s", out)
	}
	if got, _ := os.ReadFile(stale); string(got) != "// old\n" {
		t.Error("dry run modified a file")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.ts")); !os.IsNotExist(err) {
		t.Error("dry run created a file")
	}
}

func TestRunner_FailuresDoNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.yaml"), pingDoc)
	writeFile(t, filepath.Join(dir, "bad.yaml"), "types:\n  1: {kind: List, itemTypeId: 99}\napi:\n  get: {input: 1, output: 1}\n")

	targets := []config.Target{
		{Input: filepath.Join(dir, "bad.yaml"), Output: filepath.Join(dir, "bad.ts")},
		{Input: filepath.Join(dir, "good.yaml"), Output: filepath.Join(dir, "good.ts")},
	}
	r, status, _ := newRunner()
	err := r.Run(context.Background(), targets)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("Run() error = %v, want 1 of 2 failed", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.ts")); err != nil {
		t.Errorf("good target not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.ts")); !os.IsNotExist(err) {
		t.Error("failed target left output behind")
	}
	if !strings.Contains(status.String(), "unresolved type reference") {
		t.Errorf("failure not reported:\n%s", status)
	}
}

func TestCmd_Targets(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tsapi.yaml")
	writeFile(t, cfgPath, "targets:\n  - input: a.yaml\n    output: a.ts\n    rootName: One\n")

	c := &Cmd{Config: cfgPath, Set: []string{"rootName=Two"}}
	targets, path, err := c.targets()
	if err != nil {
		t.Fatal(err)
	}
	if path != cfgPath {
		t.Errorf("config path = %q, want %q", path, cfgPath)
	}
	if len(targets) != 1 || targets[0].RootName != "Two" || targets[0].Input != filepath.Join(dir, "a.yaml") {
		t.Errorf("targets = %+v", targets)
	}

	c = &Cmd{Input: "x.yaml", Output: "x.ts", Set: []string{"namedAliases=true"}}
	targets, path, err = c.targets()
	if err != nil {
		t.Fatal(err)
	}
	if path != "" || len(targets) != 1 || !targets[0].NamedAliases || targets[0].Output != "x.ts" {
		t.Errorf("targets = %+v, path = %q", targets, path)
	}

	if _, _, err := (&Cmd{Output: "x.ts"}).targets(); err == nil {
		t.Error("--output without input accepted")
	}
	if _, _, err := (&Cmd{Input: "x.yaml", Set: []string{"bogus=1"}}).targets(); err == nil {
		t.Error("unknown override accepted")
	}
}

func TestWatchedFiles(t *testing.T) {
	targets := []config.Target{
		{Input: "api.yaml", Output: "a.ts"},
		{Input: "api.yaml", Output: "b.ts"},
		{Input: "admin.yaml", Output: "admin.ts"},
	}
	got := watchedFiles(targets, "tsapi.toml")
	if want := []string{"api.yaml", "admin.yaml", "tsapi.toml"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("watchedFiles() = %v, want %v", got, want)
	}
	if got := watchedFiles(targets[:1], ""); len(got) != 1 {
		t.Errorf("watchedFiles() without project file = %v", got)
	}

	changed := changedTargets(targets, []string{absPath("admin.yaml")})
	if len(changed) != 1 || changed[0].Output != "admin.ts" {
		t.Errorf("changedTargets() = %+v", changed)
	}
}
