package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestParseTOML(t *testing.T) {
	c, err := Parse([]byte(`
[project]
name = "demo"
entry = "main.lox"

[vm]
trace = true
print_code = true
max_steps = 1000

[repl]
prompt = "lox> "

[log]
verbosity = 2
`), "lox.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Project.Name != "demo" || c.Project.Entry != "main.lox" {
		t.Fatalf("unexpected project %+v", c.Project)
	}
	if !c.VM.Trace || !c.VM.PrintCode || c.VM.MaxSteps != 1000 {
		t.Fatalf("unexpected vm section %+v", c.VM)
	}
	if c.REPL.Prompt != "lox> " {
		t.Fatalf("expected prompt override, got %q", c.REPL.Prompt)
	}
	if c.Log.Verbosity != 2 {
		t.Fatalf("expected verbosity 2, got %d", c.Log.Verbosity)
	}
}

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(`
project:
  entry: app.lox
vm:
  trace: true
log:
  file: lox.log
`), "lox.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Project.Entry != "app.lox" || !c.VM.Trace || c.Log.File != "lox.log" {
		t.Fatalf("unexpected config %+v", c)
	}
	if c.REPL.Prompt != DefaultPrompt {
		t.Fatalf("expected default prompt, got %q", c.REPL.Prompt)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		path string
		data string
	}{
		{"lox.toml", "[vm\ntrace = true"},
		{"lox.yaml", "vm: [unclosed"},
		{"lox.json", "{}"},
		{"lox.toml", "[vm]\nmax_steps = -1"},
	}
	for _, tt := range tests {
		if _, err := Parse([]byte(tt.data), tt.path); err == nil {
			t.Fatalf("%s %q: expected error", tt.path, tt.data)
		}
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lox.toml", "[project]\nentry = \"main.lox\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantDir, _ := filepath.Abs(root)
	if c.Dir != wantDir {
		t.Fatalf("expected dir %q, got %q", wantDir, c.Dir)
	}
	if c.EntryPath() != filepath.Join(wantDir, "main.lox") {
		t.Fatalf("unexpected entry path %q", c.EntryPath())
	}
}

func TestFindPrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lox.yaml", "project:\n  name: yaml\n")
	writeFile(t, dir, "lox.toml", "[project]\nname = \"toml\"\n")

	c, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Project.Name != "toml" {
		t.Fatalf("expected lox.toml to win, got %q", c.Project.Name)
	}
}

func TestDefaults(t *testing.T) {
	c := Default()
	if c.REPL.Prompt != DefaultPrompt {
		t.Fatalf("unexpected prompt %q", c.REPL.Prompt)
	}
	if c.Path != "" || c.EntryPath() != "" {
		t.Fatalf("expected empty path and entry, got %q %q", c.Path, c.EntryPath())
	}
	if c.VM.Trace || c.VM.PrintCode || c.VM.MaxSteps != 0 {
		t.Fatalf("expected debug switches off, got %+v", c.VM)
	}
}
