// Package config loads lox.toml / lox.yaml project settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Names searched for, in order, in each directory.
var Names = []string{"lox.toml", "lox.yaml", "lox.yml"}

const (
	DefaultPrompt  = "> "
	DefaultHistory = ".lox_history"
)

type Config struct {
	Project Project `toml:"project" yaml:"project"`
	VM      VM      `toml:"vm" yaml:"vm"`
	REPL    REPL    `toml:"repl" yaml:"repl"`
	Log     Log     `toml:"log" yaml:"log"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
	// Dir is the directory holding Path.
	Dir string `toml:"-" yaml:"-"`
}

type Project struct {
	Name  string `toml:"name" yaml:"name"`
	Entry string `toml:"entry" yaml:"entry"`
}

type VM struct {
	Trace     bool  `toml:"trace" yaml:"trace"`
	PrintCode bool  `toml:"print_code" yaml:"print_code"`
	MaxSteps  int64 `toml:"max_steps" yaml:"max_steps"`
}

type REPL struct {
	Prompt  string `toml:"prompt" yaml:"prompt"`
	History string `toml:"history" yaml:"history"`
}

type Log struct {
	// Verbosity is passed to commonlog: 0 is the default level and each
	// step up is more verbose.
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	File      string `toml:"file" yaml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load reads a config file, picking the decoder from its extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c.Dir = filepath.Dir(c.Path)
	return c, nil
}

// Parse decodes data as TOML or YAML depending on path's extension. The
// path is used only for the format and error messages.
func Parse(data []byte, path string) (*Config, error) {
	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unknown config format", path)
	}

	if err := c.validate(path); err != nil {
		return nil, err
	}
	c.setDefaults()
	return &c, nil
}

// Find walks up from dir looking for a config file. It returns "" and no
// error when none exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range Names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// FindAndLoad loads the nearest config file above startDir, or the
// defaults if there is none.
func FindAndLoad(startDir string) (*Config, error) {
	path, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// EntryPath resolves project.entry against the config's directory.
func (c *Config) EntryPath() string {
	if c.Project.Entry == "" {
		return ""
	}
	if filepath.IsAbs(c.Project.Entry) || c.Dir == "" {
		return c.Project.Entry
	}
	return filepath.Join(c.Dir, c.Project.Entry)
}

func (c *Config) validate(path string) error {
	if c.VM.MaxSteps < 0 {
		return fmt.Errorf("%s: vm.max_steps must not be negative", path)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.REPL.Prompt == "" {
		c.REPL.Prompt = DefaultPrompt
	}
	if c.REPL.History == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.REPL.History = filepath.Join(home, DefaultHistory)
		}
	} else if strings.HasPrefix(c.REPL.History, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.REPL.History = filepath.Join(home, c.REPL.History[2:])
		}
	}
}
