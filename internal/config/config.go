// Package config handles loading shaderc configuration from files.
//
// Configuration can be specified in a JSON file named shaderc.json or
// .shadercrc. The config file is searched for in the current directory and
// parent directories.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/driver"
)

// Config represents the configuration file structure. All fields are
// optional and fall back to driver defaults when unset.
type Config struct {
	// Optimize runs the optimizer pass before code generation (default true).
	Optimize *bool `json:"optimize,omitempty"`

	// Verbose emits one structured log record per compile phase.
	Verbose *bool `json:"verbose,omitempty"`

	// Stats prints optimizer statistics after a successful compile.
	Stats *bool `json:"stats,omitempty"`

	// EmitGLSL skips SPIR-V assembly and stops after GLSL generation.
	EmitGLSL *bool `json:"emitGLSL,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of
// preference.
var ConfigFileNames = []string{
	"shaderc.json",
	".shadercrc",
	".shadercrc.json",
}

// Load searches for a config file starting from startDir and walking up to
// parent directories. Returns nil, "", nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ToOptions converts a Config to driver.Options, using defaults for unset
// fields.
func (c *Config) ToOptions() driver.Options {
	opts := driver.DefaultOptions()

	if c == nil {
		return opts
	}
	if c.Optimize != nil {
		opts.Optimize = *c.Optimize
	}
	if c.Verbose != nil {
		opts.Verbose = *c.Verbose
	}
	if c.Stats != nil {
		opts.Stats = *c.Stats
	}
	if c.EmitGLSL != nil {
		opts.EmitGLSL = *c.EmitGLSL
	}

	return opts
}

// MergeOptions carries CLI flag values; nil pointers mean "not specified on
// the command line" and defer to the config file / defaults.
type MergeOptions struct {
	Optimize *bool
	Verbose  *bool
	Stats    *bool
	EmitGLSL *bool
}

// Merge combines config file options with CLI options. CLI options take
// precedence when specified.
func (c *Config) Merge(cli MergeOptions) driver.Options {
	opts := c.ToOptions()

	if cli.Optimize != nil {
		opts.Optimize = *cli.Optimize
	}
	if cli.Verbose != nil {
		opts.Verbose = *cli.Verbose
	}
	if cli.Stats != nil {
		opts.Stats = *cli.Stats
	}
	if cli.EmitGLSL != nil {
		opts.EmitGLSL = *cli.EmitGLSL
	}

	return opts
}
