// Package plink is the boundary to the external genotype toolchain: it
// holds the run configuration, invokes the wrapper scripts, and parses the
// flat file formats (.fam, .eigenvec, .bim) the rest of the pipeline
// consumes.
package plink

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the paths shared by every external-tool invocation. It is
// decoded once at startup and treated as read-only afterwards.
type Config struct {
	ScriptDir   string `toml:"script_dir"`
	OutDir      string `toml:"output_dir"`
	MemoryLimit uint64 `toml:"memory_limit"`
}

// DefaultConfig returns the configuration used when no TOML file is given.
func DefaultConfig() Config {
	return Config{
		ScriptDir:   "scripts",
		OutDir:      ".",
		MemoryLimit: 1 << 30,
	}
}

// LoadConfig decodes a TOML configuration file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return Config{}, fmt.Errorf("plink: decode config %s: %w", path, err)
	}
	return config, nil
}

// Script resolves the path of a wrapper script inside ScriptDir.
func (c Config) Script(name string) string {
	return filepath.Join(c.ScriptDir, name)
}
