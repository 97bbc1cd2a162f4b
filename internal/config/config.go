// Package config reads the optional defaults file. whisperctl never writes
// it; flags always override whatever it contains.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/avollmer/whisperctl/internal/platform"
)

// File holds user defaults for the CLI flags.
type File struct {
	Model      string `toml:"model"`
	Language   string `toml:"language"`
	ModelDir   string `toml:"model_dir"`
	EnginePath string `toml:"engine_path"`
	NoProgress bool   `toml:"no_progress"`
}

// Load decodes the file at path. A missing file is not an error; it yields
// the zero value.
func Load(path string) (File, error) {
	var cfg File

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode config file %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return File{}, fmt.Errorf("config file %s has unknown key %q", path, undecoded[0].String())
	}

	return cfg, nil
}

// LoadDefault reads the config file at its conventional location for env.
func LoadDefault(env platform.Env) (File, error) {
	path, err := env.ConfigFile()
	if err != nil {
		// No resolvable config location is equivalent to no config file.
		return File{}, nil
	}
	return Load(path)
}
