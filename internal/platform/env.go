// Package platform resolves the filesystem roots whisperctl works against.
// All lookups of ambient state (home directory, working directory, XDG
// variables) happen once, in Detect; everything downstream takes an Env so
// tests can point the tool at fake roots.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "whisperctl"

// Env captures the ambient environment used for path construction.
type Env struct {
	GOOS          string
	HomeDir       string
	WorkDir       string
	XDGDataHome   string
	XDGCacheHome  string
	XDGConfigHome string
}

// Detect reads the real process environment.
func Detect(goos string) (Env, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Env{}, fmt.Errorf("resolve user home: %w", err)
	}

	work, err := os.Getwd()
	if err != nil {
		return Env{}, fmt.Errorf("resolve working directory: %w", err)
	}

	return Env{
		GOOS:          goos,
		HomeDir:       home,
		WorkDir:       work,
		XDGDataHome:   os.Getenv("XDG_DATA_HOME"),
		XDGCacheHome:  os.Getenv("XDG_CACHE_HOME"),
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
	}, nil
}

// DataDir is the per-application root that holds the engine and models
// subdirectories.
func (e Env) DataDir() (string, error) {
	if e.HomeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch e.GOOS {
	case "linux":
		if e.XDGDataHome != "" {
			return filepath.Join(e.XDGDataHome, appDirName), nil
		}
		return filepath.Join(e.HomeDir, ".local", "share", appDirName), nil
	case "darwin":
		return filepath.Join(e.HomeDir, "Library", "Application Support", appDirName), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", e.GOOS)
	}
}

// ModelDir is where acquired models are installed.
func (e Env) ModelDir() (string, error) {
	dataDir, err := e.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "models"), nil
}

// EngineDir is the per-application location for a locally installed engine
// binary.
func (e Env) EngineDir() (string, error) {
	dataDir, err := e.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "engine"), nil
}

// CacheDir is the user-level cache root, without the application suffix.
// Third-party tools drop whisper models under here (~/.cache/whisper).
func (e Env) CacheDir() string {
	if e.XDGCacheHome != "" {
		return e.XDGCacheHome
	}
	if e.GOOS == "darwin" {
		return filepath.Join(e.HomeDir, "Library", "Caches")
	}
	return filepath.Join(e.HomeDir, ".cache")
}

// ConfigFile is the path of the optional defaults file. The file is only
// ever read, never written.
func (e Env) ConfigFile() (string, error) {
	if e.HomeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch e.GOOS {
	case "linux":
		if e.XDGConfigHome != "" {
			return filepath.Join(e.XDGConfigHome, appDirName, "config.toml"), nil
		}
		return filepath.Join(e.HomeDir, ".config", appDirName, "config.toml"), nil
	case "darwin":
		return filepath.Join(e.HomeDir, "Library", "Application Support", appDirName, "config.toml"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", e.GOOS)
	}
}
