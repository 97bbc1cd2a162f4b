package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avollmer/whisperctl/internal/platform"
)

// fakeRunner records invocations and delegates to a per-test handler.
type fakeRunner struct {
	calls   [][]string
	handler func(ctx context.Context, name string, args []string) (RunResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.handler == nil {
		return RunResult{}, errors.New("no handler configured")
	}
	return f.handler(ctx, name, args)
}

// testEnv builds an Env over temp directories so nothing touches the real
// filesystem layout.
func testEnv(t *testing.T) platform.Env {
	t.Helper()
	return platform.Env{
		GOOS:         "linux",
		HomeDir:      t.TempDir(),
		WorkDir:      t.TempDir(),
		XDGDataHome:  t.TempDir(),
		XDGCacheHome: t.TempDir(),
	}
}

func writeModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("ggml"), 0o644))
	return path
}

func appModelDir(t *testing.T, env platform.Env) string {
	t.Helper()
	dir, err := env.ModelDir()
	require.NoError(t, err)
	return dir
}
