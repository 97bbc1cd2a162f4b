package whisper

import (
	"os"
	"path/filepath"

	"github.com/avollmer/whisperctl/internal/platform"
)

// Known names the whisper.cpp executable ships under. Older releases called
// the CLI "main".
var engineNames = []string{"whisper-cli", "whisper", "whisper-cpp", "main"}

// EngineCandidates returns the ordered list of locations to probe for a
// working engine, most specific first: an existing caller override, the
// per-application engine directory, the working directory, and finally bare
// command names left to PATH resolution.
func EngineCandidates(env platform.Env, override string) []string {
	var candidates []string

	if override != "" {
		if _, err := os.Stat(override); err == nil {
			candidates = append(candidates, override)
		}
	}

	if engineDir, err := env.EngineDir(); err == nil {
		for _, name := range engineNames {
			candidates = append(candidates, filepath.Join(engineDir, name))
		}
	}

	if env.WorkDir != "" {
		for _, name := range engineNames {
			candidates = append(candidates, filepath.Join(env.WorkDir, name))
		}
	}

	candidates = append(candidates, engineNames...)
	return candidates
}

// ModelCandidates returns every location a model file of the given name may
// live at, in probing order: an explicit model directory, the
// per-application models directory, the shared whisper cache, a co-located
// whisper.cpp checkout, and the working directory.
func ModelCandidates(env platform.Env, modelDir, fileName string) []string {
	var candidates []string

	add := func(dir string) {
		if dir != "" {
			candidates = append(candidates, filepath.Join(dir, fileName))
		}
	}

	add(modelDir)
	if appModels, err := env.ModelDir(); err == nil {
		add(appModels)
	}
	if env.HomeDir != "" {
		add(filepath.Join(env.CacheDir(), "whisper"))
		add(filepath.Join(env.HomeDir, "whisper.cpp", "models"))
	}
	if env.WorkDir != "" {
		add(filepath.Join(env.WorkDir, "models"))
		add(env.WorkDir)
	}

	return candidates
}

// LocateModelFile walks the candidates for fileName and returns the first
// that exists, together with the full list searched. Absence is an expected
// outcome, not an error.
func LocateModelFile(env platform.Env, modelDir, fileName string) (path string, searched []string, found bool) {
	searched = ModelCandidates(env, modelDir, fileName)
	for _, candidate := range searched {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, searched, true
		}
	}
	return "", searched, false
}
