package whisper

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/avollmer/whisperctl/internal/platform"
)

// Request describes one transcription job.
type Request struct {
	AudioPath string
	Language  string
	Model     string
	// EnginePath, when set and existing, is used directly without probing.
	EnginePath string
}

// Result is the normalized outcome of a successful transcription.
type Result struct {
	Text     string
	Language string
	// Duration is always zero for now.
	// TODO: parse the engine's "whisper_print_timings" stderr output to
	// report the real audio duration.
	Duration float64
}

// Transcriber drives the external engine: it resolves a working binary and
// an installed model, invokes the subprocess, and normalizes the outcome.
type Transcriber struct {
	Env      platform.Env
	ModelDir string
	Runner   Runner
	Probe    *Probe
	Logger   *zap.Logger
}

func NewTranscriber(env platform.Env, logger *zap.Logger) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := NewRunner()
	return &Transcriber{
		Env:    env,
		Runner: runner,
		Probe:  NewProbe(runner, logger),
		Logger: logger,
	}
}

// Transcribe runs the full pipeline for one request. The engine invocation
// is the single long-running step; cancelling ctx kills the child process.
func (t *Transcriber) Transcribe(ctx context.Context, req Request) (Result, error) {
	audioPath := filepath.Clean(req.AudioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return Result{}, &NotFoundError{Subject: "audio file", Name: audioPath, Searched: []string{audioPath}}
	}

	engine, err := t.resolveEngine(ctx, req.EnginePath)
	if err != nil {
		return Result{}, err
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = DefaultLanguage
	}

	selection, err := Select(t.Env, t.ModelDir, req.Model, language)
	if err != nil {
		return Result{}, err
	}
	if selection.Warning != "" {
		t.Logger.Warn(selection.Warning, zap.String("model", selection.Descriptor.ID))
	}

	args := []string{
		"-m", selection.Path,
		"-f", audioPath,
		"-l", language,
		"--no-timestamps",
		"--output-txt",
	}

	t.Logger.Debug("invoking engine",
		zap.String("engine", engine),
		zap.Strings("args", args))

	run, err := t.Runner.Run(ctx, engine, args...)
	defer t.removeSideFiles(audioPath)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, &ProcessError{Command: engine, Args: args, ExitCode: -1, Stderr: err.Error()}
	}
	if run.ExitCode != 0 {
		return Result{}, &ProcessError{
			Command:  engine,
			Args:     args,
			ExitCode: run.ExitCode,
			Stdout:   run.Stdout,
			Stderr:   run.Stderr,
		}
	}

	text := strings.TrimSpace(run.Stdout)
	if text == "" {
		text = t.readSideFile(audioPath)
	}
	if text == "" {
		return Result{}, &EmptyResultError{AudioPath: audioPath}
	}

	return Result{Text: text, Language: language}, nil
}

func (t *Transcriber) resolveEngine(ctx context.Context, override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override, nil
		}
		t.Logger.Warn("engine override path does not exist; falling back to discovery", zap.String("path", override))
	}
	return FindEngine(ctx, t.Env, override, t.Probe)
}

// Engine builds may write the transcript to a side file instead of stdout:
// the audio path with ".txt" appended, or with its extension replaced. For
// an audio file that itself ends in ".txt" the replaced form is the audio
// path; it must never be read or deleted as a side file.
func sideFileCandidates(audioPath string) []string {
	var candidates []string
	appended := audioPath + ".txt"
	replaced := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".txt"

	for _, candidate := range []string{appended, replaced} {
		if candidate == audioPath || slices.Contains(candidates, candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

func (t *Transcriber) readSideFile(audioPath string) string {
	for _, candidate := range sideFileCandidates(audioPath) {
		content, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if err := os.Remove(candidate); err != nil {
			t.Logger.Warn("failed to remove side file", zap.String("path", candidate), zap.Error(err))
		}
		return strings.TrimSpace(string(content))
	}
	return ""
}

// removeSideFiles clears leftover engine output; the caller's audio file is
// never touched.
func (t *Transcriber) removeSideFiles(audioPath string) {
	for _, candidate := range sideFileCandidates(audioPath) {
		_ = os.Remove(candidate)
	}
}
