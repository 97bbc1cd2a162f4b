package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avollmer/whisperctl/internal/platform"
)

func newTestTranscriber(t *testing.T, env platform.Env, runner *fakeRunner) *Transcriber {
	t.Helper()
	return &Transcriber{
		Env:    env,
		Runner: runner,
		Probe:  NewProbe(runner, nil),
		Logger: zap.NewNop(),
	}
}

func writeAudioFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func writeEngineOverride(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whisper-cli")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestTranscribeSuccessFromStdout(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	modelPath := writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")
	engine := writeEngineOverride(t)

	runner := &fakeRunner{handler: func(_ context.Context, name string, args []string) (RunResult, error) {
		require.Equal(t, engine, name)
		require.Equal(t, []string{
			"-m", modelPath,
			"-f", audio,
			"-l", "en",
			"--no-timestamps",
			"--output-txt",
		}, args)
		return RunResult{Stdout: "hello world\n"}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	result, err := transcriber.Transcribe(context.Background(), Request{
		AudioPath:  audio,
		Language:   "en",
		Model:      "base",
		EnginePath: engine,
	})
	require.NoError(t, err)
	require.Equal(t, Result{Text: "hello world", Language: "en", Duration: 0.0}, result)
	require.Len(t, runner.calls, 1, "override engine must be used without probing")
}

func TestTranscribeReadsAppendedSideFileWhenStdoutEmpty(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")
	engine := writeEngineOverride(t)
	sideFile := audio + ".txt"

	runner := &fakeRunner{handler: func(_ context.Context, _ string, _ []string) (RunResult, error) {
		require.NoError(t, os.WriteFile(sideFile, []byte("  quiet room  "), 0o644))
		return RunResult{}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	result, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio, EnginePath: engine})
	require.NoError(t, err)
	require.Equal(t, "quiet room", result.Text)

	_, statErr := os.Stat(sideFile)
	require.ErrorIs(t, statErr, os.ErrNotExist, "side file must be deleted after reading")
}

func TestTranscribeReadsExtensionReplacedSideFile(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")
	engine := writeEngineOverride(t)
	sideFile := filepath.Join(filepath.Dir(audio), "clip.txt")

	runner := &fakeRunner{handler: func(_ context.Context, _ string, _ []string) (RunResult, error) {
		require.NoError(t, os.WriteFile(sideFile, []byte("from side file"), 0o644))
		return RunResult{}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	result, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio, EnginePath: engine})
	require.NoError(t, err)
	require.Equal(t, "from side file", result.Text)

	_, statErr := os.Stat(sideFile)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestTranscribeNeverTreatsTxtAudioAsSideFile(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	engine := writeEngineOverride(t)

	audio := filepath.Join(t.TempDir(), "clip.txt")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o644))

	runner := &fakeRunner{handler: func(_ context.Context, _ string, _ []string) (RunResult, error) {
		return RunResult{}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	_, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio, EnginePath: engine})

	var empty *EmptyResultError
	require.ErrorAs(t, err, &empty, "the audio file's own bytes must not become the transcript")

	content, readErr := os.ReadFile(audio)
	require.NoError(t, readErr, "the caller's audio file must survive cleanup")
	require.Equal(t, []byte("RIFF"), content)
}

func TestTranscribeReadsAppendedSideFileForTxtAudio(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	engine := writeEngineOverride(t)

	audio := filepath.Join(t.TempDir(), "clip.txt")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o644))
	sideFile := audio + ".txt"

	runner := &fakeRunner{handler: func(_ context.Context, _ string, _ []string) (RunResult, error) {
		require.NoError(t, os.WriteFile(sideFile, []byte("spoken words"), 0o644))
		return RunResult{}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	result, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio, EnginePath: engine})
	require.NoError(t, err)
	require.Equal(t, "spoken words", result.Text)

	_, statErr := os.Stat(audio)
	require.NoError(t, statErr)
}

func TestTranscribeEmptyOutputIsDistinctFailure(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")
	engine := writeEngineOverride(t)

	runner := &fakeRunner{handler: func(_ context.Context, _ string, _ []string) (RunResult, error) {
		return RunResult{Stdout: "   \n"}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	_, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio, EnginePath: engine})

	var empty *EmptyResultError
	require.ErrorAs(t, err, &empty)
	require.Equal(t, audio, empty.AudioPath)
}

func TestTranscribeMissingAudioFails(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	transcriber := newTestTranscriber(t, env, &fakeRunner{})

	_, err := transcriber.Transcribe(context.Background(), Request{AudioPath: filepath.Join(t.TempDir(), "missing.wav")})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "audio file", notFound.Subject)
}

func TestTranscribeNonZeroExitCarriesBothStreams(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")
	engine := writeEngineOverride(t)

	runner := &fakeRunner{handler: func(_ context.Context, _ string, _ []string) (RunResult, error) {
		return RunResult{ExitCode: 3, Stdout: "partial output", Stderr: "failed to load model"}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	_, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio, EnginePath: engine})

	var process *ProcessError
	require.ErrorAs(t, err, &process)
	require.Equal(t, 3, process.ExitCode)
	require.Equal(t, "partial output", process.Stdout)
	require.Equal(t, "failed to load model", process.Stderr)
	require.Contains(t, err.Error(), "failed to load model")
}

func TestTranscribeNoEngineAnywhereEnumeratesLocations(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")

	runner := &fakeRunner{handler: func(_ context.Context, _ string, _ []string) (RunResult, error) {
		return RunResult{}, errors.New("executable file not found")
	}}

	transcriber := newTestTranscriber(t, env, runner)
	_, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "engine binary", notFound.Subject)
	require.Equal(t, len(EngineCandidates(env, "")), len(notFound.Searched))
}

func TestTranscribeDefaultsModelAndLanguage(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	modelPath := writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")
	engine := writeEngineOverride(t)

	runner := &fakeRunner{handler: func(_ context.Context, _ string, args []string) (RunResult, error) {
		require.Equal(t, modelPath, args[1])
		require.Equal(t, "en", args[5])
		return RunResult{Stdout: "ok"}, nil
	}}

	transcriber := newTestTranscriber(t, env, runner)
	result, err := transcriber.Transcribe(context.Background(), Request{AudioPath: audio, EnginePath: engine})
	require.NoError(t, err)
	require.Equal(t, "ok", result.Text)
	require.Equal(t, "en", result.Language)
}

func TestTranscribeCancellationIsDistinctOutcome(t *testing.T) {
	t.Parallel()

	env := testEnv(t)
	writeModelFile(t, appModelDir(t, env), "ggml-base.en.bin")
	audio := writeAudioFile(t, "clip.wav")
	engine := writeEngineOverride(t)

	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{handler: func(runCtx context.Context, _ string, _ []string) (RunResult, error) {
		cancel()
		<-runCtx.Done()
		return RunResult{}, runCtx.Err()
	}}

	transcriber := newTestTranscriber(t, env, runner)
	_, err := transcriber.Transcribe(ctx, Request{AudioPath: audio, EnginePath: engine})
	require.ErrorIs(t, err, context.Canceled)

	var process *ProcessError
	require.False(t, errors.As(err, &process), "cancellation must not be reported as a process failure")
}
