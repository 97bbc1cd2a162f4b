package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avollmer/whisperctl/internal/clipboard"
	"github.com/avollmer/whisperctl/internal/download"
	"github.com/avollmer/whisperctl/internal/whisper"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file with the external engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := app.ensureModelInstalled(ctx); err != nil {
				return err
			}

			transcriber := whisper.NewTranscriber(app.env, app.log())
			transcriber.ModelDir = app.modelDir

			app.log().Info("transcribing",
				zap.String("audio", args[0]),
				zap.String("model", app.model),
				zap.String("language", app.language))

			stopSpinner := startSpinner(app.progressEnabled(), "Transcribing")
			started := time.Now()
			result, err := transcriber.Transcribe(ctx, whisper.Request{
				AudioPath:  args[0],
				Language:   app.language,
				Model:      app.model,
				EnginePath: app.enginePath,
			})
			stopSpinner()
			if err != nil {
				app.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
				return err
			}
			app.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)))

			fmt.Fprintln(cmd.OutOrStdout(), result.Text)

			if copyToClipboard {
				if err := clipboard.Copy(ctx, result.Text); err != nil {
					if errors.Is(err, clipboard.ErrUnavailable) {
						app.log().Warn("clipboard tool unavailable; transcript left on stdout")
						return nil
					}
					return err
				}
				app.log().Info("transcript copied to clipboard")
			}
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageFlag(cmd, app)
	bindEngineFlags(cmd, app)
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download the model when it is missing")
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the transcript to the clipboard")
	return cmd
}

// ensureModelInstalled resolves the requested model and, when nothing on
// disk satisfies it, acquires the preferred descriptor.
func (a *appState) ensureModelInstalled(ctx context.Context) error {
	_, err := whisper.Select(a.env, a.modelDir, a.model, a.language)
	if err == nil {
		return nil
	}

	var notFound *whisper.NotFoundError
	if !errors.As(err, &notFound) {
		return err
	}
	if !a.autoDownload {
		return fmt.Errorf("%w; run `whisperctl setup --model %s` or pass --auto-download", err, a.model)
	}

	descriptor, err := whisper.Preferred(a.model, a.language)
	if err != nil {
		return err
	}

	installDir, err := a.installDir()
	if err != nil {
		return err
	}

	a.log().Info("model not found, downloading",
		zap.String("model", descriptor.ID),
		zap.String("url", descriptor.URL()))

	observer, stopObserver := newDownloadObserver(a.progressEnabled())
	defer stopObserver()

	if _, err := download.Fetch(ctx, download.Options{
		URL:          descriptor.URL(),
		Destination:  filepath.Join(installDir, descriptor.FileName),
		ModelID:      descriptor.ID,
		ExpectedSize: descriptor.SizeBytes,
		Observer:     observer,
		Logger:       a.log(),
	}); err != nil {
		return fmt.Errorf("download model %q: %w", descriptor.ID, err)
	}

	return nil
}
