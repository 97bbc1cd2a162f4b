package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avollmer/whisperctl/internal/download"
	"github.com/avollmer/whisperctl/internal/whisper"
)

func newSetupCmd(app *appState) *cobra.Command {
	var installAll bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download and install speech model files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			installDir, err := app.installDir()
			if err != nil {
				return err
			}

			if installAll {
				return app.installAllModels(cmd, installDir)
			}

			descriptor, err := whisper.Preferred(app.model, app.language)
			if err != nil {
				return err
			}

			path, err := app.installModel(cmd, installDir, descriptor)
			if err != nil {
				return fmt.Errorf("install model %q: %w", descriptor.ID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model %s installed at %s\n", descriptor.ID, path)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageFlag(cmd, app)
	cmd.Flags().BoolVar(&installAll, "all", false, "Install every model in the registry")
	return cmd
}

func (a *appState) installModel(cmd *cobra.Command, installDir string, descriptor whisper.Descriptor) (string, error) {
	observer, stopObserver := newDownloadObserver(a.progressEnabled())
	defer stopObserver()

	return download.Fetch(cmd.Context(), download.Options{
		URL:          descriptor.URL(),
		Destination:  filepath.Join(installDir, descriptor.FileName),
		ModelID:      descriptor.ID,
		ExpectedSize: descriptor.SizeBytes,
		Observer:     observer,
		Logger:       a.log(),
	})
}

// installAllModels walks the registry. A failed multilingual model is
// reported and skipped; the remaining installs continue.
func (a *appState) installAllModels(cmd *cobra.Command, installDir string) error {
	for _, descriptor := range whisper.Descriptors() {
		path, err := a.installModel(cmd, installDir, descriptor)
		if err != nil {
			if descriptor.Multilingual {
				a.log().Warn("skipping multilingual model",
					zap.String("model", descriptor.ID),
					zap.Error(err))
				continue
			}
			return fmt.Errorf("install model %q: %w", descriptor.ID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model %s installed at %s\n", descriptor.ID, path)
	}
	return nil
}
