// Package cli wires the whisperctl command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/avollmer/whisperctl/internal/config"
	"github.com/avollmer/whisperctl/internal/logging"
	"github.com/avollmer/whisperctl/internal/platform"
	"github.com/avollmer/whisperctl/internal/version"
)

type appState struct {
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	model        string
	modelDir     string
	language     string
	enginePath   string
	autoDownload bool

	env    platform.Env
	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		model:        "base",
		language:     "en",
		autoDownload: true,
	}

	cmd := &cobra.Command{
		Use:           "whisperctl",
		Short:         "Locate, install, and drive a whisper.cpp speech-to-text engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger

			env, err := platform.Detect(runtime.GOOS)
			if err != nil {
				return err
			}
			app.env = env

			cfg, err := config.LoadDefault(env)
			if err != nil {
				return err
			}
			app.applyConfig(cmd, cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model size tag (tiny|base|small|medium|large, optionally .en)")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are installed")
}

func bindLanguageFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Target language code for transcription")
}

func bindEngineFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.enginePath, "engine-path", app.enginePath, "Explicit path to the whisper.cpp executable")
}

// Config file values fill in any flag the user did not set explicitly.
func (a *appState) applyConfig(cmd *cobra.Command, cfg config.File) {
	flags := cmd.Flags()
	if cfg.Model != "" && !flags.Changed("model") {
		a.model = cfg.Model
	}
	if cfg.Language != "" && !flags.Changed("language") {
		a.language = cfg.Language
	}
	if cfg.ModelDir != "" && !flags.Changed("model-dir") {
		a.modelDir = cfg.ModelDir
	}
	if cfg.EnginePath != "" && !flags.Changed("engine-path") {
		a.enginePath = cfg.EnginePath
	}
	if cfg.NoProgress && !flags.Changed("no-progress") {
		a.noProgress = true
	}
}

// installDir is where acquisitions land: the explicit model dir when given,
// the per-application models directory otherwise.
func (a *appState) installDir() (string, error) {
	if a.modelDir != "" {
		return filepath.Clean(a.modelDir), nil
	}
	dir, err := a.env.ModelDir()
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
