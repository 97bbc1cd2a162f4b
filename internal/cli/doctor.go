package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avollmer/whisperctl/internal/whisper"
)

// doctor reports what discovery would find: every engine candidate with its
// probe verdict, plus the install state of each model.
func newDoctorCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check engine and model availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			probe := whisper.NewProbe(nil, app.log())

			fmt.Fprintln(out, "Engine candidates:")
			engineFound := false
			for _, candidate := range whisper.EngineCandidates(app.env, app.enginePath) {
				verdict := "unavailable"
				if probe.Available(ctx, candidate) {
					verdict = "ok"
					engineFound = true
				}
				fmt.Fprintf(out, "  %-12s %s\n", verdict, candidate)
			}
			if !engineFound {
				fmt.Fprintln(out, "No working engine found. Install whisper.cpp or pass --engine-path.")
			}

			fmt.Fprintln(out, "\nModels:")
			for _, descriptor := range whisper.Descriptors() {
				path, _, found := whisper.LocateModelFile(app.env, app.modelDir, descriptor.FileName)
				if found {
					fmt.Fprintf(out, "  installed    %-10s %s\n", descriptor.ID, path)
				} else {
					fmt.Fprintf(out, "  missing      %-10s install with `whisperctl setup --model %s`\n", descriptor.ID, descriptor.ID)
				}
			}

			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindModelFlags(cmd, app)
	bindEngineFlags(cmd, app)
	return cmd
}
