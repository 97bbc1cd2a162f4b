package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avollmer/whisperctl/internal/whisper"
)

func newModelsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known models and their install state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tSIZE\tINSTALLED\tPATH")

			for _, descriptor := range whisper.Descriptors() {
				path, _, found := whisper.LocateModelFile(app.env, app.modelDir, descriptor.FileName)
				installed := "no"
				if found {
					installed = "yes"
				} else {
					path = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", descriptor.ID, descriptor.SizeLabel, installed, path)
			}

			return w.Flush()
		},
	}

	bindLoggingFlags(cmd, app)
	bindModelFlags(cmd, app)
	return cmd
}
