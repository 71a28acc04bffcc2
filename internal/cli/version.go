package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/dali-distiller/internal/types"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Distiller",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Distiller %s\n", Version)
		fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(out, "Build date: %s\n", BuildDate)
		fmt.Fprintf(out, "Type table: v%s\n", types.TableVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
