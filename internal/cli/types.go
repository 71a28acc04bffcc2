package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// typesCmd represents the types command
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Print the type abbreviation legend",
	Long: `Types prints the single-character codes used for parameter and return
types in the compressed schema, including codes added in the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		table, err := cfg.TypeTable()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), table.Legend())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
