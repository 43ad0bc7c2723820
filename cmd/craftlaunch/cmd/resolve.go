package cmd

import (
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Fetch and verify everything the instance needs",
	Long: `Resolves the base game and loader descriptors, downloads every missing or
corrupt library, asset and client jar, extracts native libraries and checks
the resulting classpath. Running it again over a complete instance makes no
network requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		_, sum, err := eng.Resolve(cmd.Context())
		if err != nil {
			return err
		}
		printSummary(sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
