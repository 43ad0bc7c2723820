package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/craftlaunch/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the instance without downloading anything",
	Long: `Checks every descriptor, library, client jar and asset the instance depends on
against its recorded size and checksum. Nothing is fetched or repaired.
Exit 0 if everything is present and valid; exit non-zero otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		report, err := eng.Check()
		if err != nil {
			return err
		}

		if report.Clean() {
			info("All %d artifacts are present and valid.", len(report.Items))
			return nil
		}

		for _, it := range report.Items {
			if it.Status == engine.StatusOK {
				continue
			}
			info("  %-8s %s", it.Status, it.Name)
			detail("path: %s", it.Path)
			if it.Detail != "" {
				detail("%s", it.Detail)
			}
		}

		missing := report.Count(engine.StatusMissing)
		corrupt := report.Count(engine.StatusCorrupt)
		return fmt.Errorf("check failed: %d missing, %d corrupt (run 'craftlaunch resolve' to repair)", missing, corrupt)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
