package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the configured instance",
	Long: `Displays the craftlaunch version, the config chain, the instance directory and
its size, the target platform, and whether the base game and loader are in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, layers, err := newEngine()
		if err != nil {
			return err
		}
		result, err := eng.Info(version, layers)
		if err != nil {
			return err
		}

		fmt.Printf("craftlaunch %s\n", result.Version)
		if len(result.ConfigChain) > 1 {
			fmt.Println("  config chain:")
			for _, layer := range result.ConfigChain {
				status := "not found"
				if layer.Loaded {
					status = "loaded"
				}
				fmt.Printf("    %-10s %s (%s)\n", layer.Level+":", layer.Path, status)
			}
		} else {
			fmt.Printf("  config:        %s\n", configPath)
		}
		fmt.Printf("  instance:      %s\n", result.InstanceRoot)
		fmt.Printf("  instance size: %s\n", humanize.Bytes(uint64(result.StoreSize)))
		fmt.Printf("  platform:      %s\n", result.Platform)
		fmt.Printf("  game:          %s (%s)\n", result.GameVersion, presence(result.BaseResolved, "resolved", "not resolved"))
		fmt.Printf("  loader:        %s (%s)\n", result.LoaderVersionID, presence(result.LoaderInstalled, "installed", "not installed"))
		return nil
	},
}

func presence(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
