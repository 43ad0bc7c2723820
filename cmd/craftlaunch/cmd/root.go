package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath   string
	instanceRoot string
	metricsFile  string
	verbose      bool
	quiet        bool
	noInherit    bool
)

// registry collects fetch metrics for --metrics-file.
var registry = prometheus.NewRegistry()

var rootCmd = &cobra.Command{
	Use:   "craftlaunch",
	Short: "Resolve and launch a modded game instance",
	Long: `craftlaunch resolves a NeoForge game instance into a runnable launch. It
fetches and verifies every library and asset the instance needs, extracts
native libraries, assembles the classpath and module path, and starts the
Java runtime with the correct arguments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("craftlaunch %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "craftlaunch.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&instanceRoot, "instance", "", "instance directory (overrides instance_root)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write fetch metrics in Prometheus text format to this file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noInherit, "no-inherit", false, "ignore system and user config files")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		errorf("%s", err)
	}
	if metricsFile != "" {
		if werr := prometheus.WriteToTextfile(metricsFile, registry); werr != nil {
			errorf("writing metrics: %s", werr)
			if err == nil {
				err = werr
			}
		}
	}
	return err
}
