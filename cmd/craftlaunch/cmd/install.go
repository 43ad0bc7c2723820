package cmd

import (
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the base game and the loader into the instance",
	Long: `Downloads the base game descriptor and client jar, then downloads and runs the
loader installer against the instance directory. Does nothing if the loader
descriptor is already installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		result, err := eng.Install(cmd.Context())
		if err != nil {
			return err
		}
		if result.Skipped {
			info("%s is already installed.", result.VersionID)
			return nil
		}
		info("Installed %s", result.VersionID)
		detail("installer: %s", result.Installer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
