package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var launchWait bool

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Resolve the instance and start the game",
	Long: `Resolves the instance as 'craftlaunch resolve' does, then starts the Java
runtime with the assembled classpath, module path and game arguments. By
default craftlaunch exits once the game has started; use --wait to stay
attached until it exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		proc, sum, err := eng.Launch(cmd.Context())
		if err != nil {
			return err
		}
		printSummary(sum)
		info("Started game (pid %d)", proc.PID())
		detail("session: %s", proc.UUID)

		if !launchWait {
			return nil
		}
		if err := proc.Wait(); err != nil {
			return fmt.Errorf("game exited: %w", err)
		}
		info("Game exited.")
		return nil
	},
}

func init() {
	launchCmd.Flags().BoolVar(&launchWait, "wait", false, "wait for the game to exit")
	rootCmd.AddCommand(launchCmd)
}
