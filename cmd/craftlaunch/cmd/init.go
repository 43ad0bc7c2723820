package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bianoble/craftlaunch/internal/config"
)

var (
	initForce  bool
	initGame   string
	initLoader string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter craftlaunch.yaml configuration",
	Long: `Creates a craftlaunch.yaml file with every setting at its default value, so
there is one place to change the game version, loader, Java runtime and
download behaviour.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		cfg := config.Default()
		if instanceRoot != "" {
			cfg.InstanceRoot = instanceRoot
		}
		if initGame != "" {
			cfg.GameVersion = initGame
		}
		if initLoader != "" {
			cfg.Loader.Version = initLoader
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			return &config.ValidationError{Errors: errs}
		}
		if err := config.Save(outPath, cfg); err != nil {
			return err
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Edit the file to pick your game and loader versions")
		info("  2. Run 'craftlaunch install' to install the loader")
		info("  3. Run 'craftlaunch launch' to start the game")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initGame, "game", "", "game version (default "+config.DefaultGameVersion+")")
	initCmd.Flags().StringVar(&initLoader, "loader", "", "loader version (default "+config.DefaultLoaderVersion+")")
	rootCmd.AddCommand(initCmd)
}
