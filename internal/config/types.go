package config

import (
	"fmt"
	"time"
)

// Config represents the craftlaunch.yaml configuration file.
type Config struct {
	Version      int       `yaml:"version" mapstructure:"version"`
	InstanceRoot string    `yaml:"instance_root" mapstructure:"instance_root"`
	GameVersion  string    `yaml:"game_version" mapstructure:"game_version"`
	Loader       Loader    `yaml:"loader" mapstructure:"loader"`
	Java         Java      `yaml:"java" mapstructure:"java"`
	Player       Player    `yaml:"player" mapstructure:"player"`
	Download     Download  `yaml:"download" mapstructure:"download"`
	Endpoints    Endpoints `yaml:"endpoints" mapstructure:"endpoints"`
	Policy       Policy    `yaml:"policy" mapstructure:"policy"`
	Platform     Platform  `yaml:"platform" mapstructure:"platform"`
	Installer    Installer `yaml:"installer" mapstructure:"installer"`
	Log          Log       `yaml:"log" mapstructure:"log"`
}

// Loader identifies the mod loader layered on top of the base game version.
type Loader struct {
	Name    string `yaml:"name" mapstructure:"name"` // "neoforge"
	Version string `yaml:"version" mapstructure:"version"`
	// VersionID is the descriptor id the installer produces, e.g. neoforge-21.1.77.
	VersionID    string `yaml:"version_id,omitempty" mapstructure:"version_id"`
	InstallerURL string `yaml:"installer_url,omitempty" mapstructure:"installer_url"`
}

// Java configures the runtime used for the installer and the game.
type Java struct {
	Path      string   `yaml:"path" mapstructure:"path"`
	MinMemory string   `yaml:"min_memory,omitempty" mapstructure:"min_memory"`
	MaxMemory string   `yaml:"max_memory" mapstructure:"max_memory"`
	ExtraArgs []string `yaml:"extra_args,omitempty" mapstructure:"extra_args"`
}

// Player is the offline identity passed to the game.
type Player struct {
	Username string `yaml:"username" mapstructure:"username"`
	UUID     string `yaml:"uuid,omitempty" mapstructure:"uuid"` // random per launch when empty
}

// Download tunes the fetcher.
type Download struct {
	LibraryWorkers int    `yaml:"library_workers" mapstructure:"library_workers"`
	AssetWorkers   int    `yaml:"asset_workers" mapstructure:"asset_workers"`
	Attempts       int    `yaml:"attempts" mapstructure:"attempts"`
	Timeout        string `yaml:"timeout" mapstructure:"timeout"` // per attempt, Go duration
}

// TimeoutDuration parses Timeout. Call after Validate.
func (d Download) TimeoutDuration() time.Duration {
	td, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return 0
	}
	return td
}

// Endpoints are the remote services artifacts come from.
type Endpoints struct {
	VersionManifest string `yaml:"version_manifest" mapstructure:"version_manifest"`
	Assets          string `yaml:"assets" mapstructure:"assets"`
}

// Policy overrides the pinned bootstrap chain.
type Policy struct {
	BootstrapVersion string `yaml:"bootstrap_version,omitempty" mapstructure:"bootstrap_version"`
	SecureJarVersion string `yaml:"securejar_version,omitempty" mapstructure:"securejar_version"`
	Maven            string `yaml:"maven,omitempty" mapstructure:"maven"`
}

// Platform overrides the detected operating system and architecture.
type Platform struct {
	OS   string `yaml:"os,omitempty" mapstructure:"os"`
	Arch string `yaml:"arch,omitempty" mapstructure:"arch"`
}

// Installer configures the external installer process.
type Installer struct {
	EnvVar string `yaml:"env_var,omitempty" mapstructure:"env_var"`
}

// Log configures diagnostic logging.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// LoaderVersionID returns the loader descriptor id, derived from the loader
// name and version when not set explicitly.
func (c *Config) LoaderVersionID() string {
	if c.Loader.VersionID != "" {
		return c.Loader.VersionID
	}
	return c.Loader.Name + "-" + c.Loader.Version
}

// InstallerURL returns the installer jar location, derived from the loader
// version when not set explicitly.
func (c *Config) InstallerURL() string {
	if c.Loader.InstallerURL != "" {
		return c.Loader.InstallerURL
	}
	v := c.Loader.Version
	return fmt.Sprintf("https://maven.neoforged.net/releases/net/neoforged/neoforge/%s/neoforge-%s-installer.jar", v, v)
}
