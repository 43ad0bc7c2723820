package config

import (
	"github.com/spf13/viper"

	"github.com/bianoble/craftlaunch/internal/installer"
	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/store"
)

// Default values used when no layer sets a key.
const (
	DefaultGameVersion   = "1.21.1"
	DefaultLoaderName    = "neoforge"
	DefaultLoaderVersion = "21.1.77"
	DefaultAssetsURL     = "https://resources.download.minecraft.net"
)

// Default returns the configuration used when no file sets anything.
func Default() *Config {
	return &Config{
		Version:      1,
		InstanceRoot: store.DefaultRoot(),
		GameVersion:  DefaultGameVersion,
		Loader: Loader{
			Name:    DefaultLoaderName,
			Version: DefaultLoaderVersion,
		},
		Java: Java{
			Path:      "java",
			MaxMemory: "8192M",
		},
		Player: Player{Username: "Player"},
		Download: Download{
			LibraryWorkers: 8,
			AssetWorkers:   16,
			Attempts:       3,
			Timeout:        "60s",
		},
		Endpoints: Endpoints{
			VersionManifest: manifest.DefaultIndexURL,
			Assets:          DefaultAssetsURL,
		},
		Installer: Installer{EnvVar: installer.DefaultEnvVar},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// setDefaults registers every key so environment overrides apply to it.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("version", d.Version)
	v.SetDefault("instance_root", d.InstanceRoot)
	v.SetDefault("game_version", d.GameVersion)
	v.SetDefault("loader.name", d.Loader.Name)
	v.SetDefault("loader.version", d.Loader.Version)
	v.SetDefault("loader.version_id", "")
	v.SetDefault("loader.installer_url", "")
	v.SetDefault("java.path", d.Java.Path)
	v.SetDefault("java.min_memory", "")
	v.SetDefault("java.max_memory", d.Java.MaxMemory)
	v.SetDefault("java.extra_args", []string{})
	v.SetDefault("player.username", d.Player.Username)
	v.SetDefault("player.uuid", "")
	v.SetDefault("download.library_workers", d.Download.LibraryWorkers)
	v.SetDefault("download.asset_workers", d.Download.AssetWorkers)
	v.SetDefault("download.attempts", d.Download.Attempts)
	v.SetDefault("download.timeout", d.Download.Timeout)
	v.SetDefault("endpoints.version_manifest", d.Endpoints.VersionManifest)
	v.SetDefault("endpoints.assets", d.Endpoints.Assets)
	v.SetDefault("policy.bootstrap_version", "")
	v.SetDefault("policy.securejar_version", "")
	v.SetDefault("policy.maven", "")
	v.SetDefault("platform.os", "")
	v.SetDefault("platform.arch", "")
	v.SetDefault("installer.env_var", d.Installer.EnvVar)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
