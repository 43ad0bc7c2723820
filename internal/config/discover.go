package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bianoble/craftlaunch/internal/platform"
)

// FileName is the configuration file looked up at every level.
const FileName = "craftlaunch.yaml"

// ConfigLevel represents the precedence level of a configuration file.
type ConfigLevel string

const (
	LevelSystem ConfigLevel = "system"
	LevelUser   ConfigLevel = "user"
	// LevelInstance is the craftlaunch.yaml inside the instance root.
	LevelInstance ConfigLevel = "instance"
	LevelProject  ConfigLevel = "project"
)

// ConfigLayerInfo describes a discovered config file and its load status.
type ConfigLayerInfo struct {
	Err    error // non-nil if the file exists but failed to load
	Path   string
	Level  ConfigLevel
	Loaded bool
}

// DiscoverOptions controls how config paths are discovered.
type DiscoverOptions struct {
	// ProjectPath is the explicit config path, usually from --config.
	ProjectPath string

	// InstanceRoot adds <InstanceRoot>/craftlaunch.yaml between the user
	// and project layers. Empty skips the instance layer.
	InstanceRoot string

	// SystemConfigPath overrides the default system config path.
	// Empty means use the OS default. Set to a nonexistent path to skip.
	SystemConfigPath string

	// UserConfigPath overrides the default user config path.
	// Empty means platform.ConfigDir. Set to a nonexistent path to skip.
	UserConfigPath string
}

// InstanceConfigPath returns the instance-level config file for root.
func InstanceConfigPath(root string) string {
	if root == "" {
		return ""
	}
	return filepath.Join(root, FileName)
}

// DiscoverPaths returns the config files to check in merge order:
// system, user, instance, project. A file reached through two levels is
// kept only at the lower one.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	var layers []ConfigLayerInfo
	seen := make(map[string]bool)

	add := func(level ConfigLevel, path string) {
		if path == "" {
			return
		}
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		layers = append(layers, ConfigLayerInfo{Path: path, Level: level})
	}

	sys := opts.SystemConfigPath
	if sys == "" {
		sys = defaultSystemConfigPath()
	}
	add(LevelSystem, sys)

	user := opts.UserConfigPath
	if user == "" {
		user = defaultUserConfigPath()
	}
	add(LevelUser, user)

	add(LevelInstance, InstanceConfigPath(opts.InstanceRoot))
	add(LevelProject, opts.ProjectPath)
	return layers
}

func defaultSystemConfigPath() string {
	if runtime.GOOS == "windows" {
		pd := os.Getenv("ProgramData")
		if pd == "" {
			pd = `C:\ProgramData`
		}
		return filepath.Join(pd, platform.AppName, FileName)
	}
	return filepath.Join("/etc", platform.AppName, FileName)
}

func defaultUserConfigPath() string {
	dir := platform.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// EnvNoInherit returns true if CRAFTLAUNCH_NO_INHERIT is set to "1" or "true".
func EnvNoInherit() bool {
	return envBoolTrue("CRAFTLAUNCH_NO_INHERIT")
}

func envBoolTrue(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true"
}
