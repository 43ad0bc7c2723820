package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bianoble/craftlaunch/internal/platform"
	"github.com/bianoble/craftlaunch/internal/sandbox"
)

// EnvPrefix prefixes environment overrides, e.g. CRAFTLAUNCH_INSTANCE_ROOT.
const EnvPrefix = "CRAFTLAUNCH"

// LoadOptions controls layered loading.
type LoadOptions struct {
	Discover DiscoverOptions
	// NoInherit loads only the project layer.
	NoInherit bool
}

// Load merges defaults, every existing config layer from lowest to highest
// precedence and CRAFTLAUNCH_* environment overrides, then validates the result.
// Missing layer files are skipped. The returned layers report what was loaded.
//
// Without Discover.InstanceRoot the instance layer is found under the
// instance_root the other layers and the environment settle on.
func Load(opts LoadOptions) (*Config, []ConfigLayerInfo, error) {
	noInherit := opts.NoInherit || EnvNoInherit()
	discover := opts.Discover
	if discover.InstanceRoot == "" && !noInherit {
		discover.InstanceRoot = instanceRoot(discover)
	}

	var layers []ConfigLayerInfo
	switch {
	case !noInherit:
		layers = DiscoverPaths(discover)
	case discover.ProjectPath != "":
		layers = []ConfigLayerInfo{{Path: discover.ProjectPath, Level: LevelProject}}
	}

	v := newViper()
	if err := mergeLayers(v, layers); err != nil {
		return nil, layers, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, layers, fmt.Errorf("decoding config: %w", err)
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, layers, &ValidationError{Errors: errs}
	}
	return &cfg, layers, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// instanceRoot returns instance_root as merged from every layer except the
// instance one. Read errors are left for the full merge to report.
func instanceRoot(opts DiscoverOptions) string {
	v := newViper()
	if err := mergeLayers(v, DiscoverPaths(opts)); err != nil {
		return ""
	}
	return v.GetString("instance_root")
}

// mergeLayers merges each existing layer into v in order and marks it loaded.
func mergeLayers(v *viper.Viper, layers []ConfigLayerInfo) error {
	for i := range layers {
		data, err := os.ReadFile(layers[i].Path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			layers[i].Err = err
			return fmt.Errorf("reading config %s: %w", layers[i].Path, err)
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			layers[i].Err = err
			return fmt.Errorf("parsing config %s: %w", layers[i].Path, err)
		}
		layers[i].Loaded = true
	}
	return nil
}

// LoadFile loads a single file on top of defaults, ignoring other layers.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, _, err := Load(LoadOptions{Discover: DiscoverOptions{ProjectPath: path}, NoInherit: true})
	return cfg, err
}

// Save writes cfg as YAML to path atomically.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := sandbox.WriteAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d: only version 1 is supported", cfg.Version))
	}
	if cfg.InstanceRoot == "" {
		errs = append(errs, "'instance_root' is required")
	}
	if cfg.GameVersion == "" {
		errs = append(errs, "'game_version' is required")
	}

	switch cfg.Loader.Name {
	case "neoforge":
	case "":
		errs = append(errs, "loader: 'name' is required: must be one of: neoforge")
	default:
		errs = append(errs, fmt.Sprintf("loader: unknown loader '%s': must be one of: neoforge", cfg.Loader.Name))
	}
	if cfg.Loader.Version == "" && cfg.Loader.VersionID == "" {
		errs = append(errs, "loader: one of 'version' or 'version_id' is required")
	}
	if cfg.Loader.InstallerURL != "" && !isHTTPURL(cfg.Loader.InstallerURL) {
		errs = append(errs, fmt.Sprintf("loader: 'installer_url' must be an http(s) URL, got '%s'", cfg.Loader.InstallerURL))
	}

	if cfg.Java.Path == "" {
		errs = append(errs, "java: 'path' is required")
	}
	if cfg.Player.Username == "" {
		errs = append(errs, "player: 'username' is required")
	}

	if cfg.Download.LibraryWorkers < 1 {
		errs = append(errs, "download: 'library_workers' must be at least 1")
	}
	if cfg.Download.AssetWorkers < 1 {
		errs = append(errs, "download: 'asset_workers' must be at least 1")
	}
	if cfg.Download.Attempts < 1 {
		errs = append(errs, "download: 'attempts' must be at least 1")
	}
	if d, err := time.ParseDuration(cfg.Download.Timeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Sprintf("download: invalid 'timeout' '%s': use a positive duration such as 60s", cfg.Download.Timeout))
	}

	if !isHTTPURL(cfg.Endpoints.VersionManifest) {
		errs = append(errs, fmt.Sprintf("endpoints: 'version_manifest' must be an http(s) URL, got '%s'", cfg.Endpoints.VersionManifest))
	}
	if !isHTTPURL(cfg.Endpoints.Assets) {
		errs = append(errs, fmt.Sprintf("endpoints: 'assets' must be an http(s) URL, got '%s'", cfg.Endpoints.Assets))
	}
	if cfg.Policy.Maven != "" && !isHTTPURL(cfg.Policy.Maven) {
		errs = append(errs, fmt.Sprintf("policy: 'maven' must be an http(s) URL, got '%s'", cfg.Policy.Maven))
	}

	if cfg.Platform.OS != "" || cfg.Platform.Arch != "" {
		if _, err := platform.Current().WithOverrides(cfg.Platform.OS, cfg.Platform.Arch); err != nil {
			errs = append(errs, "platform: "+err.Error())
		}
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log: invalid level '%s': must be one of: debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log: invalid format '%s': must be one of: text, json", cfg.Log.Format))
	}

	return errs
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
