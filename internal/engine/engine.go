package engine

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bianoble/craftlaunch/internal/classpath"
	"github.com/bianoble/craftlaunch/internal/config"
	"github.com/bianoble/craftlaunch/internal/fetch"
	"github.com/bianoble/craftlaunch/internal/installer"
	"github.com/bianoble/craftlaunch/internal/launch"
	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/natives"
	"github.com/bianoble/craftlaunch/internal/platform"
	"github.com/bianoble/craftlaunch/internal/store"
	"github.com/bianoble/craftlaunch/internal/verify"
)

// LaunchPlan is the fully resolved launch: ordered library paths, directories,
// entry point and game arguments. It is rebuilt on every attempt.
type LaunchPlan = launch.Plan

// Engine orchestrates manifest lookup, fetching, extraction, classpath
// assembly and launch for one configured instance.
type Engine struct {
	Config    *config.Config
	Platform  platform.Platform
	Manifest  *manifest.Client
	Store     *store.Store
	Verifier  *verify.Verifier
	Fetcher   *fetch.Fetcher
	Extractor *natives.Extractor
	Builder   *classpath.Builder
	Installer *installer.Installer
	Invoker   *launch.Invoker
	Logger    *slog.Logger
}

// Options supplies the collaborators New cannot derive from configuration.
type Options struct {
	HTTP     *http.Client
	Registry prometheus.Registerer // nil disables metrics
	// Metrics is used instead of registering new collectors on Registry.
	Metrics  *fetch.Metrics
	Logger   *slog.Logger
	Progress func(fetch.Progress)
	Stdout   io.Writer
	Stderr   io.Writer
	// Version is reported to the game as the launcher version.
	Version string
}

// New wires an Engine from configuration.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	plat, err := platform.Current().WithOverrides(cfg.Platform.OS, cfg.Platform.Arch)
	if err != nil {
		return nil, fmt.Errorf("resolving platform: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var httpClient manifest.HTTPClient = manifest.DefaultHTTPClient{}
	var fetchClient fetch.HTTPClient = manifest.DefaultHTTPClient{}
	if opts.HTTP != nil {
		httpClient = opts.HTTP
		fetchClient = opts.HTTP
	}

	metrics := opts.Metrics
	if metrics == nil && opts.Registry != nil {
		metrics, err = fetch.NewMetrics(opts.Registry)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	st := store.New(cfg.InstanceRoot)
	verifier := &verify.Verifier{}

	return &Engine{
		Config:   cfg,
		Platform: plat,
		Manifest: &manifest.Client{
			HTTP:     httpClient,
			IndexURL: cfg.Endpoints.VersionManifest,
			Timeout:  cfg.Download.TimeoutDuration(),
		},
		Store:    st,
		Verifier: verifier,
		Fetcher: &fetch.Fetcher{
			HTTP:           fetchClient,
			Verifier:       verifier,
			LibraryWorkers: cfg.Download.LibraryWorkers,
			AssetWorkers:   cfg.Download.AssetWorkers,
			Attempts:       cfg.Download.Attempts,
			Timeout:        cfg.Download.TimeoutDuration(),
			Progress:       opts.Progress,
			Metrics:        metrics,
			Logger:         logger.With("component", "fetch"),
		},
		Extractor: &natives.Extractor{Logger: logger.With("component", "natives")},
		Builder: &classpath.Builder{
			Policy: classpath.WithPins(cfg.Policy.BootstrapVersion, cfg.Policy.SecureJarVersion, cfg.Policy.Maven),
			Store:  st,
			Logger: logger.With("component", "classpath"),
		},
		Installer: &installer.Installer{
			Java:   cfg.Java.Path,
			EnvVar: cfg.Installer.EnvVar,
			Logger: logger.With("component", "installer"),
		},
		Invoker: &launch.Invoker{
			Options: launch.Options{
				Java:            cfg.Java.Path,
				MinMemory:       cfg.Java.MinMemory,
				MaxMemory:       cfg.Java.MaxMemory,
				ExtraJVMArgs:    cfg.Java.ExtraArgs,
				Username:        cfg.Player.Username,
				UUID:            cfg.Player.UUID,
				LauncherVersion: opts.Version,
			},
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
			Logger: logger.With("component", "launch"),
		},
		Logger: logger,
	}, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}
