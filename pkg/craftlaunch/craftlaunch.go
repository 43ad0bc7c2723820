// Package craftlaunch provides the public Go library API for craftlaunch.
//
// craftlaunch resolves a modded game instance into a runnable launch: it
// fetches and verifies every library and asset, extracts natives, assembles
// the classpath and module path, and spawns the runtime.
//
// # Basic Usage
//
//	client, err := craftlaunch.New(craftlaunch.Options{
//	    ConfigPath: "craftlaunch.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run the loader installer once
//	_, err = client.Install(ctx)
//
//	// Make the instance complete and build the launch plan
//	plan, summary, err := client.Resolve(ctx)
//
//	// Start the game
//	proc, _, err := client.Launch(ctx)
package craftlaunch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bianoble/craftlaunch/internal/config"
	"github.com/bianoble/craftlaunch/internal/engine"
	"github.com/bianoble/craftlaunch/internal/fetch"
)

// Resolver makes an instance complete and returns its launch plan.
type Resolver interface {
	Resolve(ctx context.Context) (*LaunchPlan, *Summary, error)
}

// Checker verifies the store without touching the network.
type Checker interface {
	Check(ctx context.Context) (*CheckReport, error)
}

// Installer runs the loader installer against the instance.
type Installer interface {
	Install(ctx context.Context) (*InstallResult, error)
}

// Launcher resolves the instance and spawns the game.
type Launcher interface {
	Launch(ctx context.Context) (*Process, *Summary, error)
}

// Options configures a craftlaunch client.
type Options struct {
	// ConfigPath is the project config file. Default: "craftlaunch.yaml".
	ConfigPath string

	// InstanceRoot overrides instance_root from configuration.
	InstanceRoot string

	// NoInherit skips the system and user config layers.
	NoInherit bool

	// HTTP is used for every request. Nil uses http.DefaultClient.
	HTTP *http.Client

	// Registry receives fetch metrics. Nil disables metrics.
	Registry prometheus.Registerer

	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger

	// Progress is called once per completed download.
	Progress func(Progress)

	// Stdout and Stderr are attached to the game process.
	Stdout io.Writer
	Stderr io.Writer

	// Version is reported to the game as the launcher version.
	Version string
}

// Client is the main entry point for the craftlaunch library.
// It implements Resolver, Checker, Installer, and Launcher.
type Client struct {
	opts    Options
	metrics *fetch.Metrics
}

// New creates a new craftlaunch Client. Configuration is read on every call,
// so edits to the config file take effect without a new client.
func New(opts Options) (*Client, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.FileName
	}
	c := &Client{opts: opts}
	if opts.Registry != nil {
		m, err := fetch.NewMetrics(opts.Registry)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		c.metrics = m
	}
	return c, nil
}

func (c *Client) engine() (*engine.Engine, error) {
	cfg, _, err := config.Load(config.LoadOptions{
		Discover:  config.DiscoverOptions{ProjectPath: c.opts.ConfigPath, InstanceRoot: c.opts.InstanceRoot},
		NoInherit: c.opts.NoInherit,
	})
	if err != nil {
		return nil, err
	}
	if c.opts.InstanceRoot != "" {
		cfg.InstanceRoot = c.opts.InstanceRoot
	}
	return engine.New(cfg, engine.Options{
		HTTP:     c.opts.HTTP,
		Metrics:  c.metrics,
		Logger:   c.opts.Logger,
		Progress: c.opts.Progress,
		Stdout:   c.opts.Stdout,
		Stderr:   c.opts.Stderr,
		Version:  c.opts.Version,
	})
}

// Resolve makes every required artifact present and valid and returns the
// launch plan. A second call over a complete store makes no network requests.
func (c *Client) Resolve(ctx context.Context) (*LaunchPlan, *Summary, error) {
	eng, err := c.engine()
	if err != nil {
		return nil, nil, err
	}
	return eng.Resolve(ctx)
}

// Check verifies the store against the configured instance.
func (c *Client) Check(ctx context.Context) (*CheckReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	eng, err := c.engine()
	if err != nil {
		return nil, err
	}
	return eng.Check()
}

// Install runs the loader installer unless the loader is already installed.
func (c *Client) Install(ctx context.Context) (*InstallResult, error) {
	eng, err := c.engine()
	if err != nil {
		return nil, err
	}
	return eng.Install(ctx)
}

// Launch resolves the instance and spawns the game without waiting for it.
func (c *Client) Launch(ctx context.Context) (*Process, *Summary, error) {
	eng, err := c.engine()
	if err != nil {
		return nil, nil, err
	}
	return eng.Launch(ctx)
}

var (
	_ Resolver  = (*Client)(nil)
	_ Checker   = (*Client)(nil)
	_ Installer = (*Client)(nil)
	_ Launcher  = (*Client)(nil)
)
