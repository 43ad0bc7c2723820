package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bianoble/craftlaunch/internal/config"
	"github.com/bianoble/craftlaunch/internal/engine"
	"github.com/bianoble/craftlaunch/internal/fetch"
)

// loadConfig reads, merges and validates the config layers.
func loadConfig() (*config.Config, []config.ConfigLayerInfo, error) {
	cfg, layers, err := config.Load(config.LoadOptions{
		Discover:  config.DiscoverOptions{ProjectPath: configPath, InstanceRoot: instanceRoot},
		NoInherit: noInherit,
	})
	if err != nil {
		return nil, layers, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	if instanceRoot != "" {
		cfg.InstanceRoot = instanceRoot
	}
	return cfg, layers, nil
}

// newEngine loads configuration and wires an engine for the CLI.
func newEngine() (*engine.Engine, []config.ConfigLayerInfo, error) {
	cfg, layers, err := loadConfig()
	if err != nil {
		return nil, layers, err
	}
	level := cfg.Log.Level
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}
	logger, err := newLogger(os.Stderr, level, cfg.Log.Format)
	if err != nil {
		return nil, layers, err
	}
	eng, err := engine.New(cfg, engine.Options{
		Registry: registry,
		Logger:   logger,
		Progress: progress,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Version:  version,
	})
	return eng, layers, err
}

// newLogger builds a text or JSON slog logger at the named level.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level '%s'", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format '%s': must be text or json", format)
	}
}

// progress reports each completed download in verbose mode.
func progress(p fetch.Progress) {
	switch p.Outcome {
	case fetch.OutcomeDownloaded:
		detail("[%s %d/%d] %s (%s)", p.Pool, p.Completed, p.Total, p.Request.URL, humanize.Bytes(uint64(p.Bytes)))
	case fetch.OutcomeFailed:
		detail("[%s %d/%d] failed %s: %s", p.Pool, p.Completed, p.Total, p.Request.URL, p.Err)
	}
}

// printSummary reports what a resolve pass did.
func printSummary(sum *engine.Summary) {
	if sum == nil {
		return
	}
	info("Resolved %s with %s (%d libraries, %d assets)", sum.BaseVersion, sum.LoaderVersion, sum.Libraries, sum.Assets)
	if r := sum.Fetch; r != nil {
		info("  downloaded %d, already present %d, %s transferred", r.Downloaded, r.Skipped, humanize.Bytes(uint64(r.Bytes)))
		if r.Retried > 0 {
			detail("%d retries", r.Retried)
		}
	}
	if n := sum.Natives; n != nil {
		detail("natives: %d files from %d archives", n.Files, n.Archives)
		for _, f := range n.Failed {
			info("  warning: native %s: %s", f.Library, f.Err)
		}
	}
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
