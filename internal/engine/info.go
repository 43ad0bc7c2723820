package engine

import (
	"github.com/bianoble/craftlaunch/internal/config"
	"github.com/bianoble/craftlaunch/internal/manifest"
)

// ConfigLayerStatus describes a config layer's load status for display.
type ConfigLayerStatus struct {
	Level  string // "system", "user", "instance", "project"
	Path   string
	Loaded bool
}

// InfoResult holds instance information for the info command.
type InfoResult struct {
	Version         string
	InstanceRoot    string
	Platform        string
	GameVersion     string
	LoaderVersionID string
	BaseResolved    bool
	LoaderInstalled bool
	ConfigChain     []ConfigLayerStatus
	StoreSize       int64
}

// Info gathers instance information without touching the network.
func (e *Engine) Info(version string, layers []config.ConfigLayerInfo) (*InfoResult, error) {
	r := &InfoResult{
		Version:         version,
		InstanceRoot:    e.Store.Root(),
		Platform:        e.Platform.String(),
		GameVersion:     e.Config.GameVersion,
		LoaderVersionID: e.Config.LoaderVersionID(),
	}
	r.BaseResolved = manifest.IsResolved(e.Store.DescriptorPath(r.GameVersion), r.GameVersion)
	r.LoaderInstalled = manifest.IsResolved(e.Store.DescriptorPath(r.LoaderVersionID), r.LoaderVersionID)

	for _, l := range layers {
		r.ConfigChain = append(r.ConfigChain, ConfigLayerStatus{
			Level:  string(l.Level),
			Path:   l.Path,
			Loaded: l.Loaded,
		})
	}

	size, err := e.Store.Size()
	if err == nil {
		r.StoreSize = size
	}
	return r, nil
}
