package engine

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/bianoble/craftlaunch/internal/fetch"
	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/store"
	"github.com/bianoble/craftlaunch/internal/verify"
)

// InstallResult describes what Install did.
type InstallResult struct {
	VersionID string
	Installer string // local path of the installer jar; empty when skipped
	Skipped   bool   // loader descriptor was already present
	Fetch     *fetch.Report
}

// Install prepares the base runtime and runs the loader installer against the
// instance unless the loader descriptor is already in place.
func (e *Engine) Install(ctx context.Context) (*InstallResult, error) {
	id := e.Config.LoaderVersionID()
	result := &InstallResult{VersionID: id}

	base, _, err := e.baseDescriptor(ctx)
	if err != nil {
		return result, err
	}

	// The installer patches against the base client jar.
	var reqs []fetch.Request
	if client := base.Downloads.Client; client != nil && client.URL != "" {
		reqs = append(reqs, fetch.Request{
			URL:  client.URL,
			Dest: e.Store.ClientJarPath(base.ID),
			Kind: verify.KindArchive,
			SHA1: client.SHA1,
			Size: client.Size,
		})
	}

	if manifest.IsResolved(e.Store.DescriptorPath(id), id) {
		result.Skipped = true
		if len(reqs) > 0 {
			result.Fetch, err = e.Fetcher.FetchAll(ctx, reqs)
		}
		e.logger().Info("loader already installed", "version", id)
		return result, err
	}

	installerURL := e.Config.InstallerURL()
	name, err := installerName(installerURL)
	if err != nil {
		return result, err
	}
	jar, err := e.Store.Locate(store.Artifact{Kind: store.KindInstaller, Coordinate: name})
	if err != nil {
		return result, err
	}
	reqs = append(reqs, fetch.Request{URL: installerURL, Dest: jar, Kind: verify.KindArchive})

	result.Fetch, err = e.Fetcher.FetchAll(ctx, reqs)
	if err != nil {
		return result, err
	}
	result.Installer = jar

	if err := e.Installer.Install(ctx, jar, e.Store.Root(), id); err != nil {
		return result, err
	}
	return result, nil
}

func installerName(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing installer url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("installer url %s has no file name", raw)
	}
	return name, nil
}
