package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bianoble/craftlaunch/internal/classpath"
	"github.com/bianoble/craftlaunch/internal/fetch"
	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/natives"
	"github.com/bianoble/craftlaunch/internal/store"
	"github.com/bianoble/craftlaunch/internal/verify"
)

// NotInstalledError reports that the loader descriptor has not been produced yet.
type NotInstalledError struct {
	VersionID string
	Path      string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("loader version '%s' is not installed (%s missing or invalid): run 'craftlaunch install' first", e.VersionID, e.Path)
}

// Summary describes what a Resolve call did.
type Summary struct {
	BaseVersion   string
	LoaderVersion string
	AssetIndex    string
	BaseCached    bool // base descriptor came from the store
	IndexCached   bool // asset index came from the store
	Libraries     int
	Assets        int
	Fetch         *fetch.Report
	Natives       *natives.Report
}

// inputs are the three documents a launch is derived from.
type inputs struct {
	base   *manifest.VersionDescriptor
	loader *manifest.VersionDescriptor
	index  *manifest.AssetIndex
}

// Resolve makes every required artifact present and valid, then assembles
// the launch plan. Over a complete store it makes no network requests.
func (e *Engine) Resolve(ctx context.Context) (*LaunchPlan, *Summary, error) {
	sum := &Summary{BaseVersion: e.Config.GameVersion, LoaderVersion: e.Config.LoaderVersionID()}

	base, cached, err := e.baseDescriptor(ctx)
	if err != nil {
		return nil, sum, err
	}
	sum.BaseCached = cached

	loader, err := e.loaderDescriptor(base)
	if err != nil {
		return nil, sum, err
	}

	index, cached, err := e.assetIndex(ctx, base)
	if err != nil {
		return nil, sum, err
	}
	sum.IndexCached = cached
	sum.AssetIndex = base.ID

	in := inputs{base: base, loader: loader, index: index}
	res := e.resolution(in)
	reqs, err := e.requests(in, res)
	if err != nil {
		return nil, sum, err
	}
	sum.Libraries = len(res.Required())
	sum.Assets = len(index.Objects)

	e.logger().Info("fetching artifacts", "requests", len(reqs), "libraries", sum.Libraries, "assets", sum.Assets)
	report, err := e.Fetcher.FetchAll(ctx, reqs)
	sum.Fetch = report
	if err != nil {
		return nil, sum, err
	}

	sum.Natives = e.Extractor.ExtractAll(res.Natives, e.Store, e.Store.NativesDir())

	partial, err := e.Builder.Build(res)
	if err != nil {
		return nil, sum, err
	}

	gameArgs, err := manifest.GameArguments(loader, e.Platform)
	if err != nil {
		return nil, sum, fmt.Errorf("loader %s: game arguments: %w", loader.ID, err)
	}

	plan := &LaunchPlan{
		Classpath:    partial.Classpath,
		ModulePath:   partial.ModulePath,
		Separator:    e.Platform.ListSeparator(),
		NativesDir:   e.Store.NativesDir(),
		LibrariesDir: e.Store.LibrariesDir(),
		AssetsDir:    e.Store.AssetsDir(),
		WorkDir:      e.Store.Root(),
		MainClass:    loader.MainClass,
		Version:      base.ID,
		AssetIndex:   base.ID,
		GameArgs:     gameArgs,
	}
	return plan, sum, nil
}

// baseDescriptor returns the unmodified game descriptor, fetching and saving
// it unless the resumability marker is already in place.
func (e *Engine) baseDescriptor(ctx context.Context) (*manifest.VersionDescriptor, bool, error) {
	id := e.Config.GameVersion
	path := e.Store.DescriptorPath(id)
	if manifest.IsResolved(path, id) {
		desc, err := manifest.ReadDescriptor(path)
		return desc, true, err
	}

	e.logger().Info("fetching version descriptor", "version", id)
	desc, err := e.Manifest.FetchDescriptor(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if err := manifest.SaveDescriptor(path, desc.Raw); err != nil {
		return nil, false, err
	}
	return desc, false, nil
}

func (e *Engine) loaderDescriptor(base *manifest.VersionDescriptor) (*manifest.VersionDescriptor, error) {
	id := e.Config.LoaderVersionID()
	path := e.Store.DescriptorPath(id)
	if !manifest.IsResolved(path, id) {
		return nil, &NotInstalledError{VersionID: id, Path: path}
	}
	desc, err := manifest.ReadDescriptor(path)
	if err != nil {
		return nil, err
	}
	if desc.InheritsFrom != "" && desc.InheritsFrom != base.ID {
		return nil, fmt.Errorf("loader %s inherits from %s but game_version is %s", id, desc.InheritsFrom, base.ID)
	}
	return desc, nil
}

// assetIndex returns the base descriptor's asset index, reusing the stored
// copy when it still verifies. The index is stored under the base version id,
// which is also the name passed to the game.
func (e *Engine) assetIndex(ctx context.Context, base *manifest.VersionDescriptor) (*manifest.AssetIndex, bool, error) {
	ref := base.AssetIndex
	if ref == nil || ref.ID == "" {
		return nil, false, fmt.Errorf("version %s: descriptor has no asset index", base.ID)
	}
	path := e.Store.AssetIndexPath(base.ID)
	want := verify.Expect{Kind: verify.KindDocument, SHA1: ref.SHA1, Size: ref.Size}

	if store.Exists(path) && e.Verifier.Valid(path, want) {
		idx, err := manifest.ReadAssetIndex(path)
		return idx, true, err
	}

	e.logger().Info("fetching asset index", "id", ref.ID)
	idx, err := e.Manifest.FetchAssetIndex(ctx, *ref)
	if err != nil {
		return nil, false, err
	}
	if err := manifest.SaveAssetIndex(path, idx.Raw); err != nil {
		return nil, false, err
	}
	if err := e.Verifier.Check(path, want); err != nil {
		_ = store.Invalidate(path)
		return nil, false, err
	}
	return idx, false, nil
}

func (e *Engine) resolution(in inputs) *classpath.Resolution {
	modded := manifest.Libraries(in.loader, e.Platform)
	base := manifest.Libraries(in.base, e.Platform)
	return e.Builder.Resolve(modded, base)
}

// requests lists every download a launch depends on: libraries, the base
// client jar and asset objects.
func (e *Engine) requests(in inputs, res *classpath.Resolution) ([]fetch.Request, error) {
	var reqs []fetch.Request
	for _, ref := range res.Required() {
		if ref.URL == "" {
			// Produced locally by the installer; Build reports it if absent.
			continue
		}
		dest, err := e.Store.Locate(store.Artifact{Kind: store.KindLibrary, Coordinate: ref.Path})
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", ref.Name, err)
		}
		reqs = append(reqs, fetch.Request{URL: ref.URL, Dest: dest, Kind: verify.KindArchive, SHA1: ref.SHA1, Size: ref.Size})
	}

	if client := in.base.Downloads.Client; client != nil && client.URL != "" {
		reqs = append(reqs, fetch.Request{
			URL:  client.URL,
			Dest: e.Store.ClientJarPath(in.base.ID),
			Kind: verify.KindArchive,
			SHA1: client.SHA1,
			Size: client.Size,
		})
	}

	names := make([]string, 0, len(in.index.Objects))
	for name := range in.index.Objects {
		names = append(names, name)
	}
	sort.Strings(names)
	assetsBase := strings.TrimSuffix(e.Config.Endpoints.Assets, "/")
	for _, name := range names {
		obj := in.index.Objects[name]
		dest, err := e.Store.Locate(store.Artifact{Kind: store.KindAssetObject, Coordinate: obj.Hash})
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", name, err)
		}
		reqs = append(reqs, fetch.Request{
			URL:  assetsBase + "/" + obj.Hash[:2] + "/" + obj.Hash,
			Dest: dest,
			Kind: verify.KindAsset,
			SHA1: obj.Hash,
			Size: obj.Size,
		})
	}
	return reqs, nil
}
