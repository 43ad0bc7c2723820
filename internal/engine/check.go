package engine

import (
	"fmt"
	"sort"

	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/store"
	"github.com/bianoble/craftlaunch/internal/verify"
)

// Status is the state of one artifact in the store.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusCorrupt Status = "corrupt"
)

// CheckItem is one artifact examined by Check.
type CheckItem struct {
	Name   string
	Path   string
	Kind   string
	Status Status
	Detail string
}

// CheckReport lists every artifact a launch depends on and its state.
type CheckReport struct {
	Items []CheckItem
}

// Clean reports whether every item is present and valid.
func (r *CheckReport) Clean() bool {
	for _, it := range r.Items {
		if it.Status != StatusOK {
			return false
		}
	}
	return true
}

// Count returns how many items have status s.
func (r *CheckReport) Count(s Status) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

// Check verifies the store against the configured instance without touching
// the network. Missing descriptors stop the walk early since nothing below
// them can be enumerated.
func (e *Engine) Check() (*CheckReport, error) {
	report := &CheckReport{}

	baseID := e.Config.GameVersion
	basePath := e.Store.DescriptorPath(baseID)
	if !report.document(baseID, basePath, baseID) {
		return report, nil
	}
	base, err := manifest.ReadDescriptor(basePath)
	if err != nil {
		return report, err
	}

	loaderID := e.Config.LoaderVersionID()
	loaderPath := e.Store.DescriptorPath(loaderID)
	if !report.document(loaderID, loaderPath, loaderID) {
		return report, nil
	}
	loader, err := manifest.ReadDescriptor(loaderPath)
	if err != nil {
		return report, err
	}

	if client := base.Downloads.Client; client != nil {
		report.add(e, "client jar "+base.ID, e.Store.ClientJarPath(base.ID), verify.Expect{Kind: verify.KindArchive, SHA1: client.SHA1, Size: client.Size})
	}

	res := e.resolution(inputs{base: base, loader: loader})
	for _, ref := range res.Required() {
		p, err := e.Store.Locate(store.Artifact{Kind: store.KindLibrary, Coordinate: ref.Path})
		if err != nil {
			report.Items = append(report.Items, CheckItem{Name: ref.Name, Path: ref.Path, Kind: "library", Status: StatusCorrupt, Detail: err.Error()})
			continue
		}
		report.add(e, ref.Name, p, verify.Expect{Kind: verify.KindArchive, SHA1: ref.SHA1, Size: ref.Size})
	}

	if base.AssetIndex == nil {
		return report, nil
	}
	indexPath := e.Store.AssetIndexPath(base.ID)
	report.add(e, "asset index "+base.ID, indexPath, verify.Expect{Kind: verify.KindDocument, SHA1: base.AssetIndex.SHA1, Size: base.AssetIndex.Size})
	if report.Items[len(report.Items)-1].Status != StatusOK {
		return report, nil
	}
	index, err := manifest.ReadAssetIndex(indexPath)
	if err != nil {
		return report, err
	}
	names := make([]string, 0, len(index.Objects))
	for name := range index.Objects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj := index.Objects[name]
		p, err := e.Store.Locate(store.Artifact{Kind: store.KindAssetObject, Coordinate: obj.Hash})
		if err != nil {
			report.Items = append(report.Items, CheckItem{Name: name, Kind: "asset", Status: StatusCorrupt, Detail: err.Error()})
			continue
		}
		report.add(e, name, p, verify.Expect{Kind: verify.KindAsset, SHA1: obj.Hash, Size: obj.Size})
	}
	return report, nil
}

// document records a version descriptor and reports whether it is usable.
func (r *CheckReport) document(name, path, id string) bool {
	item := CheckItem{Name: name, Path: path, Kind: "descriptor", Status: StatusOK}
	switch {
	case !store.Exists(path):
		item.Status = StatusMissing
	case !manifest.IsResolved(path, id):
		item.Status = StatusCorrupt
		item.Detail = fmt.Sprintf("does not declare id '%s'", id)
	}
	r.Items = append(r.Items, item)
	return item.Status == StatusOK
}

func (r *CheckReport) add(e *Engine, name, path string, want verify.Expect) {
	item := CheckItem{Name: name, Path: path, Kind: want.Kind.String(), Status: StatusOK}
	if !store.Exists(path) {
		item.Status = StatusMissing
	} else if err := e.Verifier.Check(path, want); err != nil {
		item.Status = StatusCorrupt
		item.Detail = err.Error()
	}
	r.Items = append(r.Items, item)
}
