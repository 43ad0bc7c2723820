package classpath

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/store"
)

// Resolution is the ordered, partitioned library set for one launch.
// ModulePath and Classpath are disjoint; natives appear in neither.
type Resolution struct {
	ModulePath []manifest.LibraryRef
	Classpath  []manifest.LibraryRef
	Natives    []manifest.LibraryRef
}

// Required lists every library that must be on disk before Build.
func (r *Resolution) Required() []manifest.LibraryRef {
	out := make([]manifest.LibraryRef, 0, len(r.ModulePath)+len(r.Classpath)+len(r.Natives))
	out = append(out, r.ModulePath...)
	out = append(out, r.Classpath...)
	out = append(out, r.Natives...)
	return out
}

// Partial is the library half of a launch plan: absolute paths in launch order.
type Partial struct {
	ModulePath []string
	Classpath  []string
	Natives    []manifest.LibraryRef
}

// MissingArtifactsError reports required libraries absent after fetching.
type MissingArtifactsError struct {
	Missing []string
}

func (e *MissingArtifactsError) Error() string {
	return fmt.Sprintf("%d required artifact(s) missing after resolution: %s", len(e.Missing), strings.Join(e.Missing, ", "))
}

// SanityError reports that no windowing library carries the required resource.
type SanityError struct {
	Resource string
	Checked  []string
	Err      error
}

func (e *SanityError) Error() string {
	if len(e.Checked) == 0 {
		return fmt.Sprintf("no windowing library on the classpath; expected one containing '%s'", e.Resource)
	}
	msg := fmt.Sprintf("none of %d windowing libraries contain '%s': %s", len(e.Checked), e.Resource, strings.Join(e.Checked, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SanityError) Unwrap() error {
	return e.Err
}

// Builder turns resolved descriptor libraries into classpath and module path.
// It never performs network I/O.
type Builder struct {
	Policy Policy
	Store  *store.Store
	Logger *slog.Logger
}

// Resolve applies the override policy to the loader's libraries, partitions
// them and unions in the base runtime's libraries. Neither input is modified.
func (b *Builder) Resolve(modded, base []manifest.LibraryRef) *Resolution {
	injected := b.Policy.injectedKeys()
	res := &Resolution{}

	seenPath := map[string]bool{}
	seenKey := map[string]bool{}
	claim := func(ref manifest.LibraryRef) bool {
		if seenPath[ref.Path] || seenKey[ref.Key()] {
			return false
		}
		seenPath[ref.Path] = true
		seenKey[ref.Key()] = true
		return true
	}

	for _, inj := range b.Policy.Injected {
		ref := inj.Ref()
		if claim(ref) {
			res.ModulePath = append(res.ModulePath, ref)
		}
	}

	for _, ref := range modded {
		if injected[ref.Key()] {
			b.logger().Debug("replacing descriptor library with pinned version", "library", ref.Name)
			continue
		}
		if !claim(ref) {
			continue
		}
		switch {
		case ref.Native:
			res.Natives = append(res.Natives, ref)
		case b.Policy.onModulePath(ref.Name):
			res.ModulePath = append(res.ModulePath, ref)
		default:
			res.Classpath = append(res.Classpath, ref)
		}
	}

	for _, ref := range base {
		if injected[ref.Key()] || !claim(ref) {
			continue
		}
		if ref.Native {
			res.Natives = append(res.Natives, ref)
		} else {
			res.Classpath = append(res.Classpath, ref)
		}
	}
	return res
}

// Build checks every required library is present, runs the windowing
// library sanity check and returns absolute paths in launch order.
func (b *Builder) Build(res *Resolution) (*Partial, error) {
	paths := map[string]string{}
	var missing []string
	for _, ref := range res.Required() {
		p, err := b.Store.Locate(store.Artifact{Kind: store.KindLibrary, Coordinate: ref.Path})
		if err != nil || !store.Exists(p) {
			missing = append(missing, ref.Name)
			continue
		}
		paths[ref.Path] = p
	}
	if len(missing) > 0 {
		return nil, &MissingArtifactsError{Missing: missing}
	}

	if err := b.checkWindowing(res.Classpath, paths); err != nil {
		return nil, err
	}

	partial := &Partial{Natives: res.Natives}
	for _, ref := range res.ModulePath {
		partial.ModulePath = append(partial.ModulePath, paths[ref.Path])
	}
	for _, ref := range res.Classpath {
		partial.Classpath = append(partial.Classpath, paths[ref.Path])
	}
	return partial, nil
}

func (b *Builder) checkWindowing(classpath []manifest.LibraryRef, paths map[string]string) error {
	prefix := b.Policy.WindowingPrefix
	if prefix == "" {
		return nil
	}
	sanity := &SanityError{Resource: b.Policy.RequiredResource}
	for _, ref := range classpath {
		if !strings.HasPrefix(ref.Name, prefix) {
			continue
		}
		sanity.Checked = append(sanity.Checked, ref.Name)
		ok, err := archiveContains(paths[ref.Path], b.Policy.RequiredResource)
		if err != nil {
			b.logger().Warn("cannot inspect windowing library", "library", ref.Name, "error", err)
			sanity.Err = err
			continue
		}
		if ok {
			return nil
		}
	}
	return sanity
}

func archiveContains(path, prefix string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, err
	}
	defer r.Close()
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return b.Logger
}
