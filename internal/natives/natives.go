package natives

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/sandbox"
	"github.com/bianoble/craftlaunch/internal/store"
)

// Failure records a native archive that could not be extracted.
type Failure struct {
	Library string
	Err     error
}

// Report summarises an extraction pass.
type Report struct {
	Archives  int
	Files     int
	Failed    []Failure
	Extracted []string // base names written, in write order
}

// Extractor unpacks native library archives into a single flat directory.
type Extractor struct {
	Logger *slog.Logger
}

// ExtractAll extracts every native ref in order. Entries are written by base
// name only, so a later archive overwrites an earlier one with the same file.
// Failures are logged and reported, never returned.
func (e *Extractor) ExtractAll(refs []manifest.LibraryRef, st *store.Store, destDir string) *Report {
	log := e.logger()
	report := &Report{}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		log.Warn("creating natives directory", "dir", destDir, "error", err)
		report.Failed = append(report.Failed, Failure{Err: err})
		return report
	}

	for _, ref := range refs {
		if !ref.Native {
			continue
		}
		src, err := st.Locate(store.Artifact{Kind: store.KindLibrary, Coordinate: ref.Path})
		if err == nil && !store.Exists(src) {
			err = fmt.Errorf("archive %s not present", src)
		}
		if err == nil {
			var names []string
			names, err = extractArchive(src, destDir)
			report.Files += len(names)
			report.Extracted = append(report.Extracted, names...)
		}
		if err != nil {
			log.Warn("native extraction failed", "library", ref.Name, "error", err)
			report.Failed = append(report.Failed, Failure{Library: ref.Name, Err: err})
			continue
		}
		report.Archives++
		log.Debug("extracted natives", "library", ref.Name)
	}
	return report
}

func extractArchive(src, destDir string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src, err)
	}
	defer r.Close()

	var written []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}
		name := path.Base(f.Name)
		if name == "." || name == ".." || name == "/" {
			continue
		}
		dest, err := sandbox.Contain(destDir, name)
		if err != nil {
			return written, err
		}
		data, err := readEntry(f)
		if err != nil {
			return written, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		if err := sandbox.WriteAtomic(dest, data, 0755); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}
