package manifest

import (
	"encoding/json"
	"strings"
)

// VersionIndex is the top-level version manifest listing every published version.
type VersionIndex struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionEntry `json:"versions"`
}

// VersionEntry points at a single version descriptor document.
type VersionEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	SHA1        string `json:"sha1,omitempty"`
	ReleaseTime string `json:"releaseTime,omitempty"`
}

// Lookup returns the entry whose ID matches id exactly.
func (vi *VersionIndex) Lookup(id string) (VersionEntry, bool) {
	for _, v := range vi.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return VersionEntry{}, false
}

// VersionDescriptor lists everything a runnable version needs.
// A decoded descriptor is treated as immutable.
type VersionDescriptor struct {
	ID           string         `json:"id"`
	InheritsFrom string         `json:"inheritsFrom,omitempty"`
	Type         string         `json:"type,omitempty"`
	MainClass    string         `json:"mainClass"`
	Assets       string         `json:"assets,omitempty"`
	AssetIndex   *AssetIndexRef `json:"assetIndex,omitempty"`
	Downloads    Downloads      `json:"downloads,omitempty"`
	Libraries    []Library      `json:"libraries"`
	Arguments    Arguments      `json:"arguments,omitempty"`

	// Raw is the document exactly as fetched or read.
	Raw []byte `json:"-"`
}

// Downloads holds the descriptor's top-level downloads.
type Downloads struct {
	Client *Artifact `json:"client,omitempty"`
}

// Artifact describes a single downloadable file.
type Artifact struct {
	// Path relative to the libraries directory; empty for the client jar.
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// Library is a library entry in its wire form.
type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
}

// LibraryDownloads holds the main artifact and legacy classifier artifacts.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Rule conditionally allows or disallows a library or argument.
type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OSRule restricts a rule to an operating system and optionally an architecture.
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

// Arguments holds the modern argument lists. Entries are either plain strings
// or rule-guarded objects, so they are kept raw until evaluated.
type Arguments struct {
	Game []json.RawMessage `json:"game,omitempty"`
	JVM  []json.RawMessage `json:"jvm,omitempty"`
}

// AssetIndexRef points at the asset index document for a version.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1,omitempty"`
	Size      int64  `json:"size,omitempty"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// AssetIndex maps logical asset names to content-addressed objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`

	Raw []byte `json:"-"`
}

// AssetObject is a content-addressed asset.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// LibraryRef is a library resolved for one platform.
type LibraryRef struct {
	Name   string // group:artifact:version[:classifier]
	Path   string // relative to libraries/
	URL    string
	SHA1   string
	Size   int64
	Native bool
}

// Coordinate is a parsed group:artifact:version[:classifier] name.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
}

// ParseCoordinate splits a library name into its parts. Missing parts are empty.
func ParseCoordinate(name string) Coordinate {
	parts := strings.Split(name, ":")
	var c Coordinate
	if len(parts) > 0 {
		c.Group = parts[0]
	}
	if len(parts) > 1 {
		c.Artifact = parts[1]
	}
	if len(parts) > 2 {
		c.Version = parts[2]
	}
	if len(parts) > 3 {
		c.Classifier = parts[3]
	}
	return c
}

// Key returns the version-less identity of the coordinate.
func (c Coordinate) Key() string {
	key := c.Group + ":" + c.Artifact
	if c.Classifier != "" {
		key += ":" + c.Classifier
	}
	return key
}

// Key returns the version-less identity of the library.
func (r LibraryRef) Key() string {
	return ParseCoordinate(r.Name).Key()
}
