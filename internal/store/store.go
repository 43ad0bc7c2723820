package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bianoble/craftlaunch/internal/platform"
	"github.com/bianoble/craftlaunch/internal/sandbox"
)

// Kind classifies a stored artifact.
type Kind int

const (
	KindLibrary Kind = iota
	KindAssetObject
	KindAssetIndex
	KindDescriptor
	KindClientJar
	KindInstaller
)

func (k Kind) String() string {
	switch k {
	case KindLibrary:
		return "library"
	case KindAssetObject:
		return "asset"
	case KindAssetIndex:
		return "asset-index"
	case KindDescriptor:
		return "descriptor"
	case KindClientJar:
		return "client"
	case KindInstaller:
		return "installer"
	default:
		return "unknown"
	}
}

// Artifact identifies a file in the store by kind and coordinate.
// The coordinate is a library path, an asset hash, an asset index id,
// a version id or an installer file name depending on Kind.
type Artifact struct {
	Kind       Kind
	Coordinate string
}

// Store maps artifacts onto the instance directory layout:
//
//	libraries/<path>
//	assets/indexes/<id>.json
//	assets/objects/<hh>/<hash>
//	versions/<id>/<id>.json
//	versions/<id>/<id>.jar
//	natives/
//
// Path functions are pure and deterministic; only Exists and Invalidate touch disk.
type Store struct {
	root string
}

// New creates a Store rooted at the instance directory. Nothing is created on disk.
func New(root string) *Store {
	return &Store{root: root}
}

// DefaultRoot returns the default instance directory, "instance" under
// platform.DataDir.
func DefaultRoot() string {
	dir := platform.DataDir()
	if dir == "" {
		return filepath.Join(os.TempDir(), "craftlaunch-instance")
	}
	return filepath.Join(dir, "instance")
}

// Root returns the instance directory.
func (s *Store) Root() string {
	return s.root
}

// LibrariesDir returns the directory holding every library archive.
func (s *Store) LibrariesDir() string {
	return filepath.Join(s.root, "libraries")
}

// AssetsDir returns the assets root passed to the game as --assetsDir.
func (s *Store) AssetsDir() string {
	return filepath.Join(s.root, "assets")
}

// NativesDir returns the flat directory native libraries are extracted into.
func (s *Store) NativesDir() string {
	return filepath.Join(s.root, "natives")
}

// LibraryPath returns the location of a library given its descriptor path.
// The path is not containment-checked; use Locate for descriptor input.
func (s *Store) LibraryPath(rel string) string {
	return filepath.Join(s.LibrariesDir(), filepath.FromSlash(rel))
}

// AssetObjectPath returns the content-addressed location of an asset.
func (s *Store) AssetObjectPath(hash string) string {
	prefix := hash
	if len(hash) >= 2 {
		prefix = hash[:2]
	}
	return filepath.Join(s.AssetsDir(), "objects", prefix, hash)
}

// AssetIndexPath returns the location of an asset index document.
func (s *Store) AssetIndexPath(id string) string {
	return filepath.Join(s.AssetsDir(), "indexes", id+".json")
}

// VersionDir returns the directory of a version.
func (s *Store) VersionDir(id string) string {
	return filepath.Join(s.root, "versions", id)
}

// DescriptorPath returns the location of a version descriptor.
func (s *Store) DescriptorPath(id string) string {
	return filepath.Join(s.VersionDir(id), id+".json")
}

// ClientJarPath returns the location of a version's client jar.
func (s *Store) ClientJarPath(id string) string {
	return filepath.Join(s.VersionDir(id), id+".jar")
}

// InstallerPath returns where a downloaded installer jar is kept.
func (s *Store) InstallerPath(name string) string {
	return filepath.Join(s.root, ".installers", name)
}

// Locate returns the on-disk path for an artifact. Coordinates that come from
// descriptors are checked so they cannot leave their directory.
func (s *Store) Locate(a Artifact) (string, error) {
	if a.Coordinate == "" {
		return "", fmt.Errorf("locating %s: empty coordinate", a.Kind)
	}
	switch a.Kind {
	case KindLibrary:
		return sandbox.Contain(s.LibrariesDir(), filepath.FromSlash(a.Coordinate))
	case KindAssetObject:
		if len(a.Coordinate) < 2 || filepath.Base(a.Coordinate) != a.Coordinate {
			return "", fmt.Errorf("locating asset: invalid hash '%s'", a.Coordinate)
		}
		return s.AssetObjectPath(a.Coordinate), nil
	case KindAssetIndex, KindDescriptor, KindClientJar, KindInstaller:
		if filepath.Base(a.Coordinate) != a.Coordinate || a.Coordinate == ".." || a.Coordinate == "." {
			return "", fmt.Errorf("locating %s: invalid name '%s'", a.Kind, a.Coordinate)
		}
		switch a.Kind {
		case KindAssetIndex:
			return s.AssetIndexPath(a.Coordinate), nil
		case KindDescriptor:
			return s.DescriptorPath(a.Coordinate), nil
		case KindClientJar:
			return s.ClientJarPath(a.Coordinate), nil
		default:
			return s.InstallerPath(a.Coordinate), nil
		}
	default:
		return "", fmt.Errorf("locating artifact: unknown kind %d", a.Kind)
	}
}

// Exists reports whether path is a regular, non-empty file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// Invalidate removes the file at path. A missing file is not an error.
func Invalidate(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("invalidating %s: %w", path, err)
	}
	return nil
}

// Size returns the total size in bytes of every file in the store.
// A store that does not exist yet has size zero.
func (s *Store) Size() (int64, error) {
	var total int64
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.root {
				return filepath.SkipAll
			}
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
