package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLayout(t *testing.T) {
	s := New("/instance")

	checks := map[string]string{
		s.LibraryPath("org/ow2/asm/asm/9.7/asm-9.7.jar"): "/instance/libraries/org/ow2/asm/asm/9.7/asm-9.7.jar",
		s.AssetObjectPath("abcdef0123"):                  "/instance/assets/objects/ab/abcdef0123",
		s.AssetIndexPath("17"):                           "/instance/assets/indexes/17.json",
		s.DescriptorPath("1.21.1"):                       "/instance/versions/1.21.1/1.21.1.json",
		s.ClientJarPath("1.21.1"):                        "/instance/versions/1.21.1/1.21.1.jar",
		s.NativesDir():                                   "/instance/natives",
	}
	for got, want := range checks {
		if got != filepath.FromSlash(want) {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestLocateDeterministic(t *testing.T) {
	s := New(t.TempDir())
	a := Artifact{Kind: KindLibrary, Coordinate: "com/mojang/brigadier/1.3.10/brigadier-1.3.10.jar"}

	first, err := s.Locate(a)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	second, err := s.Locate(a)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Locate not deterministic: %q vs %q", first, second)
	}
}

func TestLocateRejectsLibraryEscape(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Locate(Artifact{Kind: KindLibrary, Coordinate: "../../etc/passwd"})
	if err == nil {
		t.Fatal("expected error for escaping library path")
	}
}

func TestLocateRejectsBadNames(t *testing.T) {
	s := New(t.TempDir())
	bad := []Artifact{
		{Kind: KindAssetObject, Coordinate: "a"},
		{Kind: KindAssetObject, Coordinate: "ab/../cd"},
		{Kind: KindDescriptor, Coordinate: "../1.21.1"},
		{Kind: KindAssetIndex, Coordinate: ".."},
		{Kind: KindClientJar, Coordinate: ""},
		{Kind: Kind(99), Coordinate: "x"},
	}
	for _, a := range bad {
		if _, err := s.Locate(a); err == nil {
			t.Errorf("expected error for %s %q", a.Kind, a.Coordinate)
		}
	}
}

func TestLocateAsset(t *testing.T) {
	s := New("/instance")
	path, err := s.Locate(Artifact{Kind: KindAssetObject, Coordinate: "ffee00"})
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.FromSlash("/instance/assets/objects/ff/ffee00") {
		t.Errorf("path = %q", path)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()

	if Exists(filepath.Join(dir, "missing")) {
		t.Error("missing file reported as existing")
	}

	empty := filepath.Join(dir, "empty")
	os.WriteFile(empty, nil, 0644)
	if Exists(empty) {
		t.Error("empty file reported as existing")
	}

	if Exists(dir) {
		t.Error("directory reported as existing")
	}

	full := filepath.Join(dir, "full")
	os.WriteFile(full, []byte("x"), 0644)
	if !Exists(full) {
		t.Error("non-empty file not reported as existing")
	}
}

func TestInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.jar")
	os.WriteFile(path, []byte("garbage"), 0644)

	if err := Invalidate(path); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still present after Invalidate")
	}

	// Missing file is not an error.
	if err := Invalidate(path); err != nil {
		t.Errorf("Invalidate on missing file: %v", err)
	}
}

func TestDefaultRootXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	if got := DefaultRoot(); got != filepath.FromSlash("/xdg/craftlaunch/instance") {
		t.Errorf("DefaultRoot = %q", got)
	}
}
