package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndReadDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions", "neoforge-21.1.77", "neoforge-21.1.77.json")
	raw := []byte(`{"id":"neoforge-21.1.77","inheritsFrom":"1.21.1","mainClass":"cpw.mods.bootstraplauncher.BootstrapLauncher","libraries":[]}`)

	if err := SaveDescriptor(path, raw); err != nil {
		t.Fatalf("SaveDescriptor: %v", err)
	}
	desc, err := ReadDescriptor(path)
	if err != nil {
		t.Fatalf("ReadDescriptor: %v", err)
	}
	if desc.InheritsFrom != "1.21.1" {
		t.Errorf("inheritsFrom = %q", desc.InheritsFrom)
	}
	if string(desc.Raw) != string(raw) {
		t.Error("raw bytes not preserved verbatim")
	}
}

func TestParseDescriptorRequiresID(t *testing.T) {
	if _, err := ParseDescriptor([]byte(`{"libraries":[]}`)); err == nil {
		t.Fatal("expected error for descriptor without id")
	}
	if _, err := ParseDescriptor([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestIsResolved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1.21.1.json")

	if IsResolved(path, "1.21.1") {
		t.Error("missing file must not be resolved")
	}

	os.WriteFile(path, []byte(`{"id":"1.21"}`), 0644)
	if IsResolved(path, "1.21.1") {
		t.Error("descriptor with a different id must not be resolved")
	}

	os.WriteFile(path, []byte(`{"id":"1.21.1"`), 0644)
	if IsResolved(path, "1.21.1") {
		t.Error("truncated descriptor must not be resolved")
	}

	os.WriteFile(path, []byte(`{"id":"1.21.1"}`), 0644)
	if !IsResolved(path, "1.21.1") {
		t.Error("expected descriptor to be resolved")
	}
}

func TestReadAssetIndexEmptyObjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "17.json")
	os.WriteFile(path, []byte(`{}`), 0644)

	idx, err := ReadAssetIndex(path)
	if err != nil {
		t.Fatalf("ReadAssetIndex: %v", err)
	}
	if idx.Objects == nil {
		t.Error("expected non-nil objects map")
	}
}
