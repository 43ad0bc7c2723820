package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bianoble/craftlaunch/internal/sandbox"
)

// ParseDescriptor decodes a version descriptor and keeps the raw bytes.
func ParseDescriptor(data []byte) (*VersionDescriptor, error) {
	var desc VersionDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing version descriptor: %w", err)
	}
	if desc.ID == "" {
		return nil, fmt.Errorf("parsing version descriptor: 'id' is required")
	}
	desc.Raw = data
	return &desc, nil
}

// ParseAssetIndex decodes an asset index and keeps the raw bytes.
func ParseAssetIndex(data []byte) (*AssetIndex, error) {
	var idx AssetIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing asset index: %w", err)
	}
	if idx.Objects == nil {
		idx.Objects = map[string]AssetObject{}
	}
	idx.Raw = data
	return &idx, nil
}

// ReadDescriptor reads a version descriptor from disk.
func ReadDescriptor(path string) (*VersionDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading version descriptor %s: %w", path, err)
	}
	desc, err := ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

// ReadAssetIndex reads an asset index from disk.
func ReadAssetIndex(path string) (*AssetIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset index %s: %w", path, err)
	}
	idx, err := ParseAssetIndex(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// SaveDescriptor writes raw descriptor bytes atomically.
func SaveDescriptor(path string, raw []byte) error {
	if err := sandbox.WriteAtomic(path, raw, 0644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// IsResolved reports whether the descriptor at path exists and declares id.
// This is the resumability marker for a version.
func IsResolved(path, id string) bool {
	desc, err := ReadDescriptor(path)
	if err != nil {
		return false
	}
	return desc.ID == id
}

// SaveAssetIndex writes raw asset index bytes atomically.
func SaveAssetIndex(path string, raw []byte) error {
	return SaveDescriptor(path, raw)
}
