package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempPattern names in-progress files so they are recognisable in the store.
const tempPattern = ".craftlaunch-*.tmp"

// Contain joins rel onto root and verifies the result stays inside root.
// Symlinks are resolved for the longest existing prefix of both paths, so
// neither root nor the target has to exist yet. Returns the resolved path.
func Contain(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path '%s' must be relative to '%s'", rel, root)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := resolveExistingPath(filepath.Clean(absRoot))
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, rel))
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	// Trailing separator so "libraries2" never matches "libraries".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside '%s'", rel, resolved, realRoot)
	}
	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of
// the path, then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}

// TempFile creates a temp file next to dest, creating the parent directory.
// Renaming it onto dest is then atomic because both share a filesystem.
func TempFile(dest string) (*os.File, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return tmp, nil
}

// WriteAtomic writes content to path through a temp file and rename, so
// readers never observe a partial file.
func WriteAtomic(path string, content []byte, perm os.FileMode) error {
	tmp, err := TempFile(path)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return nil
}

// SafeWrite atomically writes content to rel inside root.
func SafeWrite(root, rel string, content []byte, perm os.FileMode) error {
	resolved, err := Contain(root, rel)
	if err != nil {
		return err
	}
	return WriteAtomic(resolved, content, perm)
}
