package verify

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Kind selects the structural check applied to a file.
type Kind int

const (
	// KindArchive is a jar or zip: every entry must decompress with a valid CRC.
	KindArchive Kind = iota
	// KindAsset is opaque bytes; only size and checksum apply.
	KindAsset
	// KindDocument must be well-formed JSON.
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindAsset:
		return "asset"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Expect describes what a valid file looks like. Zero Size and empty SHA1
// are not checked.
type Expect struct {
	Kind Kind
	SHA1 string
	Size int64
}

// IntegrityError reports a file that failed verification.
type IntegrityError struct {
	Path   string
	Kind   Kind
	Reason string
	Err    error
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("integrity check failed for %s %s: %s", e.Kind, e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// Verifier checks downloaded and cached files before they are trusted.
type Verifier struct{}

// Check verifies the file at path. It returns nil or an *IntegrityError.
func (v *Verifier) Check(path string, want Expect) error {
	fail := func(reason string, err error) error {
		return &IntegrityError{Path: path, Kind: want.Kind, Reason: reason, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail("cannot stat", err)
	}
	if !info.Mode().IsRegular() {
		return fail("not a regular file", nil)
	}
	if info.Size() == 0 {
		return fail("empty file", nil)
	}
	if want.Size > 0 && info.Size() != want.Size {
		return fail(fmt.Sprintf("size %d, expected %d", info.Size(), want.Size), nil)
	}

	if want.SHA1 != "" {
		actual, err := fileSHA1(path)
		if err != nil {
			return fail("cannot hash", err)
		}
		if !strings.EqualFold(actual, want.SHA1) {
			return fail(fmt.Sprintf("sha1 %s, expected %s", actual, want.SHA1), nil)
		}
	}

	switch want.Kind {
	case KindArchive:
		if err := checkArchive(path); err != nil {
			return fail("corrupt archive", err)
		}
	case KindDocument:
		if err := checkDocument(path); err != nil {
			return fail("invalid json", err)
		}
	}
	return nil
}

// Valid reports whether the file at path passes Check.
func (v *Verifier) Valid(path string, want Expect) bool {
	return v.Check(path, want) == nil
}

// checkArchive reads every entry to EOF so the zip reader validates each CRC32.
func checkArchive(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	if len(r.File) == 0 {
		return fmt.Errorf("archive has no entries")
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := drain(f); err != nil {
			return fmt.Errorf("entry %s: %w", f.Name, err)
		}
	}
	return nil
}

func drain(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(io.Discard, rc)
	return err
}

func checkDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("not well-formed")
	}
	return nil
}

func fileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SHA1 returns the hex SHA-1 of data.
func SHA1(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
