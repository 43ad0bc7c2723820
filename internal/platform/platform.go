package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// builtinOS maps GOOS values to the OS names used by version descriptor rules.
var builtinOS = map[string]string{
	"windows": "windows",
	"darwin":  "osx",
	"linux":   "linux",
}

// builtinArch maps GOARCH values to descriptor architecture names.
var builtinArch = map[string]string{
	"amd64": "x86_64",
	"386":   "x86",
	"arm64": "arm64",
	"arm":   "arm32",
}

// classifierOS maps the OS part of a natives classifier to a descriptor OS name.
var classifierOS = map[string]string{
	"windows": "windows",
	"linux":   "linux",
	"macos":   "osx",
	"osx":     "osx",
}

// Platform identifies the operating system and architecture artifacts are resolved for.
type Platform struct {
	OS   string // descriptor OS name: windows, osx, linux
	Arch string // descriptor arch name: x86_64, x86, arm64, arm32
}

// Current returns the platform of the running process.
func Current() Platform {
	p, err := Resolve(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
	}
	return p
}

// Resolve maps Go OS/arch names to a Platform. Descriptor names are accepted as-is,
// so configuration may pin either form.
func Resolve(goos, goarch string) (Platform, error) {
	osName, ok := builtinOS[goos]
	if !ok {
		if !isDescriptorOS(goos) {
			return Platform{}, fmt.Errorf("unsupported operating system '%s': must be one of: windows, darwin, linux", goos)
		}
		osName = goos
	}
	arch, ok := builtinArch[goarch]
	if !ok {
		if !isDescriptorArch(goarch) {
			return Platform{}, fmt.Errorf("unsupported architecture '%s': must be one of: amd64, 386, arm64, arm", goarch)
		}
		arch = goarch
	}
	return Platform{OS: osName, Arch: arch}, nil
}

// WithOverrides returns p with non-empty overrides applied.
func (p Platform) WithOverrides(osName, arch string) (Platform, error) {
	goos, goarch := p.OS, p.Arch
	if osName != "" {
		goos = osName
	}
	if arch != "" {
		goarch = arch
	}
	return Resolve(goos, goarch)
}

// ListSeparator returns the classpath/module-path separator for the platform.
func (p Platform) ListSeparator() string {
	if p.OS == "windows" {
		return ";"
	}
	return ":"
}

// MatchesClassifier reports whether a natives classifier such as
// "natives-linux" or "natives-windows-arm64" targets this platform.
// Classifiers that are not natives classifiers always match.
func (p Platform) MatchesClassifier(classifier string) bool {
	rest, ok := strings.CutPrefix(classifier, "natives-")
	if !ok {
		return true
	}
	osPart, archPart, _ := strings.Cut(rest, "-")
	osName, known := classifierOS[osPart]
	if !known || osName != p.OS {
		return false
	}
	if archPart == "" {
		// Unsuffixed natives are built for the platform's primary 64-bit arch.
		return p.Arch == "x86_64"
	}
	return archPart == p.Arch
}

func (p Platform) String() string {
	return p.OS + "-" + p.Arch
}

func isDescriptorOS(name string) bool {
	for _, v := range builtinOS {
		if v == name {
			return true
		}
	}
	return false
}

func isDescriptorArch(name string) bool {
	for _, v := range builtinArch {
		if v == name {
			return true
		}
	}
	return false
}
