package classpath

import (
	"strings"

	"github.com/bianoble/craftlaunch/internal/manifest"
)

// Pinned bootstrap chain.
const (
	DefaultMaven            = "https://maven.minecraftforge.net/"
	DefaultBootstrapVersion = "2.0.2"
	DefaultSecureJarVersion = "3.0.8"
	bootstrapCoordinate     = "cpw.mods:bootstraplauncher"
	secureJarCoordinate     = "cpw.mods:securejarhandler"
	defaultWindowingPrefix  = "org.lwjgl:"
	defaultRequiredResource = "org/lwjgl/system/Struct"
)

// Injection is a library that replaces whatever version a descriptor lists.
type Injection struct {
	Name       string // group:artifact:version
	Repository string // maven repository base URL
	// Aliases are further version-less keys the injection replaces.
	Aliases []string
}

// Ref returns the library the injection resolves to, laid out maven-style.
func (i Injection) Ref() manifest.LibraryRef {
	c := manifest.ParseCoordinate(i.Name)
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	rel := strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Artifact + "/" + c.Version + "/" + file + ".jar"
	repo := i.Repository
	if !strings.HasSuffix(repo, "/") {
		repo += "/"
	}
	return manifest.LibraryRef{Name: i.Name, Path: rel, URL: repo + rel}
}

// Key returns the version-less identity the injection overrides.
func (i Injection) Key() string {
	return manifest.ParseCoordinate(i.Name).Key()
}

// Keys returns Key followed by the aliases.
func (i Injection) Keys() []string {
	return append([]string{i.Key()}, i.Aliases...)
}

// Policy decides which libraries are replaced and where each one goes.
type Policy struct {
	// Injected entries lead the module path in this order.
	Injected []Injection
	// ModulePathPrefixes route matching library names onto the module path.
	ModulePathPrefixes []string
	// WindowingPrefix selects classpath entries for the sanity check.
	// Empty disables the check.
	WindowingPrefix string
	// RequiredResource must prefix an entry in at least one windowing archive.
	RequiredResource string
}

// DefaultPolicy pins the bootstrap launcher and secure jar handler.
func DefaultPolicy() Policy {
	return Policy{
		Injected: []Injection{
			{
				Name:       bootstrapCoordinate + ":" + DefaultBootstrapVersion,
				Repository: DefaultMaven,
				Aliases:    []string{"cpw.mods.bootstraplauncher:bootstraplauncher"},
			},
			{
				Name:       secureJarCoordinate + ":" + DefaultSecureJarVersion,
				Repository: DefaultMaven,
				Aliases:    []string{"cpw.mods.securejarhandler:securejarhandler"},
			},
		},
		ModulePathPrefixes: []string{"org.ow2.asm:", "net.neoforged:JarJarFileSystems:"},
		WindowingPrefix:    defaultWindowingPrefix,
		RequiredResource:   defaultRequiredResource,
	}
}

// WithPins returns the default policy with non-empty overrides applied to the
// bootstrap version, secure jar version and repository.
func WithPins(bootstrapVersion, secureJarVersion, maven string) Policy {
	p := DefaultPolicy()
	if maven != "" {
		for i := range p.Injected {
			p.Injected[i].Repository = maven
		}
	}
	if bootstrapVersion != "" {
		p.Injected[0].Name = bootstrapCoordinate + ":" + bootstrapVersion
	}
	if secureJarVersion != "" {
		p.Injected[1].Name = secureJarCoordinate + ":" + secureJarVersion
	}
	return p
}

func (p Policy) injectedKeys() map[string]bool {
	keys := make(map[string]bool, len(p.Injected))
	for _, inj := range p.Injected {
		for _, k := range inj.Keys() {
			keys[k] = true
		}
	}
	return keys
}

func (p Policy) onModulePath(name string) bool {
	for _, prefix := range p.ModulePathPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
