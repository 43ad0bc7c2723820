package manifest

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/bianoble/craftlaunch/internal/platform"
)

// Allowed evaluates rules against the platform. No rules means allowed;
// otherwise the last matching rule decides. Feature-gated rules never match,
// since no optional features are enabled.
func Allowed(rules []Rule, p platform.Platform) bool {
	if len(rules) == 0 {
		return true
	}
	allowed := false
	for _, r := range rules {
		if !ruleMatches(r, p) {
			continue
		}
		allowed = r.Action == "allow"
	}
	return allowed
}

func ruleMatches(r Rule, p platform.Platform) bool {
	for _, enabled := range r.Features {
		if enabled {
			return false
		}
	}
	if r.OS == nil {
		return true
	}
	if r.OS.Name != "" && r.OS.Name != p.OS {
		return false
	}
	if r.OS.Arch != "" && r.OS.Arch != p.Arch {
		return false
	}
	return true
}

// Libraries resolves the descriptor's library list for a platform, preserving
// descriptor order. Rule-excluded libraries, libraries without a download and
// natives built for another platform are dropped.
func Libraries(desc *VersionDescriptor, p platform.Platform) []LibraryRef {
	var refs []LibraryRef
	for _, lib := range desc.Libraries {
		if !Allowed(lib.Rules, p) || lib.Downloads == nil {
			continue
		}

		// Legacy layout: natives live in classifier downloads keyed per OS.
		if classifier, ok := lib.Natives[p.OS]; ok {
			classifier = strings.ReplaceAll(classifier, "${arch}", archBits(p))
			if art, found := lib.Downloads.Classifiers[classifier]; found && art.URL != "" {
				refs = append(refs, LibraryRef{
					Name:   lib.Name + ":" + classifier,
					Path:   art.Path,
					URL:    art.URL,
					SHA1:   art.SHA1,
					Size:   art.Size,
					Native: true,
				})
			}
		}

		art := lib.Downloads.Artifact
		if art == nil || art.Path == "" {
			continue
		}
		coord := ParseCoordinate(lib.Name)
		native := strings.HasPrefix(coord.Classifier, "natives-") || strings.Contains(path.Base(art.Path), "-natives-")
		if native && coord.Classifier != "" && !p.MatchesClassifier(coord.Classifier) {
			continue
		}
		refs = append(refs, LibraryRef{
			Name:   lib.Name,
			Path:   art.Path,
			URL:    art.URL,
			SHA1:   art.SHA1,
			Size:   art.Size,
			Native: native,
		})
	}
	return refs
}

// GameArguments returns the descriptor's game arguments allowed on the platform.
// Plain strings are kept; rule-guarded entries are included when their rules allow.
func GameArguments(desc *VersionDescriptor, p platform.Platform) ([]string, error) {
	return evalArguments(desc.Arguments.Game, p)
}

// JVMArguments returns the descriptor's JVM arguments allowed on the platform.
func JVMArguments(desc *VersionDescriptor, p platform.Platform) ([]string, error) {
	return evalArguments(desc.Arguments.JVM, p)
}

type conditionalArgument struct {
	Rules []Rule          `json:"rules"`
	Value json.RawMessage `json:"value"`
}

func evalArguments(raw []json.RawMessage, p platform.Platform) ([]string, error) {
	var out []string
	for _, entry := range raw {
		var plain string
		if err := json.Unmarshal(entry, &plain); err == nil {
			out = append(out, plain)
			continue
		}

		var cond conditionalArgument
		if err := json.Unmarshal(entry, &cond); err != nil {
			return nil, err
		}
		if !Allowed(cond.Rules, p) {
			continue
		}
		var single string
		if err := json.Unmarshal(cond.Value, &single); err == nil {
			out = append(out, single)
			continue
		}
		var many []string
		if err := json.Unmarshal(cond.Value, &many); err != nil {
			return nil, err
		}
		out = append(out, many...)
	}
	return out, nil
}

func archBits(p platform.Platform) string {
	switch p.Arch {
	case "x86", "arm32":
		return "32"
	default:
		return "64"
	}
}
