// Package windows patches Windows subdirs (win-64, win-32, ...) so records
// depend on the Visual C++ runtime explicitly instead of through the legacy
// vc features and python track_features.
package windows

import (
	"strconv"
	"strings"

	"github.com/git-pkgs/repodata-patches/internal/core"
)

const (
	// Platform is the subdir prefix this package registers for.
	Platform = "win-"
	python   = "python"
)

func init() {
	core.Register(Platform, func(subdir string) core.Patcher {
		return New()
	})
}

// pythonRuntimes maps the first three characters of a python version to the
// vc runtime that interpreter was built with.
var pythonRuntimes = map[string]string{
	"2.6": "vc 9.*",
	"2.7": "vc 9.*",
	"3.3": "vc 10.*",
	"3.4": "vc 10.*",
	"3.5": "vc 14.*",
	"3.6": "vc 14.*",
	"3.7": "vc 14.*",
}

// Patcher rewrites win-* records to depend on an explicit vc runtime.
type Patcher struct{}

// New creates a Windows patcher.
func New() *Patcher {
	return &Patcher{}
}

// Patch applies at most one rule: python records first, then records with a
// vc feature. A python record's features are never cleaned.
func (p *Patcher) Patch(rec core.Record) (core.Record, error) {
	switch {
	case rec.Name() == python:
		return patchPython(rec)
	case core.HasVCFeature(rec.FeatureTokens()):
		return patchVCFeature(rec)
	}
	return rec, nil
}

func patchPython(rec core.Record) (core.Record, error) {
	out := rec.Clone()
	delete(out, "track_features")

	if !core.HasVCDependency(out.Depends()) {
		dep, err := PythonRuntime(rec.Version())
		if err != nil {
			return nil, err
		}
		out.AppendDepend(dep)
	}
	return out, nil
}

// PythonRuntime returns the vc dependency constraint for a python version.
func PythonRuntime(version string) (string, error) {
	prefix := version
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	dep, ok := pythonRuntimes[prefix]
	if !ok {
		return "", &core.UnknownPythonVersionError{Version: version, Prefix: prefix}
	}
	return dep, nil
}

func patchVCFeature(rec core.Record) (core.Record, error) {
	version, rest, err := extractVCFeature(rec.FeatureTokens())
	if err != nil {
		return nil, err
	}

	out := rec.Clone()
	if len(rest) == 0 {
		delete(out, "features")
	} else {
		out["features"] = strings.Join(rest, " ")
	}

	if !core.HasVCDependency(out.Depends()) {
		out.AppendDepend("vc " + strconv.Itoa(version) + ".*")
	}
	return out, nil
}

// extractVCFeature returns the version of the first vc feature token and the
// remaining non-vc tokens in their original order. Only the first vc token's
// version is used; the others are dropped.
func extractVCFeature(tokens []string) (version int, rest []string, err error) {
	found := false
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, core.VCPrefix) {
			rest = append(rest, tok)
			continue
		}
		if found {
			continue
		}
		found = true
		version, err = strconv.Atoi(strings.TrimPrefix(tok, core.VCPrefix))
		if err != nil {
			return 0, nil, &core.InvalidFeatureError{Feature: tok, Err: err}
		}
	}
	return version, rest, nil
}
