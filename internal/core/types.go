// Package core provides shared types, the platform patcher registry and the
// patch instructions generator.
package core

import (
	"encoding/json"
	"io"
	"reflect"
	"sort"
	"strings"
)

// InstructionsVersion is the only patch_instructions_version this tool emits.
const InstructionsVersion = 1

// Repodata is a channel subdir's repodata.json document. Only the packages
// map is patched; other top-level fields are ignored.
type Repodata struct {
	Packages map[string]Record `json:"packages"`
}

// DecodeRepodata reads a repodata.json document. Numbers are kept as
// json.Number so records round-trip without float formatting changes.
func DecodeRepodata(r io.Reader) (*Repodata, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rd Repodata
	if err := dec.Decode(&rd); err != nil {
		return nil, err
	}
	return &rd, nil
}

// Filenames returns the package filenames in sorted order.
func (rd *Repodata) Filenames() []string {
	names := make([]string, 0, len(rd.Packages))
	for fn := range rd.Packages {
		names = append(names, fn)
	}
	sort.Strings(names)
	return names
}

// Record is a single package record from repodata. It is kept as an open
// JSON object so fields this tool does not know about survive untouched.
type Record map[string]any

// Name returns the record's package name.
func (r Record) Name() string {
	return r.str("name")
}

// Version returns the record's version string.
func (r Record) Version() string {
	return r.str("version")
}

// Features returns the space separated features string, or "" if the
// field is missing or not a string.
func (r Record) Features() string {
	return r.str("features")
}

// FeatureTokens returns Features split on whitespace.
func (r Record) FeatureTokens() []string {
	return strings.Fields(r.Features())
}

// Depends returns the dependency constraints. Non-string entries are skipped.
func (r Record) Depends() []string {
	raw, _ := r["depends"].([]any)
	deps := make([]string, 0, len(raw))
	for _, d := range raw {
		if s, ok := d.(string); ok {
			deps = append(deps, s)
		}
	}
	return deps
}

func (r Record) str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Clone returns a copy of the record that can be edited without touching
// the original. The depends list is copied; other values are shared and
// must not be mutated in place.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	if raw, ok := r["depends"].([]any); ok {
		deps := make([]any, len(raw))
		copy(deps, raw)
		out["depends"] = deps
	}
	return out
}

// AppendDepend adds a dependency constraint to the end of depends.
func (r Record) AppendDepend(dep string) {
	raw, _ := r["depends"].([]any)
	r["depends"] = append(raw, dep)
}

// Equal reports whether two records hold the same value.
func (r Record) Equal(other Record) bool {
	return reflect.DeepEqual(r, other)
}

// Instructions is the patch_instructions.json document for one channel
// subdir. Fields are declared in key order so the encoded output is sorted.
type Instructions struct {
	Packages            map[string]Record `json:"packages"`
	InstructionsVersion int               `json:"patch_instructions_version"`
	Remove              []string          `json:"remove"`
	Revoke              []string          `json:"revoke"`
}

// NewInstructions returns an empty instructions document.
func NewInstructions() *Instructions {
	return &Instructions{
		Packages:            make(map[string]Record),
		InstructionsVersion: InstructionsVersion,
		Remove:              []string{},
		Revoke:              []string{},
	}
}
