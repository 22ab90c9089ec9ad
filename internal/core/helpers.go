package core

import "strings"

// VCPrefix marks Visual C++ runtime features and dependencies.
const VCPrefix = "vc"

// Generate builds the patch instructions for one subdir's repodata. Records
// are patched in filename order and only those whose patched value differs
// from the original are included. Subdirs without a registered patcher get
// an empty document.
func Generate(rd *Repodata, subdir string) (*Instructions, error) {
	ins := NewInstructions()

	p := PatcherFor(subdir)
	if p == nil || rd == nil {
		return ins, nil
	}

	for _, fn := range rd.Filenames() {
		rec := rd.Packages[fn]
		patched, err := p.Patch(rec)
		if err != nil {
			return nil, &RecordError{Filename: fn, Err: err}
		}
		if !rec.Equal(patched) {
			ins.Packages[fn] = patched
		}
	}

	return ins, nil
}

// HasVCDependency reports whether any constraint starts with "vc".
func HasVCDependency(deps []string) bool {
	for _, d := range deps {
		if strings.HasPrefix(d, VCPrefix) {
			return true
		}
	}
	return false
}

// HasVCFeature reports whether any feature token starts with "vc".
func HasVCFeature(features []string) bool {
	for _, f := range features {
		if strings.HasPrefix(f, VCPrefix) {
			return true
		}
	}
	return false
}
