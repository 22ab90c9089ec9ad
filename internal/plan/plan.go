// Package plan describes what a run would change without writing anything:
// per-record JSON merge patches and a line diff against the instructions
// already on disk.
package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/fatih/color"
	"github.com/git-pkgs/repodata-patches/internal/core"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Change is one patched record.
type Change struct {
	Filename   string
	PURL       string
	MergePatch json.RawMessage // RFC 7386 patch from the original record to the patched one
}

// Report lists the changes for one channel subdir.
type Report struct {
	Channel string
	Subdir  string
	Changes []Change
}

// Build compares every record in ins with its original in rd.
func Build(channel, subdir string, rd *core.Repodata, ins *core.Instructions) (*Report, error) {
	report := &Report{Channel: channel, Subdir: subdir}

	filenames := make([]string, 0, len(ins.Packages))
	for fn := range ins.Packages {
		filenames = append(filenames, fn)
	}
	sort.Strings(filenames)

	for _, fn := range filenames {
		patched := ins.Packages[fn]
		var original core.Record
		if rd != nil {
			original = rd.Packages[fn]
		}

		mp, err := mergePatch(original, patched)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn, err)
		}
		report.Changes = append(report.Changes, Change{
			Filename:   fn,
			PURL:       core.RecordPURL(channel, subdir, fn, patched),
			MergePatch: mp,
		})
	}
	return report, nil
}

func mergePatch(original, patched core.Record) (json.RawMessage, error) {
	if original == nil {
		original = core.Record{}
	}
	from, err := json.Marshal(original)
	if err != nil {
		return nil, err
	}
	to, err := json.Marshal(patched)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(from, to)
}

// Render writes a human readable summary of the report.
func Render(w io.Writer, r *Report) error {
	header := fmt.Sprintf("%s/%s: %d record(s) patched", r.Channel, r.Subdir, len(r.Changes))
	if _, err := fmt.Fprintln(w, color.New(color.Bold).Sprint(header)); err != nil {
		return err
	}
	for _, c := range r.Changes {
		if _, err := fmt.Fprintf(w, "  %s %s\n    %s\n", c.Filename, color.HiBlackString(c.PURL), c.MergePatch); err != nil {
			return err
		}
	}
	return nil
}

// Diff writes the lines that differ between the old and new instructions
// files, "-" for removed and "+" for added, and reports whether there were
// any.
func Diff(w io.Writer, oldContent, newContent []byte) (bool, error) {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(oldContent), string(newContent))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	changed := false
	for _, d := range diffs {
		var prefix string
		var paint func(format string, a ...interface{}) string
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix, paint = "+", color.GreenString
		case diffpatch.DiffDelete:
			prefix, paint = "-", color.RedString
		default:
			continue
		}
		changed = true
		for _, line := range splitLines(d.Text) {
			if _, err := fmt.Fprintln(w, paint("%s%s", prefix, line)); err != nil {
				return changed, err
			}
		}
	}
	return changed, nil
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
