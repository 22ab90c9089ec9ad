// Package output writes patch_instructions.json files under
// <root>/<channel>/<subdir>/.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/git-pkgs/repodata-patches/internal/core"
	"go.trai.ch/zerr"
)

// Filename is the name of every instructions file.
const Filename = "patch_instructions.json"

const (
	DirPerm  = 0o755
	FilePerm = 0o644
)

var (
	// ErrEncodeFailed is returned when instructions cannot be serialized.
	ErrEncodeFailed = zerr.New("failed to encode patch instructions")

	// ErrCreateDirFailed is returned when the output directory cannot be created.
	ErrCreateDirFailed = zerr.New("failed to create output directory")

	// ErrReadFailed is returned when an existing instructions file cannot be read.
	ErrReadFailed = zerr.New("failed to read existing patch instructions")

	// ErrWriteFailed is returned when the instructions file cannot be written.
	ErrWriteFailed = zerr.New("failed to write patch instructions")
)

// Result describes one Write.
type Result struct {
	Path    string
	Digest  uint64 // xxhash64 of the written content
	Changed bool   // false if the file already held identical bytes
	Bytes   int
}

// DigestHex returns Digest as 16 lowercase hex digits.
func (r *Result) DigestHex() string {
	return fmt.Sprintf("%016x", r.Digest)
}

// Writer places instructions files under Root.
type Writer struct {
	Root string
}

// NewWriter creates a Writer rooted at root.
func NewWriter(root string) *Writer {
	return &Writer{Root: root}
}

// Path returns the instructions path for a channel subdir. Channel labels
// ("conda-forge/label/archive") become nested directories.
func (w *Writer) Path(channel, subdir string) string {
	return filepath.Join(w.Root, filepath.FromSlash(channel), subdir, Filename)
}

// Existing returns the current content of the instructions file, or nil if
// it does not exist yet.
func (w *Writer) Existing(channel, subdir string) ([]byte, error) {
	path := w.Path(channel, subdir)
	//nolint:gosec // path is built from configured channel and subdir names
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", path)
	}
	return data, nil
}

// Write encodes ins and stores it for channel/subdir. An existing file with
// identical content is left untouched.
func (w *Writer) Write(channel, subdir string, ins *core.Instructions) (*Result, error) {
	data, err := core.Encode(ins)
	if err != nil {
		return nil, zerr.Wrap(err, ErrEncodeFailed.Error())
	}
	return w.WriteBytes(channel, subdir, data)
}

// WriteBytes stores already encoded instructions.
func (w *Writer) WriteBytes(channel, subdir string, data []byte) (*Result, error) {
	path := w.Path(channel, subdir)
	res := &Result{
		Path:   path,
		Digest: xxhash.Sum64(data),
		Bytes:  len(data),
	}

	existing, err := w.Existing(channel, subdir)
	if err != nil {
		return nil, err
	}
	if existing != nil && bytes.Equal(existing, data) {
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrCreateDirFailed.Error()), "path", filepath.Dir(path))
	}
	//nolint:gosec // path is built from configured channel and subdir names
	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrWriteFailed.Error()), "path", path)
	}

	res.Changed = true
	return res, nil
}
