// Package patches generates conda repodata patch instructions.
//
// For Windows subdirs the generator replaces the legacy vc features and the
// python track_features with explicit "vc <version>.*" dependencies. The
// result is a patch_instructions.json document listing only the records that
// changed.
//
// Basic usage:
//
//	import (
//		"github.com/git-pkgs/repodata-patches"
//		_ "github.com/git-pkgs/repodata-patches/all"
//	)
//
//	rd, err := patches.DecodeRepodata(resp.Body)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ins, err := patches.Generate(rd, "win-64")
//	if err != nil {
//		log.Fatal(err)
//	}
//	data, _ := patches.Encode(ins)
//	os.WriteFile("patch_instructions.json", data, 0o644)
package patches

import (
	"io"

	"github.com/git-pkgs/repodata-patches/internal/core"
)

// Re-export types from internal/core
type (
	// Repodata is a channel subdir's repodata.json document.
	Repodata = core.Repodata

	// Record is a single package record from repodata.
	Record = core.Record

	// Instructions is a patch_instructions.json document.
	Instructions = core.Instructions

	// Patcher rewrites records for a family of subdirs.
	Patcher = core.Patcher

	// PatcherFunc adapts a function to the Patcher interface.
	PatcherFunc = core.PatcherFunc

	// Factory creates a patcher for a subdir.
	Factory = core.Factory
)

// Error types
type (
	UnknownPythonVersionError = core.UnknownPythonVersionError
	InvalidFeatureError       = core.InvalidFeatureError
	RecordError               = core.RecordError
)

// Re-export errors
var (
	ErrUnknownPythonVersion = core.ErrUnknownPythonVersion
	ErrInvalidFeature       = core.ErrInvalidFeature
)

// InstructionsVersion is the patch_instructions_version of every document.
const InstructionsVersion = core.InstructionsVersion

// DecodeRepodata reads a repodata.json document.
func DecodeRepodata(r io.Reader) (*Repodata, error) {
	return core.DecodeRepodata(r)
}

// Generate builds the patch instructions for one subdir's repodata.
// Subdirs without a registered patcher produce an empty document.
func Generate(rd *Repodata, subdir string) (*Instructions, error) {
	return core.Generate(rd, subdir)
}

// Encode serializes instructions with sorted keys and two space indentation.
// Equal input always produces identical bytes.
func Encode(ins *Instructions) ([]byte, error) {
	return core.Encode(ins)
}

// NewInstructions returns an empty instructions document.
func NewInstructions() *Instructions {
	return core.NewInstructions()
}

// Register adds a patcher factory for subdirs starting with prefix.
func Register(prefix string, factory Factory) {
	core.Register(prefix, factory)
}

// SupportedPlatforms returns all registered subdir prefixes.
// Note: platforms must be imported to be registered.
func SupportedPlatforms() []string {
	return core.SupportedPlatforms()
}

// RecordPURL returns the conda Package URL of a record.
func RecordPURL(channel, subdir, filename string, rec Record) string {
	return core.RecordPURL(channel, subdir, filename, rec)
}
