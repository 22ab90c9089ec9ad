package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPythonVersion is returned when a python record's version has
	// no entry in the VC runtime table.
	ErrUnknownPythonVersion = errors.New("unknown python version")

	// ErrInvalidFeature is returned when a vc feature token does not carry
	// an integer version.
	ErrInvalidFeature = errors.New("invalid vc feature")
)

// UnknownPythonVersionError wraps ErrUnknownPythonVersion with the version
// that failed the lookup.
type UnknownPythonVersionError struct {
	Version string
	Prefix  string
}

func (e *UnknownPythonVersionError) Error() string {
	return fmt.Sprintf("no vc runtime known for python %s (prefix %q)", e.Version, e.Prefix)
}

func (e *UnknownPythonVersionError) Unwrap() error {
	return ErrUnknownPythonVersion
}

// InvalidFeatureError wraps ErrInvalidFeature with the offending token.
type InvalidFeatureError struct {
	Feature string
	Err     error
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("invalid vc feature %q: %v", e.Feature, e.Err)
}

func (e *InvalidFeatureError) Unwrap() []error {
	return []error{ErrInvalidFeature, e.Err}
}

// RecordError identifies the repodata record a patcher failed on.
type RecordError struct {
	Filename string
	Err      error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
