package entities

import "errors"

var (
	// ErrPackageNotFound is returned by a registry when no package has the name.
	ErrPackageNotFound = errors.New("package not found in registry")

	// ErrVersionNotFound is returned by a registry when the package exists but
	// no published version satisfies the requested version or range.
	ErrVersionNotFound = errors.New("version not found in registry")
)

// ManifestSummary is the part of a published package manifest the checks need.
type ManifestSummary struct {
	Name    string
	Version string
}
