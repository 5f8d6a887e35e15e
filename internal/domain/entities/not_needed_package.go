package entities

import (
	"errors"
	"fmt"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"
)

// NotNeededPackage is a deprecation record: the typings in directory Name are
// obsolete because LibraryName ships its own types starting at Version.
type NotNeededPackage struct {
	Name        string
	LibraryName string
	Version     string
}

// NewNotNeededPackage validates and creates a deprecation record.
func NewNotNeededPackage(name, libraryName, version string) (NotNeededPackage, error) {
	if name == "" {
		return NotNeededPackage{}, errors.New("deprecated package name is required")
	}
	if libraryName == "" {
		return NotNeededPackage{}, fmt.Errorf("%s: libraryName is required", name)
	}
	if !IsValidVersion(version) {
		return NotNeededPackage{}, fmt.Errorf("%s: asOfVersion %q is not a valid semantic version", name, version)
	}
	return NotNeededPackage{Name: name, LibraryName: libraryName, Version: version}, nil
}

// FullTypesName returns the npm name of the typings being deprecated.
func (p NotNeededPackage) FullTypesName() string {
	return TypesPackageName(p.Name)
}

// IsValidVersion reports whether the string is a complete semantic version
// ("2.0.0", "1.4.0-beta.1"). Shorthands such as "2" or "v2.1" are rejected:
// the registry would read them as ranges.
func IsValidVersion(version string) bool {
	_, err := mmsemver.StrictNewVersion(version)
	return err == nil
}

// IsNewerVersion reports whether candidate is strictly greater than current
// in semantic-version order. Invalid inputs are never newer.
func IsNewerVersion(current, candidate string) bool {
	cur := normalizeVersion(current)
	next := normalizeVersion(candidate)
	if !semver.IsValid(cur) || !semver.IsValid(next) {
		return false
	}
	return semver.Compare(next, cur) > 0
}

// normalizeVersion ensures version has 'v' prefix for semver compatibility
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
