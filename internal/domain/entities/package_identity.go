package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	wildcardVersion = "*"
	typesScope      = "@types/"
)

// versionSegmentPattern matches a version directory such as "v2" or "v2.1".
var versionSegmentPattern = regexp.MustCompile(`^v(\d+)(?:\.(\d+))?$`)

// PackageVersion is either the Wildcard or an exact major(.minor) version.
// The zero value is the Wildcard.
type PackageVersion struct {
	exact    bool
	major    int
	minor    int
	hasMinor bool
}

// Wildcard matches any version of a package directory.
var Wildcard = PackageVersion{} //nolint:gochecknoglobals // immutable value

// NewExactVersion returns the version major.minor.
func NewExactVersion(major, minor int) PackageVersion {
	return PackageVersion{exact: true, major: major, minor: minor, hasMinor: true}
}

// NewMajorVersion returns a version that only pins the major component.
// It matches every minor of that major.
func NewMajorVersion(major int) PackageVersion {
	return PackageVersion{exact: true, major: major}
}

// ParseVersionSegment parses a path segment such as "v2" or "v2.1".
func ParseVersionSegment(segment string) (PackageVersion, bool) {
	match := versionSegmentPattern.FindStringSubmatch(segment)
	if match == nil {
		return Wildcard, false
	}

	major, err := strconv.Atoi(match[1])
	if err != nil {
		return Wildcard, false
	}
	if match[2] == "" {
		return NewMajorVersion(major), true
	}

	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return Wildcard, false
	}
	return NewExactVersion(major, minor), true
}

func (v PackageVersion) IsWildcard() bool { return !v.exact }

func (v PackageVersion) Major() int { return v.major }

// Minor returns the minor component and whether it is pinned.
func (v PackageVersion) Minor() (int, bool) { return v.minor, v.hasMinor }

// Matches reports whether two versions select the same package version.
// A missing minor component matches any minor of the same major.
func (v PackageVersion) Matches(other PackageVersion) bool {
	if v.IsWildcard() || other.IsWildcard() {
		return true
	}
	if v.major != other.major {
		return false
	}
	if !v.hasMinor || !other.hasMinor {
		return true
	}
	return v.minor == other.minor
}

func (v PackageVersion) String() string {
	if v.IsWildcard() {
		return wildcardVersion
	}
	if !v.hasMinor {
		return strconv.Itoa(v.major)
	}
	return fmt.Sprintf("%d.%d", v.major, v.minor)
}

// PackageIdentity identifies one version of a package in the monorepo.
type PackageIdentity struct {
	DirectoryName string
	Version       PackageVersion
}

// NewPackageIdentity creates an identity for the given directory and version.
func NewPackageIdentity(directoryName string, version PackageVersion) PackageIdentity {
	return PackageIdentity{DirectoryName: directoryName, Version: version}
}

// Equals reports whether both identities name the same package, treating
// Wildcard versions as matching any version of the directory.
func (p PackageIdentity) Equals(other PackageIdentity) bool {
	return p.DirectoryName == other.DirectoryName && p.Version.Matches(other.Version)
}

// Key returns the container key "<dir>/v<version>" used to deduplicate
// identities. Equal identities may still have different keys when one side
// is a Wildcard.
func (p PackageIdentity) Key() string {
	return p.DirectoryName + "/v" + p.Version.String()
}

func (p PackageIdentity) String() string {
	return p.DirectoryName + "@" + p.Version.String()
}

// TypesPackageName returns the npm name that publishes the typings kept in
// the given directory, e.g. "@types/babel__core" for "babel__core".
func TypesPackageName(directoryName string) string {
	return typesScope + directoryName
}

// DirectoryNameFromTypesPackage returns the directory name behind an
// "@types/..." npm name, or false when the name is outside the scope.
func DirectoryNameFromTypesPackage(npmName string) (string, bool) {
	if !strings.HasPrefix(npmName, typesScope) {
		return "", false
	}
	name := strings.TrimPrefix(npmName, typesScope)
	return name, name != ""
}
