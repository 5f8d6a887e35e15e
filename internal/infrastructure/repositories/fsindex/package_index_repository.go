package fsindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	ignore "github.com/sabhiram/go-gitignore"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

const (
	packageJSONFile   = "package.json"
	declarationFile   = "index.d.ts"
	gitignoreFile     = ".gitignore"
	workspaceProtocol = "workspace:"
)

// PackageIndexRepository implements repositories.PackageIndexRepository by
// reading package directories from a checkout on disk.
//
// Layout: "<root>/<dir>/" holds the latest version of a package and
// "<root>/<dir>/v<major>[.<minor>]/" holds older versions. A directory is a
// package when it contains index.d.ts or package.json. Dependencies are the
// "@types/..." entries of package.json "dependencies" and "devDependencies".
type PackageIndexRepository struct{}

// NewPackageIndexRepository creates a new filesystem package index.
func NewPackageIndexRepository() repositories.PackageIndexRepository {
	return &PackageIndexRepository{}
}

type packageManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type notNeededManifest struct {
	Packages map[string]notNeededEntry `json:"packages"`
}

type notNeededEntry struct {
	LibraryName string `json:"libraryName"`
	AsOfVersion string `json:"asOfVersion"`
}

// Load walks "<repoDir>/<root>" and reads "<repoDir>/<manifest>".
func (r *PackageIndexRepository) Load(
	ctx context.Context,
	repoDir, root, manifest string,
) (*entities.DependencyGraph, error) {
	ignorer := compileIgnoreFile(repoDir)
	rootDir := filepath.Join(repoDir, root)

	dirEntries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list package root %q: %w", rootDir, err)
	}

	var graphEntries []entities.DependencyGraphEntry
	for _, dirEntry := range dirEntries {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !dirEntry.IsDir() || isIgnored(ignorer, filepath.Join(root, dirEntry.Name())) {
			continue
		}

		packageEntries, loadErr := loadPackage(filepath.Join(rootDir, dirEntry.Name()), dirEntry.Name(), root, ignorer)
		if loadErr != nil {
			return nil, loadErr
		}
		graphEntries = append(graphEntries, packageEntries...)
	}

	notNeeded, err := loadNotNeededPackages(filepath.Join(repoDir, manifest))
	if err != nil {
		return nil, err
	}

	graph := entities.NewDependencyGraph(graphEntries, notNeeded)
	logger.Infof("[fsindex] Indexed %d packages (%d versions) and %d deprecation records",
		len(graph.DirectoryNames()), len(graphEntries), len(notNeeded))
	return graph, nil
}

// loadPackage reads the latest version of a package directory and every
// version subdirectory below it.
func loadPackage(
	packageDir, name, root string,
	ignorer *ignore.GitIgnore,
) ([]entities.DependencyGraphEntry, error) {
	var result []entities.DependencyGraphEntry

	latest, found, err := readPackageVersion(packageDir, name, nil)
	if err != nil {
		return nil, err
	}
	if found {
		result = append(result, latest)
	} else {
		logger.Debugf("[fsindex] %s has no %s or %s at its top level", name, declarationFile, packageJSONFile)
	}

	subEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", packageDir, err)
	}
	for _, sub := range subEntries {
		if !sub.IsDir() || isIgnored(ignorer, filepath.Join(root, name, sub.Name())) {
			continue
		}
		version, isVersion := entities.ParseVersionSegment(sub.Name())
		if !isVersion {
			continue
		}

		older, olderFound, olderErr := readPackageVersion(filepath.Join(packageDir, sub.Name()), name, &version)
		if olderErr != nil {
			return nil, olderErr
		}
		if olderFound {
			result = append(result, older)
		}
	}

	return result, nil
}

// readPackageVersion builds the graph entry of one package version. The
// version comes from the directory name when given, otherwise from the
// package.json version, otherwise it is the Wildcard.
func readPackageVersion(
	dir, name string,
	pinned *entities.PackageVersion,
) (entities.DependencyGraphEntry, bool, error) {
	manifest, hasManifest, err := readPackageManifest(filepath.Join(dir, packageJSONFile))
	if err != nil {
		return entities.DependencyGraphEntry{}, false, err
	}
	if !hasManifest && !fileExists(filepath.Join(dir, declarationFile)) {
		return entities.DependencyGraphEntry{}, false, nil
	}

	version := entities.Wildcard
	switch {
	case pinned != nil:
		version = *pinned
	case hasManifest && manifest.Version != "":
		if parsed, parseErr := semver.NewVersion(manifest.Version); parseErr == nil {
			version = entities.NewExactVersion(int(parsed.Major()), int(parsed.Minor())) //nolint:gosec // versions are small
		}
	}

	entry := entities.DependencyGraphEntry{Identity: entities.NewPackageIdentity(name, version)}
	if hasManifest {
		entry.Dependencies = typesDependencies(manifest)
	}
	return entry, true, nil
}

func readPackageManifest(path string) (*packageManifest, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var manifest packageManifest
	if unmarshalErr := json.Unmarshal(data, &manifest); unmarshalErr != nil {
		return nil, false, fmt.Errorf("failed to parse %q: %w", path, unmarshalErr)
	}
	return &manifest, true, nil
}

// typesDependencies returns the "@types/..." dependencies of a manifest,
// runtime and development alike, sorted by key.
func typesDependencies(manifest *packageManifest) []entities.PackageIdentity {
	unique := make(map[string]entities.PackageIdentity)
	for _, deps := range []map[string]string{manifest.Dependencies, manifest.DevDependencies} {
		for npmName, versionRange := range deps {
			dir, ok := entities.DirectoryNameFromTypesPackage(npmName)
			if !ok {
				continue
			}
			id := entities.NewPackageIdentity(dir, parseDependencyRange(versionRange))
			unique[id.Key()] = id
		}
	}

	keys := make([]string, 0, len(unique))
	for key := range unique {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]entities.PackageIdentity, 0, len(keys))
	for _, key := range keys {
		result = append(result, unique[key])
	}
	return result
}

// parseDependencyRange maps an npm range onto a package version: "^2.1.0"
// and "2" pin the major, "~2.1.0", "2.1", "2.1.x" and exact versions pin
// major.minor, anything else is the Wildcard.
func parseDependencyRange(versionRange string) entities.PackageVersion {
	raw := strings.TrimSpace(strings.TrimPrefix(versionRange, workspaceProtocol))
	if raw == "" || raw == "*" || raw == "latest" {
		return entities.Wildcard
	}

	majorOnly := strings.HasPrefix(raw, "^")
	raw = strings.TrimLeft(raw, "^~=v")
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, ".x"), ".*")
	if !strings.Contains(raw, ".") {
		majorOnly = true
	}

	parsed, err := semver.NewVersion(raw)
	if err != nil {
		return entities.Wildcard
	}
	if majorOnly {
		return entities.NewMajorVersion(int(parsed.Major())) //nolint:gosec // versions are small
	}
	return entities.NewExactVersion(int(parsed.Major()), int(parsed.Minor())) //nolint:gosec // versions are small
}

// loadNotNeededPackages reads the deprecation manifest. A missing manifest
// means no package is deprecated.
func loadNotNeededPackages(path string) ([]entities.NotNeededPackage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debugf("[fsindex] %s not found, no deprecation records", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var manifest notNeededManifest
	if unmarshalErr := json.Unmarshal(data, &manifest); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, unmarshalErr)
	}

	names := make([]string, 0, len(manifest.Packages))
	for name := range manifest.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]entities.NotNeededPackage, 0, len(names))
	for _, name := range names {
		entry := manifest.Packages[name]
		record, recordErr := entities.NewNotNeededPackage(name, entry.LibraryName, entry.AsOfVersion)
		if recordErr != nil {
			return nil, fmt.Errorf("invalid entry in %q: %w", path, recordErr)
		}
		records = append(records, record)
	}
	return records, nil
}

func compileIgnoreFile(repoDir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(repoDir, gitignoreFile))
	if err != nil {
		return nil
	}
	return gi
}

func isIgnored(ignorer *ignore.GitIgnore, relPath string) bool {
	if ignorer == nil {
		return false
	}
	return ignorer.MatchesPath(filepath.ToSlash(relPath))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
