package commands

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

// ResolveAffected computes the packages that must be re-validated for a
// change-set: the directly changed directories plus every directory that
// transitively depends on one of them.
//
// The traversal is a breadth-first walk over reverse dependency edges with a
// visited set, so cycles terminate and nothing is counted twice. Seeds and
// neighbours are visited in sorted order, which keeps the walk deterministic.
// A visited package that declares a dependency missing from the index yields
// a warning instead of an error.
func ResolveAffected(
	changes *entities.PackageChangeSet,
	index repositories.PackageIndex,
	snapshot string,
) *entities.AffectedResult {
	direct := changes.DirectoryNames()

	packageNames := make(map[string]struct{}, len(direct))
	visited := make(map[string]struct{}, len(direct))
	queue := make([]string, 0, len(direct))
	for _, name := range direct {
		packageNames[name] = struct{}{}
		visited[name] = struct{}{}
		queue = append(queue, name)
	}

	var warnings []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		warnings = append(warnings, danglingDependencies(index, current)...)

		for _, dependent := range index.DependentsOf(current) {
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = struct{}{}
			queue = append(queue, dependent)
		}
	}

	dependents := make(map[string]struct{}, len(visited))
	for name := range visited {
		if _, isDirect := packageNames[name]; !isDirect {
			dependents[name] = struct{}{}
		}
	}

	logger.WithField("snapshot", snapshot).Debugf(
		"Resolved %d changed packages and %d dependents", len(packageNames), len(dependents),
	)

	return &entities.AffectedResult{
		PackageNames: packageNames,
		Dependents:   dependents,
		Warnings:     warnings,
	}
}

// danglingDependencies lists the declared dependencies of a package that
// are not present in the index. Packages without typings are skipped: their
// own removal is the change being evaluated.
func danglingDependencies(index repositories.PackageIndex, directoryName string) []string {
	if !index.HasTypings(directoryName) {
		return nil
	}

	var warnings []string
	for _, dep := range index.DependenciesOf(directoryName) {
		if !index.Exists(dep) {
			warnings = append(warnings, fmt.Sprintf(
				"%s depends on %s, which does not exist", directoryName, dep,
			))
		}
	}
	return warnings
}
