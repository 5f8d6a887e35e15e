package entities

import "sort"

// DependencyGraphEntry is one package version and the packages it declares
// as dependencies (runtime and development).
type DependencyGraphEntry struct {
	Identity     PackageIdentity
	Dependencies []PackageIdentity
}

// DependencyGraph is the read-only index of every package in the monorepo.
// Reverse edges are derived once at construction and are keyed by directory
// name. Edges pointing at packages that do not exist are kept so that the
// dependents of a deleted package can still be found.
type DependencyGraph struct {
	entries    map[string][]DependencyGraphEntry
	dependents map[string]map[string]struct{}
	notNeeded  map[string]NotNeededPackage
}

// NewDependencyGraph indexes the given entries and deprecation records.
func NewDependencyGraph(entries []DependencyGraphEntry, notNeeded []NotNeededPackage) *DependencyGraph {
	graph := &DependencyGraph{
		entries:    make(map[string][]DependencyGraphEntry),
		dependents: make(map[string]map[string]struct{}),
		notNeeded:  make(map[string]NotNeededPackage, len(notNeeded)),
	}

	for _, entry := range entries {
		dir := entry.Identity.DirectoryName
		graph.entries[dir] = append(graph.entries[dir], entry)

		for _, dep := range entry.Dependencies {
			if dep.DirectoryName == dir {
				continue // a package may use an older version of itself
			}
			if graph.dependents[dep.DirectoryName] == nil {
				graph.dependents[dep.DirectoryName] = make(map[string]struct{})
			}
			graph.dependents[dep.DirectoryName][dir] = struct{}{}
		}
	}

	for _, record := range notNeeded {
		graph.notNeeded[record.Name] = record
	}

	return graph
}

// Exists reports whether a package version matching the identity is present.
func (g *DependencyGraph) Exists(id PackageIdentity) bool {
	for _, entry := range g.entries[id.DirectoryName] {
		if entry.Identity.Equals(id) {
			return true
		}
	}
	return false
}

// HasTypings reports whether any version of the directory still has typings.
func (g *DependencyGraph) HasTypings(directoryName string) bool {
	return len(g.entries[directoryName]) > 0
}

// DependenciesOf returns the distinct dependencies declared by every version
// of the directory, sorted by key.
func (g *DependencyGraph) DependenciesOf(directoryName string) []PackageIdentity {
	unique := make(map[string]PackageIdentity)
	for _, entry := range g.entries[directoryName] {
		for _, dep := range entry.Dependencies {
			unique[dep.Key()] = dep
		}
	}
	return sortedIdentities(unique)
}

// DependentsOf returns the directory names that directly depend on any
// version of the given directory, sorted.
func (g *DependencyGraph) DependentsOf(directoryName string) []string {
	return SortedSet(g.dependents[directoryName])
}

// IsDeprecated reports whether the directory has a deprecation record.
func (g *DependencyGraph) IsDeprecated(directoryName string) bool {
	_, ok := g.notNeeded[directoryName]
	return ok
}

// NotNeededPackage returns the deprecation record of the directory.
func (g *DependencyGraph) NotNeededPackage(directoryName string) (NotNeededPackage, bool) {
	record, ok := g.notNeeded[directoryName]
	return record, ok
}

// DirectoryNames returns every directory that holds typings, sorted.
func (g *DependencyGraph) DirectoryNames() []string {
	names := make([]string, 0, len(g.entries))
	for name := range g.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
