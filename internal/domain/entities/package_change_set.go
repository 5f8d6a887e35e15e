package entities

import "sort"

// PackageChangeSet holds the package-level additions and deletions derived
// from a diff. A key lives in at most one of the two sets: recording it on
// one side removes it from the other, so the last event for a key wins.
type PackageChangeSet struct {
	deletions map[string]PackageIdentity
	additions map[string]PackageIdentity
}

// NewPackageChangeSet creates an empty change-set.
func NewPackageChangeSet() *PackageChangeSet {
	return &PackageChangeSet{
		deletions: make(map[string]PackageIdentity),
		additions: make(map[string]PackageIdentity),
	}
}

// RecordAddition stores the identity as added, overriding any deletion.
func (s *PackageChangeSet) RecordAddition(id PackageIdentity) {
	key := id.Key()
	delete(s.deletions, key)
	s.additions[key] = id
}

// RecordDeletion stores the identity as deleted, overriding any addition.
func (s *PackageChangeSet) RecordDeletion(id PackageIdentity) {
	key := id.Key()
	delete(s.additions, key)
	s.deletions[key] = id
}

// Additions returns the added identities sorted by key.
func (s *PackageChangeSet) Additions() []PackageIdentity {
	return sortedIdentities(s.additions)
}

// Deletions returns the deleted identities sorted by key.
func (s *PackageChangeSet) Deletions() []PackageIdentity {
	return sortedIdentities(s.deletions)
}

// IsEmpty reports whether no package was added or deleted.
func (s *PackageChangeSet) IsEmpty() bool {
	return len(s.additions) == 0 && len(s.deletions) == 0
}

// DirectoryNames returns the distinct directory names of every changed
// package, sorted.
func (s *PackageChangeSet) DirectoryNames() []string {
	seen := make(map[string]struct{}, len(s.additions)+len(s.deletions))
	for _, id := range s.additions {
		seen[id.DirectoryName] = struct{}{}
	}
	for _, id := range s.deletions {
		seen[id.DirectoryName] = struct{}{}
	}
	return SortedSet(seen)
}

// DeletedDirectoryNames returns the distinct directory names of deleted
// packages, sorted.
func (s *PackageChangeSet) DeletedDirectoryNames() []string {
	seen := make(map[string]struct{}, len(s.deletions))
	for _, id := range s.deletions {
		seen[id.DirectoryName] = struct{}{}
	}
	return SortedSet(seen)
}

func sortedIdentities(set map[string]PackageIdentity) []PackageIdentity {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]PackageIdentity, 0, len(keys))
	for _, key := range keys {
		result = append(result, set[key])
	}
	return result
}

// SortedSet returns the members of a string set in ascending order.
func SortedSet(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for member := range set {
		result = append(result, member)
	}
	sort.Strings(result)
	return result
}
