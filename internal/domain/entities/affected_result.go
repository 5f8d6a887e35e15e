package entities

// ClassifyResult is the outcome of turning file events into package changes.
// When Errors is non-empty Changes is nil: partial results are never exposed.
type ClassifyResult struct {
	Errors  []string
	Changes *PackageChangeSet
}

// IsError reports whether classification rejected the change-set.
func (r ClassifyResult) IsError() bool { return len(r.Errors) > 0 }

// AffectedResult is either a batch of human-readable errors or the directly
// changed package names plus every package that transitively depends on
// them. Warnings carries non-blocking notes such as dangling dependencies.
type AffectedResult struct {
	Errors       []string
	PackageNames map[string]struct{}
	Dependents   map[string]struct{}
	Warnings     []string
}

// NewAffectedErrors builds the error variant.
func NewAffectedErrors(errs []string) *AffectedResult {
	return &AffectedResult{Errors: errs}
}

// IsError reports whether the change-set was rejected.
func (r *AffectedResult) IsError() bool { return len(r.Errors) > 0 }

// SortedPackageNames returns the directly changed package names in order.
func (r *AffectedResult) SortedPackageNames() []string { return SortedSet(r.PackageNames) }

// SortedDependents returns the dependent package names in order.
func (r *AffectedResult) SortedDependents() []string { return SortedSet(r.Dependents) }
