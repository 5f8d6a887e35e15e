package fsindex

// ParseDependencyRange exports parseDependencyRange for testing.
var ParseDependencyRange = parseDependencyRange //nolint:gochecknoglobals // test export
