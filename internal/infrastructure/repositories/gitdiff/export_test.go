package gitdiff

// ChangesBetween exports changesBetween for testing.
var ChangesBetween = changesBetween //nolint:gochecknoglobals // test export

// CheckedOutRoot exports checkedOutRoot for testing.
var CheckedOutRoot = checkedOutRoot //nolint:gochecknoglobals // test export
