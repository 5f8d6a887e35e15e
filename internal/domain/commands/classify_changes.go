package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// directoryNamePattern accepts "foo", "foo.bar", "foo-bar" and scoped
// "scope__name" directories.
var directoryNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*(?:__[a-z0-9][a-z0-9._-]*)?$`)

// ClassifyChanges turns file events into package additions and deletions.
//
// Every path must follow "<root>/<dir>[/v<major>[.<minor>]]/<file...>".
// Paths that do not are reported as "unexpected file added/deleted" errors,
// in input order, and the change-set is discarded. Modified events are
// skipped. A rename is a deletion of its source followed by an addition of
// its target; for a given key the last recorded event wins.
func ClassifyChanges(root string, events []entities.FileChangeEvent) entities.ClassifyResult {
	root = strings.Trim(root, "/")
	changes := entities.NewPackageChangeSet()
	var errs []string

	add := func(path string) {
		if id, ok := packageFromPath(root, path); ok {
			changes.RecordAddition(id)
			return
		}
		errs = append(errs, fmt.Sprintf("unexpected file added: %s", path))
	}
	remove := func(path string) {
		if id, ok := packageFromPath(root, path); ok {
			changes.RecordDeletion(id)
			return
		}
		errs = append(errs, fmt.Sprintf("unexpected file deleted: %s", path))
	}

	for _, event := range events {
		switch e := event.(type) {
		case entities.Added:
			add(e.Path)
		case entities.Deleted:
			remove(e.Path)
		case entities.Renamed:
			remove(e.From)
			add(e.To)
		case entities.Modified:
			continue
		}
	}

	if len(errs) > 0 {
		return entities.ClassifyResult{Errors: errs}
	}
	return entities.ClassifyResult{Changes: changes}
}

// FilterPackageArea drops events outside "<root>/". A rename that crosses
// the boundary is reduced to the side inside the package area.
func FilterPackageArea(root string, events []entities.FileChangeEvent) []entities.FileChangeEvent {
	prefix := strings.Trim(root, "/") + "/"
	inside := func(path string) bool { return strings.HasPrefix(path, prefix) }

	filtered := make([]entities.FileChangeEvent, 0, len(events))
	for _, event := range events {
		switch e := event.(type) {
		case entities.Renamed:
			switch {
			case inside(e.From) && inside(e.To):
				filtered = append(filtered, e)
			case inside(e.From):
				filtered = append(filtered, entities.NewDeleted(e.From))
			case inside(e.To):
				filtered = append(filtered, entities.NewAdded(e.To))
			}
		default:
			if inside(event.Paths()[0]) {
				filtered = append(filtered, event)
			}
		}
	}
	return filtered
}

// packageFromPath maps a file path to the package that owns it.
func packageFromPath(root, path string) (entities.PackageIdentity, bool) {
	rest, ok := strings.CutPrefix(path, root+"/")
	if !ok {
		return entities.PackageIdentity{}, false
	}

	segments := strings.Split(rest, "/")
	if len(segments) < 2 || !directoryNamePattern.MatchString(segments[0]) { //nolint:mnd // dir + file
		return entities.PackageIdentity{}, false
	}
	for _, segment := range segments[1:] {
		if segment == "" {
			return entities.PackageIdentity{}, false
		}
	}

	version := entities.Wildcard
	if len(segments) > 2 { //nolint:mnd // a version directory needs a file below it
		if parsed, isVersion := entities.ParseVersionSegment(segments[1]); isVersion {
			version = parsed
		}
	}

	return entities.NewPackageIdentity(segments[0], version), true
}
