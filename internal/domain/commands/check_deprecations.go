package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

const (
	latestDistTag      = "latest"
	defaultConcurrency = 8
)

// DeprecationContext carries the handles the deprecation checks share for
// one run. It is built once by the orchestrator.
type DeprecationContext struct {
	Index       repositories.PackageIndex
	Registry    repositories.RegistryRepository
	Concurrency int
}

// ValidateDeprecations runs the consistency check on the deleted packages
// and the registry check on every accepted deprecation record. Structural
// errors are returned as data; registry failures other than "not found"
// are returned as a fatal error.
func ValidateDeprecations(
	ctx context.Context,
	dctx DeprecationContext,
	changes *entities.PackageChangeSet,
) ([]string, error) {
	records, errs := GetNotNeededPackages(dctx.Index, changes)

	registryErrs, err := CheckNotNeededPackages(ctx, dctx, records)
	if err != nil {
		return nil, err
	}

	return append(errs, registryErrs...), nil
}

// GetNotNeededPackages returns the deprecation records introduced by the
// change-set. A deleted package that is marked deprecated while it still has
// typings is an error; a deleted package without a record is skipped.
func GetNotNeededPackages(
	index repositories.PackageIndex,
	changes *entities.PackageChangeSet,
) ([]entities.NotNeededPackage, []string) {
	var records []entities.NotNeededPackage
	var errs []string

	for _, name := range changes.DeletedDirectoryNames() {
		record, deprecated := index.NotNeededPackage(name)
		if !deprecated {
			continue
		}
		if index.HasTypings(name) {
			errs = append(errs, fmt.Sprintf(
				"Please delete all files in %s when adding it to notNeededPackages.json.", name,
			))
			continue
		}
		records = append(records, record)
	}

	return records, errs
}

// CheckNotNeededPackages runs CheckNotNeededPackage for every record with at
// most dctx.Concurrency registry checks in flight. Errors of one record stay
// together and in order; records are reported in input order.
func CheckNotNeededPackages(
	ctx context.Context,
	dctx DeprecationContext,
	records []entities.NotNeededPackage,
) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	limit := dctx.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	perRecord := make([][]string, len(records))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for i, record := range records {
		group.Go(func() error {
			errs, err := CheckNotNeededPackage(groupCtx, dctx.Registry, record)
			if err != nil {
				return fmt.Errorf("failed to check deprecation of %s: %w", record.FullTypesName(), err)
			}
			perRecord[i] = errs
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var errs []string
	for _, recordErrs := range perRecord {
		errs = append(errs, recordErrs...)
	}
	return errs, nil
}

// CheckNotNeededPackage verifies one deprecation record against the
// registry: the replacement must be published at the recorded version, and
// that version must be newer than the latest published typings.
func CheckNotNeededPackage(
	ctx context.Context,
	registry repositories.RegistryRepository,
	record entities.NotNeededPackage,
) ([]string, error) {
	var errs []string

	_, err := registry.Resolve(ctx, record.LibraryName, record.Version)
	switch {
	case errors.Is(err, entities.ErrPackageNotFound):
		errs = append(errs, fmt.Sprintf(
			"The entry for %s in notNeededPackages.json has \"libraryName\": \"%s\", but there is no npm package "+
				"with this name. Deprecated packages have to be replaced with a published package.",
			record.FullTypesName(), record.LibraryName,
		))
	case errors.Is(err, entities.ErrVersionNotFound):
		errs = append(errs, fmt.Sprintf(
			"The specified version %s of %s is not published on npm.", record.Version, record.LibraryName,
		))
	case err != nil:
		return nil, err
	}

	typings, err := registry.Resolve(ctx, record.FullTypesName(), latestDistTag)
	if errors.Is(err, entities.ErrPackageNotFound) || errors.Is(err, entities.ErrVersionNotFound) {
		errs = append(errs, fmt.Sprintf(
			"Unexpected error: no published version of %s found to compare against.", record.FullTypesName(),
		))
		return errs, nil
	}
	if err != nil {
		return nil, err
	}

	if !entities.IsNewerVersion(typings.Version, record.Version) {
		errs = append(errs, fmt.Sprintf(
			"The specified version %s of %s must be newer than the version it is supposed to replace, %s of %s.",
			record.Version, record.LibraryName, typings.Version, record.FullTypesName(),
		))
	}

	logger.Debugf("[deprecations] %s -> %s@%s checked", record.FullTypesName(), record.LibraryName, record.Version)
	return errs, nil
}
