//go:build unit

package fsindex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/infrastructure/repositories/fsindex"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func buildCheckout(t *testing.T) string {
	t.Helper()
	repoDir := t.TempDir()

	writeFile(t, filepath.Join(repoDir, ".gitignore"), "types/*/node_modules\n")
	writeFile(t, filepath.Join(repoDir, "types", "react", "index.d.ts"), "export {};\n")
	writeFile(t, filepath.Join(repoDir, "types", "react", "package.json"), `{
  "name": "@types/react",
  "version": "18.2.9999",
  "dependencies": {"@types/prop-types": "*", "csstype": "^3.0.2"},
  "devDependencies": {"@types/scheduler": "^0.16"}
}`)
	writeFile(t, filepath.Join(repoDir, "types", "react", "v16", "index.d.ts"), "export {};\n")
	writeFile(t, filepath.Join(repoDir, "types", "react", "v16", "package.json"), `{
  "name": "@types/react",
  "version": "16.14.9999",
  "dependencies": {"@types/prop-types": "*", "@types/missing": "~1.2.0"}
}`)
	writeFile(t, filepath.Join(repoDir, "types", "react", "node_modules", "v9", "index.d.ts"), "export {};\n")
	writeFile(t, filepath.Join(repoDir, "types", "prop-types", "index.d.ts"), "export {};\n")
	writeFile(t, filepath.Join(repoDir, "types", "empty-dir", "README.md"), "nothing here\n")
	writeFile(t, filepath.Join(repoDir, "notNeededPackages.json"), `{
  "packages": {
    "bar": {"libraryName": "lib-bar", "asOfVersion": "2.0.0"},
    "alpha": {"libraryName": "alpha", "asOfVersion": "1.0.0"}
  }
}`)
	return repoDir
}

func TestPackageIndexRepositoryLoad(t *testing.T) {
	t.Parallel()

	t.Run("should index every package version with its @types dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		repoDir := buildCheckout(t)
		repo := fsindex.NewPackageIndexRepository()

		// when
		graph, err := repo.Load(context.Background(), repoDir, "types", "notNeededPackages.json")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"prop-types", "react"}, graph.DirectoryNames())
		assert.True(t, graph.Exists(entities.NewPackageIdentity("react", entities.NewExactVersion(18, 2))))
		assert.True(t, graph.Exists(entities.NewPackageIdentity("react", entities.NewMajorVersion(16))))
		assert.False(t, graph.Exists(entities.NewPackageIdentity("react", entities.NewMajorVersion(9))))
		assert.Equal(t, []string{"react"}, graph.DependentsOf("prop-types"))
		assert.Equal(t, []string{"react"}, graph.DependentsOf("scheduler"))
		assert.Equal(t, []string{"react"}, graph.DependentsOf("missing"))
		assert.Empty(t, graph.DependentsOf("csstype"))
	})

	t.Run("should read the deprecation manifest", func(t *testing.T) {
		t.Parallel()

		// given
		repoDir := buildCheckout(t)
		repo := fsindex.NewPackageIndexRepository()

		// when
		graph, err := repo.Load(context.Background(), repoDir, "types", "notNeededPackages.json")

		// then
		require.NoError(t, err)
		record, ok := graph.NotNeededPackage("bar")
		assert.True(t, ok)
		assert.Equal(t, "lib-bar", record.LibraryName)
		assert.Equal(t, "2.0.0", record.Version)
		assert.True(t, graph.IsDeprecated("alpha"))
	})

	t.Run("should treat a missing deprecation manifest as empty", func(t *testing.T) {
		t.Parallel()

		// given
		repoDir := buildCheckout(t)
		repo := fsindex.NewPackageIndexRepository()

		// when
		graph, err := repo.Load(context.Background(), repoDir, "types", "missing.json")

		// then
		require.NoError(t, err)
		assert.False(t, graph.IsDeprecated("bar"))
	})

	t.Run("should reject an invalid deprecation record", func(t *testing.T) {
		t.Parallel()

		// given
		repoDir := buildCheckout(t)
		writeFile(t, filepath.Join(repoDir, "notNeededPackages.json"),
			`{"packages": {"bar": {"libraryName": "lib-bar", "asOfVersion": "soon"}}}`)
		repo := fsindex.NewPackageIndexRepository()

		// when
		_, err := repo.Load(context.Background(), repoDir, "types", "notNeededPackages.json")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid semantic version")
	})

	t.Run("should reject a deprecation record with a shorthand version", func(t *testing.T) {
		t.Parallel()

		// given
		repoDir := buildCheckout(t)
		writeFile(t, filepath.Join(repoDir, "notNeededPackages.json"),
			`{"packages": {"bar": {"libraryName": "lib-bar", "asOfVersion": "2"}}}`)
		repo := fsindex.NewPackageIndexRepository()

		// when
		_, err := repo.Load(context.Background(), repoDir, "types", "notNeededPackages.json")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `asOfVersion "2" is not a valid semantic version`)
	})

	t.Run("should fail on a malformed package.json", func(t *testing.T) {
		t.Parallel()

		// given
		repoDir := buildCheckout(t)
		writeFile(t, filepath.Join(repoDir, "types", "broken", "package.json"), "{")
		repo := fsindex.NewPackageIndexRepository()

		// when
		_, err := repo.Load(context.Background(), repoDir, "types", "notNeededPackages.json")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("should fail when the package root does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		repo := fsindex.NewPackageIndexRepository()

		// when
		_, err := repo.Load(context.Background(), t.TempDir(), "types", "notNeededPackages.json")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list package root")
	})
}

func TestParseDependencyRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "should treat a star as any version", input: "*", expected: "*"},
		{name: "should treat latest as any version", input: "latest", expected: "*"},
		{name: "should pin the major of a caret range", input: "^2.1.0", expected: "2"},
		{name: "should pin major and minor of a tilde range", input: "~2.1.0", expected: "2.1"},
		{name: "should pin the major of a bare major", input: "2", expected: "2"},
		{name: "should pin major and minor of an x-range", input: "2.1.x", expected: "2.1"},
		{name: "should strip the workspace protocol", input: "workspace:*", expected: "*"},
		{name: "should fall back to any version on garbage", input: ">=1 <3 || 5", expected: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			version := fsindex.ParseDependencyRange(tt.input)

			// then
			assert.Equal(t, tt.expected, version.String())
		})
	}
}
