package entities

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPackageRoot         = "types"
	DefaultDeprecationManifest = "notNeededPackages.json"
	DefaultRegistryKind        = "npm"
	DefaultRegistryURL         = "https://registry.npmjs.org"
	DefaultDiffSource          = "git"
	DefaultBaseRevision        = "origin/master"
	DefaultHeadRevision        = "HEAD"

	defaultConcurrency       = 8
	defaultRequestsPerSecond = 10
	defaultRetryMax          = 3
	defaultRegistryTimeout   = 30 * time.Second
)

// Settings is the top-level configuration for monocheck.
type Settings struct {
	PackageRoot         string           `yaml:"package_root"         validate:"required,excludesall=\\"`
	DeprecationManifest string           `yaml:"deprecation_manifest" validate:"required"`
	Diff                DiffSettings     `yaml:"diff"`
	Registry            RegistrySettings `yaml:"registry"`
}

// DiffSettings selects where file-level changes come from.
type DiffSettings struct {
	Source string `yaml:"source" validate:"oneof=git patch"`
	Base   string `yaml:"base"`
	Head   string `yaml:"head"`
	Patch  string `yaml:"patch"` // patch file path, "-" for stdin
}

// RegistrySettings configures the npm registry client.
type RegistrySettings struct {
	Kind              string        `yaml:"kind"                validate:"required"`
	URL               string        `yaml:"url"                 validate:"required,url"`
	Token             string        `yaml:"token"`               // Inline, ${ENV_VAR}, or file path
	Concurrency       int           `yaml:"concurrency"         validate:"min=1,max=64"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
	RetryMax          int           `yaml:"retry_max"           validate:"min=0,max=10"`
	Timeout           time.Duration `yaml:"timeout"             validate:"gt=0"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the configuration used when no file is found.
func DefaultSettings() *Settings {
	return &Settings{
		PackageRoot:         DefaultPackageRoot,
		DeprecationManifest: DefaultDeprecationManifest,
		Diff: DiffSettings{
			Source: DefaultDiffSource,
			Base:   DefaultBaseRevision,
			Head:   DefaultHeadRevision,
		},
		Registry: RegistrySettings{
			Kind:              DefaultRegistryKind,
			URL:               DefaultRegistryURL,
			Concurrency:       defaultConcurrency,
			RequestsPerSecond: defaultRequestsPerSecond,
			RetryMax:          defaultRetryMax,
			Timeout:           defaultRegistryTimeout,
		},
	}
}

// NewSettings reads and parses a configuration file on top of the defaults,
// expanding environment variables and resolving token file paths.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	settings := DefaultSettings()
	if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Registry.Token = resolveToken(settings.Registry.Token)
	settings.PackageRoot = cleanRepoPath(settings.PackageRoot)
	settings.DeprecationManifest = cleanRepoPath(settings.DeprecationManifest)

	if validateErr := validateSettings(settings); validateErr != nil {
		return nil, validateErr
	}

	return settings, nil
}

// LoadSettings loads the given file, or the first file found in the default
// locations, or falls back to the defaults when there is none.
func LoadSettings(path string) (*Settings, error) {
	if path != "" {
		return NewSettings(path)
	}

	found, err := FindConfigFile()
	if err != nil {
		logger.Debugf("No config file found, using defaults: %v", err)
		return DefaultSettings(), nil
	}

	logger.Infof("Using config file: %s", found)
	return NewSettings(found)
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".monocheck.yaml",
		".monocheck.yml",
		"monocheck.yaml",
		"monocheck.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// cleanRepoPath puts a repository-relative path in the form diff paths use:
// slash separated, without "./" or trailing slashes.
func cleanRepoPath(raw string) string {
	if raw == "" {
		return raw
	}
	return path.Clean(filepath.ToSlash(raw))
}

// validateSettings checks struct constraints and the rules tags cannot express.
func validateSettings(settings *Settings) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(settings); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid setting %s: failed %q constraint", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid settings: %w", err)
	}

	if filepath.IsAbs(settings.PackageRoot) || strings.HasPrefix(filepath.Clean(settings.PackageRoot), "..") {
		return fmt.Errorf("package_root %q must be relative to the repository", settings.PackageRoot)
	}
	if settings.Diff.Source == "patch" && settings.Diff.Patch == "" {
		return errors.New("diff.patch is required when diff.source is \"patch\"")
	}

	return nil
}
