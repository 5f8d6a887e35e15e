package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

const (
	// Kind is the registry kind this client is registered under.
	Kind = "npm"

	abbreviatedMetadata = "application/vnd.npm.install-v1+json"
	maxBodyBytes        = 32 << 20
	retryWaitMin        = 200 * time.Millisecond
	retryWaitMax        = 5 * time.Second
)

// RegistryRepository resolves packages against an npm-compatible registry.
type RegistryRepository struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	token   string
}

// packument is the abbreviated npm package document.
type packument struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]packumentRecord `json:"versions"`
}

type packumentRecord struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewRegistryRepository creates a registry client from the given settings.
func NewRegistryRepository(settings entities.RegistrySettings) repositories.RegistryRepository {
	client := retryablehttp.NewClient()
	client.RetryMax = settings.RetryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.HTTPClient.Timeout = settings.Timeout
	client.Logger = &leveledLogger{entry: logger.WithField("registry", settings.URL)}

	burst := int(settings.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &RegistryRepository{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst),
		baseURL: strings.TrimSuffix(settings.URL, "/"),
		token:   settings.Token,
	}
}

// Resolve looks the name up and picks the manifest for versionOrRange, which
// may be a dist-tag ("latest"), an exact version or a semver range. Ranges
// resolve to the highest satisfying version.
func (r *RegistryRepository) Resolve(
	ctx context.Context,
	name, versionOrRange string,
) (*entities.ManifestSummary, error) {
	doc, err := r.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	version, err := pickVersion(doc, versionOrRange)
	if err != nil {
		return nil, fmt.Errorf("%s@%s: %w", name, versionOrRange, err)
	}

	logger.Debugf("[npm] Resolved %s@%s to %s", name, versionOrRange, version)
	return &entities.ManifestSummary{Name: name, Version: version}, nil
}

func (r *RegistryRepository) fetch(ctx context.Context, name string) (*packument, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+escapeName(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", abbreviatedMetadata)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", name, entities.ErrPackageNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", name, resp.StatusCode)
	}

	var doc packument
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&doc); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, decodeErr)
	}
	return &doc, nil
}

func pickVersion(doc *packument, versionOrRange string) (string, error) {
	if tagged, ok := doc.DistTags[versionOrRange]; ok {
		return tagged, nil
	}
	if record, ok := doc.Versions[versionOrRange]; ok {
		return record.Version, nil
	}

	constraint, err := semver.NewConstraint(versionOrRange)
	if err != nil {
		return "", entities.ErrVersionNotFound
	}

	var best *semver.Version
	for raw := range doc.Versions {
		candidate, parseErr := semver.NewVersion(raw)
		if parseErr != nil || !constraint.Check(candidate) {
			continue
		}
		if best == nil || candidate.GreaterThan(best) {
			best = candidate
		}
	}
	if best == nil {
		return "", entities.ErrVersionNotFound
	}
	return best.Original(), nil
}

// escapeName keeps the "@" of scoped names and escapes the separator, the
// way the npm CLI requests "@scope%2fname".
func escapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		return "@" + url.PathEscape(name[1:])
	}
	return url.PathEscape(name)
}

// leveledLogger adapts logrus to retryablehttp.LeveledLogger.
type leveledLogger struct {
	entry *logger.Entry
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Error(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Trace(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Warn(msg)
}

func (l *leveledLogger) with(keysAndValues []interface{}) *logger.Entry {
	fields := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}
