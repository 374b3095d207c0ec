package updater

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/superclaude-org/superclaude/internal/logging"
)

// DefaultTimeout bounds one registry query.
const DefaultTimeout = 2 * time.Second

// CheckResult is the outcome of a version check.
type CheckResult struct {
	UpToDate         bool
	InstalledVersion string
	LatestVersion    string
	Source           string
	FromCache        bool
	Outcome          Outcome
}

// VersionChecker is implemented by Checker; the notifier depends on this.
type VersionChecker interface {
	Check(ctx context.Context, installed string) CheckResult
}

// Checker compares the installed version against a registry, consulting the
// cache file first. Each call is a function of the clock, the cache file and
// the registry response.
type Checker struct {
	registry  Registry
	cachePath string
	maxAge    time.Duration
	timeout   time.Duration
	now       func() time.Time
	force     bool
	log       zerolog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithNow sets the clock (useful for testing).
func WithNow(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		c.now = now
	}
}

// WithTimeout sets the registry query timeout.
func WithTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxAge sets how long a cache entry stays fresh.
func WithMaxAge(maxAge time.Duration) CheckerOption {
	return func(c *Checker) {
		c.maxAge = maxAge
	}
}

// WithForce skips the cache read; a successful query still rewrites it.
func WithForce(force bool) CheckerOption {
	return func(c *Checker) {
		c.force = force
	}
}

// NewChecker creates a Checker for registry backed by the cache file at cachePath.
func NewChecker(registry Registry, cachePath string, opts ...CheckerOption) *Checker {
	c := &Checker{
		registry:  registry,
		cachePath: cachePath,
		maxAge:    DefaultCacheMaxAge,
		timeout:   DefaultTimeout,
		now:       time.Now,
		log:       logging.Component("checker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check reports whether installed is the latest published version.
// A fresh cache entry answers without touching the network. Otherwise one
// registry query is made and, when it succeeds, the cache is overwritten.
// Every failure is soft: the result says up to date and Outcome carries the
// error.
func (c *Checker) Check(ctx context.Context, installed string) CheckResult {
	result := CheckResult{
		UpToDate:         true,
		InstalledVersion: installed,
		Source:           c.registry.Source(),
		Outcome:          OK(),
	}
	now := c.now()

	if !c.force {
		entry, err := LoadCache(c.cachePath)
		if err != nil {
			c.log.Debug().Err(err).Str("path", c.cachePath).Msg("ignoring unreadable version cache")
		}
		if IsCacheFresh(entry, now, c.maxAge) && ValidVersion(entry.LatestVersion) {
			result.FromCache = true
			result.LatestVersion = entry.LatestVersion
			return c.compare(result)
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	latest, err := c.registry.LatestVersion(queryCtx)
	if err != nil {
		c.log.Debug().Err(err).Str("source", result.Source).Msg("registry query failed")
		result.Outcome = Soft(err)
		return result
	}
	if !ValidVersion(latest) {
		err := &registryVersionError{version: latest}
		c.log.Debug().Err(err).Msg("registry returned an unparseable version")
		result.Outcome = Soft(err)
		return result
	}

	result.LatestVersion = latest
	entry := &VersionCacheEntry{
		LastChecked:   now.Unix(),
		LatestVersion: latest,
		Source:        result.Source,
	}
	if err := SaveCache(c.cachePath, entry); err != nil {
		c.log.Debug().Err(err).Str("path", c.cachePath).Msg("could not write version cache")
	}

	return c.compare(result)
}

func (c *Checker) compare(result CheckResult) CheckResult {
	available, err := IsUpdateAvailable(result.InstalledVersion, result.LatestVersion)
	if err != nil {
		// Development builds ("dev") land here.
		c.log.Debug().Err(err).Msg("skipping version comparison")
		result.Outcome = Soft(err)
		return result
	}
	result.UpToDate = !available
	return result
}

type registryVersionError struct {
	version string
}

func (e *registryVersionError) Error() string {
	return ErrRegistryParse.Error() + ": unparseable version " + e.version
}

func (e *registryVersionError) Unwrap() error {
	return ErrRegistryParse
}
