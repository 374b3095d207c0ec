package updater

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/superclaude-org/superclaude/internal/platform"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCacheMaxAge is the default maximum age for the version cache.
const DefaultCacheMaxAge = 24 * time.Hour

// ErrInvalidCache is returned when a cache file exists but does not hold a
// valid entry. Callers treat it as a missing cache.
var ErrInvalidCache = errors.New("invalid version cache")

//go:embed schema/cache.schema.json
var cacheSchemaBytes []byte

var (
	cacheSchema     *jsonschema.Schema
	cacheSchemaOnce sync.Once
	cacheSchemaErr  error
	printer         = message.NewPrinter(language.English)
)

// VersionCacheEntry holds the last known registry version for one source.
type VersionCacheEntry struct {
	LastChecked   int64  `json:"last_checked"`
	LatestVersion string `json:"latest_version"`
	Source        string `json:"source"`
}

// CheckedAt returns LastChecked as a time.
func (e *VersionCacheEntry) CheckedAt() time.Time {
	return time.Unix(e.LastChecked, 0)
}

// CacheFileName returns the cache file name for a registry source,
// e.g. "pypi-version-check.json".
func CacheFileName(source string) string {
	return source + "-version-check.json"
}

// CachePath returns the cache file path for source inside dir.
func CachePath(dir, source string) string {
	return filepath.Join(dir, CacheFileName(source))
}

// ValidationIssue is one schema violation found in a cache file.
type ValidationIssue struct {
	Path    string
	Message string
}

// LoadCache reads the cache entry at path.
// Returns nil, nil if the file does not exist (first run). A file that is
// not JSON or violates the cache schema yields ErrInvalidCache.
func LoadCache(path string) (*VersionCacheEntry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version cache: %w", err)
	}

	issues, err := ValidateCache(data)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidCache, issues[0].Path, issues[0].Message)
	}

	var entry VersionCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCache, err)
	}
	return &entry, nil
}

// SaveCache overwrites the cache file at path with entry.
func SaveCache(path string, entry *VersionCacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}
	if err := platform.WriteFileAtomic(path, data, platform.FilePermNormal); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}

// IsCacheFresh reports whether entry was written less than maxAge before now.
// Entries stamped in the future are treated as stale.
func IsCacheFresh(entry *VersionCacheEntry, now time.Time, maxAge time.Duration) bool {
	if entry == nil {
		return false
	}
	age := now.Sub(entry.CheckedAt())
	return age >= 0 && age < maxAge
}

// ValidateCache checks raw cache bytes against the embedded schema. The
// error return is for schema compilation failures and non-JSON input;
// schema violations come back as issues.
func ValidateCache(data []byte) ([]ValidationIssue, error) {
	schema, err := getCacheSchema()
	if err != nil {
		return nil, fmt.Errorf("loading cache schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCache, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	var issues []ValidationIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		issues = append(issues, ValidationIssue{Message: ve.Error()})
	}
	return issues, nil
}

func getCacheSchema() (*jsonschema.Schema, error) {
	cacheSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(cacheSchemaBytes))
		if err != nil {
			cacheSchemaErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("cache.schema.json", doc); err != nil {
			cacheSchemaErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		cacheSchema, cacheSchemaErr = c.Compile("cache.schema.json")
		if cacheSchemaErr != nil {
			cacheSchemaErr = fmt.Errorf("compiling schema: %w", cacheSchemaErr)
		}
	})
	return cacheSchema, cacheSchemaErr
}

// collectIssues walks the error tree and keeps leaf errors.
func collectIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		msg := ve.Error()
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}
		*issues = append(*issues, ValidationIssue{Path: path, Message: msg})
		return
	}
	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}
