package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Registry sources, also used as cache file prefixes.
const (
	SourcePyPI = "pypi"
	SourceNPM  = "npm"
)

// maxResponseBytes caps registry responses; PyPI metadata for packages with
// many releases runs to a few hundred kilobytes.
const maxResponseBytes = 8 << 20

// Error variables for registry failures. Both are soft failures on the
// update-check path.
var (
	ErrRegistryUnreachable = errors.New("registry unreachable")
	ErrRegistryParse       = errors.New("unexpected registry response")
)

// Registry reports the latest published version of one package.
type Registry interface {
	// Source identifies the registry ("pypi" or "npm").
	Source() string
	// LatestVersion queries the registry.
	LatestVersion(ctx context.Context) (string, error)
}

// PyPIRegistry queries the PyPI JSON API.
type PyPIRegistry struct {
	baseURL    string
	pkg        string
	httpClient *http.Client
}

// NewPyPIRegistry creates a PyPI client. A nil client means http.DefaultClient.
func NewPyPIRegistry(baseURL, pkg string, client *http.Client) *PyPIRegistry {
	if client == nil {
		client = http.DefaultClient
	}
	return &PyPIRegistry{baseURL: strings.TrimRight(baseURL, "/"), pkg: pkg, httpClient: client}
}

// Source returns "pypi".
func (r *PyPIRegistry) Source() string { return SourcePyPI }

// LatestVersion reads info.version from /pypi/<pkg>/json.
func (r *PyPIRegistry) LatestVersion(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, r.pkg)

	var body struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
	if err := fetchJSON(ctx, r.httpClient, url, &body); err != nil {
		return "", err
	}
	if body.Info.Version == "" {
		return "", fmt.Errorf("%w: info.version missing", ErrRegistryParse)
	}
	return body.Info.Version, nil
}

// NPMRegistry queries the npm registry's dist-tag endpoint.
type NPMRegistry struct {
	baseURL    string
	pkg        string
	httpClient *http.Client
}

// NewNPMRegistry creates an npm client. A nil client means http.DefaultClient.
func NewNPMRegistry(baseURL, pkg string, client *http.Client) *NPMRegistry {
	if client == nil {
		client = http.DefaultClient
	}
	return &NPMRegistry{baseURL: strings.TrimRight(baseURL, "/"), pkg: pkg, httpClient: client}
}

// Source returns "npm".
func (r *NPMRegistry) Source() string { return SourceNPM }

// LatestVersion reads version from /<pkg>/latest. Scoped names have their
// slash encoded as %2F.
func (r *NPMRegistry) LatestVersion(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/%s/latest", r.baseURL, strings.ReplaceAll(r.pkg, "/", "%2F"))

	var body struct {
		Version string `json:"version"`
	}
	if err := fetchJSON(ctx, r.httpClient, url, &body); err != nil {
		return "", err
	}
	if body.Version == "" {
		return "", fmt.Errorf("%w: version missing", ErrRegistryParse)
	}
	return body.Version, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "superclaude-update-checker")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRegistryUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response body: %v", ErrRegistryUnreachable, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryParse, err)
	}
	return nil
}
