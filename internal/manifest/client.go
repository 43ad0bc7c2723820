package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultIndexURL is the public version manifest.
const DefaultIndexURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient returns an HTTPClient using http.DefaultClient.
type DefaultHTTPClient struct{}

func (DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

// Client fetches version index, version descriptor and asset index documents.
// It neither caches nor retries; callers decide both.
type Client struct {
	HTTP     HTTPClient
	IndexURL string        // defaults to DefaultIndexURL
	Timeout  time.Duration // per request (0 = no extra timeout beyond context)
	MaxSize  int64         // max document size in bytes (0 = no limit)
}

// NetworkError reports a failed HTTP exchange.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
	Hint       string
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("fetching %s: %s", e.URL, e.Err)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a version identifier absent from the index.
type NotFoundError struct {
	VersionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("version '%s' not found in version index", e.VersionID)
}

// FetchIndex fetches the version index.
func (c *Client) FetchIndex(ctx context.Context) (*VersionIndex, error) {
	url := c.IndexURL
	if url == "" {
		url = DefaultIndexURL
	}
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var idx VersionIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing version index %s: %w", url, err)
	}
	return &idx, nil
}

// FetchDescriptor fetches the descriptor for versionID, located by exact
// identifier match in the version index.
func (c *Client) FetchDescriptor(ctx context.Context, versionID string) (*VersionDescriptor, error) {
	idx, err := c.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := idx.Lookup(versionID)
	if !ok {
		return nil, &NotFoundError{VersionID: versionID}
	}
	data, err := c.get(ctx, entry.URL)
	if err != nil {
		return nil, err
	}
	desc, err := ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("version %s: %w", versionID, err)
	}
	if desc.ID != versionID {
		return nil, fmt.Errorf("version %s: descriptor declares id '%s'", versionID, desc.ID)
	}
	return desc, nil
}

// FetchAssetIndex fetches the asset index a descriptor points at.
func (c *Client) FetchAssetIndex(ctx context.Context, ref AssetIndexRef) (*AssetIndex, error) {
	if ref.URL == "" {
		return nil, fmt.Errorf("asset index '%s' has no url", ref.ID)
	}
	data, err := c.get(ctx, ref.URL)
	if err != nil {
		return nil, err
	}
	idx, err := ParseAssetIndex(data)
	if err != nil {
		return nil, fmt.Errorf("asset index %s: %w", ref.ID, err)
	}
	return idx, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	client := c.HTTP
	if client == nil {
		client = DefaultHTTPClient{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err, Hint: "check network connectivity"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var reader io.Reader = resp.Body
	if c.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, c.MaxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}
	if c.MaxSize > 0 && int64(len(data)) > c.MaxSize {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("document exceeds max size %d bytes", c.MaxSize)}
	}
	return data, nil
}
