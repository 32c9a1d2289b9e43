package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/port"
)

const (
	// LegacyProject hosts assets addressed by bare ids such as "users/x/y".
	LegacyProject = "projects/earthengine-legacy/assets/"

	// DefaultEndpoint is the Earth Engine REST root.
	DefaultEndpoint = "https://earthengine.googleapis.com/"

	// Scope is the OAuth2 scope the catalog calls require.
	Scope = "https://www.googleapis.com/auth/earthengine"
)

type eeClient struct {
	http         *http.Client
	base         string
	quotaProject string
}

// NewEEClient creates an Earth Engine REST backed AssetCatalog. It authenticates
// with cfg.CredentialsFile when set and application default credentials
// otherwise.
func NewEEClient(ctx context.Context, cfg *config.EarthEngineConfig) (port.AssetCatalog, error) {
	var (
		hc  *http.Client
		err error
	)
	if cfg.CredentialsFile != "" {
		hc, err = clientFromFile(ctx, cfg.CredentialsFile)
	} else {
		hc, err = google.DefaultClient(ctx, Scope)
	}
	if err != nil {
		return nil, fmt.Errorf("creating earth engine client: %w", err)
	}
	return NewEEClientWithHTTPClient(cfg, hc), nil
}

// NewEEClientWithHTTPClient creates an AssetCatalog that sends requests through
// hc as is. The caller is responsible for authentication.
func NewEEClientWithHTTPClient(cfg *config.EarthEngineConfig, hc *http.Client) port.AssetCatalog {
	base := cfg.Endpoint
	if base == "" {
		base = DefaultEndpoint
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &eeClient{http: hc, base: base, quotaProject: cfg.Project}
}

func clientFromFile(ctx context.Context, path string) (*http.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, Scope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}

// AssetName converts an asset id into its REST resource name. Ids already in
// "projects/..." form are returned without a trailing slash.
func AssetName(id string) string {
	id = strings.Trim(id, "/")
	if strings.HasPrefix(id, "projects/") {
		return id
	}
	return LegacyProject + id
}

type restAsset struct {
	Name       string `json:"name"`
	ID         string `json:"id"`
	Type       string `json:"type"`
	UpdateTime string `json:"updateTime"`
}

type listAssetsResponse struct {
	Assets        []restAsset `json:"assets"`
	NextPageToken string      `json:"nextPageToken"`
}

func (c *eeClient) ListAssets(ctx context.Context, parent string) ([]domain.Asset, error) {
	var (
		assets []domain.Asset
		token  string
	)
	for {
		q := url.Values{}
		if token != "" {
			q.Set("pageToken", token)
		}

		var page listAssetsResponse
		if err := c.do(ctx, http.MethodGet, AssetName(parent)+":listAssets", q, nil, &page); err != nil {
			return nil, mapError("earth engine list", err)
		}
		for _, a := range page.Assets {
			assets = append(assets, toAsset(a))
		}

		if page.NextPageToken == "" {
			return assets, nil
		}
		token = page.NextPageToken
	}
}

func (c *eeClient) CopyAsset(ctx context.Context, source, destination string) error {
	body := map[string]string{"destinationName": AssetName(destination)}
	if err := c.do(ctx, http.MethodPost, AssetName(source)+":copy", nil, body, nil); err != nil {
		return mapError("earth engine copy", err)
	}
	return nil
}

func (c *eeClient) DeleteAsset(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, AssetName(name), nil, nil, nil); err != nil {
		return mapError("earth engine delete", err)
	}
	return nil
}

// do sends one v1 call for the resource name and decodes a JSON reply into out
// when out is non-nil.
func (c *eeClient) do(ctx context.Context, method, name string, query url.Values, in, out any) error {
	u := c.base + "v1/" + escapeName(name)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.quotaProject != "" {
		req.Header.Set("X-Goog-User-Project", c.quotaProject)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer googleapi.CloseBody(resp)

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// escapeName escapes each path segment of a resource name, keeping the
// separating slashes and any ":verb" suffix intact.
func escapeName(name string) string {
	verb := ""
	if i := strings.LastIndex(name, ":"); i > strings.LastIndex(name, "/") {
		name, verb = name[:i], name[i:]
	}
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/") + verb
}

func toAsset(a restAsset) domain.Asset {
	id := a.ID
	if id == "" {
		id = strings.TrimPrefix(a.Name, LegacyProject)
	}
	out := domain.Asset{ID: id, Name: a.Name, Type: a.Type}
	if t, err := time.Parse(time.RFC3339Nano, a.UpdateTime); err == nil {
		out.UpdateTime = t
	}
	return out
}

func mapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
