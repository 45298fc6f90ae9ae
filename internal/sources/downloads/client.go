// Package downloads is the client for the vendor download API, which answers
// GET <endpoint>?platform=<id>&releaseTrack=<latest|version> with
// {"downloadUrl": "..."}.
package downloads

import (
	"context"
	"net/url"

	"github.com/agentstation/releasemap/internal/transport"
	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
)

// ProviderName identifies the download API in errors and logs.
const ProviderName = "download-api"

type downloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// Client queries the download API.
type Client struct {
	endpoint  string
	transport *transport.Client
}

// NewClient returns a client for endpoint. An empty endpoint uses the default.
func NewClient(endpoint string, tc *transport.Client) *Client {
	if endpoint == "" {
		endpoint = constants.DefaultDownloadEndpoint
	}
	if tc == nil {
		tc = transport.New()
	}
	return &Client{endpoint: endpoint, transport: tc}
}

// Endpoint returns the API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Latest returns the current download URL for platform.
func (c *Client) Latest(ctx context.Context, platform releases.Platform) (string, error) {
	return c.fetch(ctx, platform, constants.ReleaseTrackLatest)
}

// Version returns the download URL for platform at a specific version.
func (c *Client) Version(ctx context.Context, platform releases.Platform, version string) (string, error) {
	if version == "" {
		return "", &errors.ValidationError{Field: "version", Message: "is required"}
	}
	return c.fetch(ctx, platform, version)
}

func (c *Client) fetch(ctx context.Context, platform releases.Platform, track string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", &errors.ConfigError{Component: "download_endpoint", Message: "invalid url", Err: err}
	}
	q := u.Query()
	q.Set("platform", platform.String())
	q.Set("releaseTrack", track)
	u.RawQuery = q.Encode()

	resp, err := c.transport.Get(ctx, u.String())
	if err != nil {
		return "", errors.WrapAPI(ProviderName, 0, err)
	}

	var body downloadResponse
	if err := transport.DecodeResponse(resp, ProviderName, &body); err != nil {
		return "", err
	}
	if body.DownloadURL == "" {
		return "", errors.NewNotFoundError("download url", platform.String()+"@"+track)
	}

	logging.FromContext(ctx).Debug().
		Str("platform", platform.String()).
		Str("release_track", track).
		Str("url", body.DownloadURL).
		Msg("Fetched download URL")
	return body.DownloadURL, nil
}

// Snapshot is the latest URL of every platform, keyed by platform.
// Platforms whose lookup failed are absent.
type Snapshot map[releases.Platform]string

// URLs returns the snapshot's URLs in table order.
func (s Snapshot) URLs(table releases.PlatformTable) []string {
	var out []string
	for _, p := range table.All() {
		if u, ok := s[p]; ok {
			out = append(out, u)
		}
	}
	return out
}

// LatestFetcher returns the current download URL of one platform.
type LatestFetcher interface {
	Latest(ctx context.Context, platform releases.Platform) (string, error)
}

// LatestAll fetches the latest URL for every platform in table, one request
// at a time. A failed platform is logged and left out.
func LatestAll(ctx context.Context, src LatestFetcher, table releases.PlatformTable) Snapshot {
	snap := make(Snapshot)
	for _, p := range table.All() {
		u, err := src.Latest(ctx, p)
		if err != nil {
			event := logging.FromContext(ctx).Warn().Err(err).Str("platform", p.String())
			if errors.IsRateLimited(err) {
				event = event.Bool("rate_limited", true)
			}
			event.Msg("Error fetching download URL, continuing without it")
			continue
		}
		snap[p] = u
	}
	logging.FromContext(ctx).Debug().
		Int("fetched", len(snap)).
		Int("platforms", len(table.All())).
		Msg("Fetched latest download URLs")
	return snap
}
