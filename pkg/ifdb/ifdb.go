// Package ifdb is the client for the remote metadata source
// (https://ifdb.tads.org). Network failure and "not found" both yield nil
// results; callers don't distinguish them.
package ifdb

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Sentinel bodies IFDB serves with a 200 status instead of an error.
var notFoundBodies = [][]byte{
	[]byte("No game was found matching the requested IFID."),
	[]byte("No image is available"),
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds a client whose fetches are paced to the configured
// requests-per-minute. Zero or negative requests-per-minute disables
// pacing.
func New(cfg config.IFDB) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{},
		limiter:    limiter,
	}
}

// FetchOptions identifies a story remotely by IFID or TUID; exactly one
// should be set, IFID winning when both are.
type FetchOptions struct {
	IFID string
	TUID string
}

// FetchMetadata fetches the ifiction record for a story. A nil story node
// with a nil error means the remote source had nothing (or was
// unreachable).
func (c *Client) FetchMetadata(ctx context.Context, opts FetchOptions) (*ifiction.StoryNode, error) {
	if opts.IFID == "" && opts.TUID == "" {
		return nil, errors.New("no IFID or TUID set")
	}

	query := url.Values{}
	query.Set("ifiction", "")
	if opts.IFID != "" {
		query.Set("ifid", opts.IFID)
	} else {
		query.Set("id", opts.TUID)
	}

	body, err := c.get(ctx, query)
	if err != nil || body == nil {
		return nil, err
	}

	doc, err := ifiction.Parse(body)
	if err != nil {
		// A malformed response is treated the same as no response.
		return nil, nil
	}
	if len(doc.Stories) == 0 {
		return nil, nil
	}
	story := doc.Stories[0]
	story.MergeExtraAnnotations()
	return story, nil
}

// CoverOptions locates cover art by direct URL, TUID, or IFID, checked in
// that order.
type CoverOptions struct {
	URL  string
	TUID string
	IFID string
}

// FetchCover fetches cover art bytes, or nil when the remote source has
// none.
func (c *Client) FetchCover(ctx context.Context, opts CoverOptions) ([]byte, error) {
	if opts.URL != "" {
		return c.getURL(ctx, opts.URL)
	}

	query := url.Values{}
	query.Set("ifiction", "")
	query.Set("coverart", "")
	switch {
	case opts.TUID != "":
		query.Set("id", opts.TUID)
	case opts.IFID != "":
		query.Set("ifid", opts.IFID)
	default:
		return nil, nil
	}

	return c.get(ctx, query)
}

func (c *Client) get(ctx context.Context, query url.Values) ([]byte, error) {
	return c.getURL(ctx, c.baseURL+"/viewgame?"+query.Encode())
}

func (c *Client) getURL(ctx context.Context, rawURL string) ([]byte, error) {
	// The pacer spaces out remote fetches to respect IFDB's rate limit; a
	// cancelled wait is the only error surfaced from this client.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil //nolint:nilerr // network failure reads as "nothing found"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	for _, sentinel := range notFoundBodies {
		if bytes.Equal(bytes.TrimSpace(body), sentinel) {
			return nil, nil
		}
	}
	if len(body) == 0 {
		return nil, nil
	}

	return body, nil
}
