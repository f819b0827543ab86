package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the TMDB v3 API root
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBase is the image CDN root used when none is configured
	DefaultImageBase = "https://image.tmdb.org/t/p"
	// DefaultLanguage is sent with every request unless overridden
	DefaultLanguage = "en-US"
)

// Credentials holds the values read from configuration
type Credentials struct {
	Token     string
	ImageBase string
}

// Client represents a TMDB API client
type Client struct {
	baseURL    string
	token      string
	imageBase  string
	language   string
	httpClient *http.Client
	inflight   singleflight.Group
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a new TMDB client. No request is made here; a missing
// token is reported by each call instead.
func NewClient(creds Credentials, logger zerolog.Logger, opts ...Option) *Client {
	imageBase := strings.TrimRight(creds.ImageBase, "/")
	if imageBase == "" {
		imageBase = DefaultImageBase
	}

	client := &Client{
		baseURL:   DefaultBaseURL,
		token:     strings.TrimSpace(creds.Token),
		imageBase: imageBase,
		language:  DefaultLanguage,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// HasCredential reports whether a token is configured
func (c *Client) HasCredential() bool {
	return c.token != ""
}

// buildURL joins the base URL, path and encoded parameters
func (c *Client) buildURL(path string, params any) (string, error) {
	values, err := encodeParams(params)
	if err != nil {
		return "", err
	}

	u := c.baseURL + path
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	return u, nil
}

// doRequest performs an authenticated GET and returns the body of a 2xx
// response. Identical requests in flight at the same time share one call.
// The shared call is detached from any single caller's cancellation and is
// bounded by the HTTP client timeout; each caller still returns as soon as
// its own context is done.
func (c *Client) doRequest(ctx context.Context, path string, params any) ([]byte, error) {
	if c.token == "" {
		return nil, ErrMissingCredential
	}

	requestURL, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	ch := c.inflight.DoChan(requestURL, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), path, requestURL)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug().Str("path", path).Msg("Shared in-flight TMDB request")
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) fetch(ctx context.Context, path, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("path", path).
		Str("query", req.URL.RawQuery).
		Msg("Making TMDB API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: http.MethodGet, URL: redact(req.URL), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "read", URL: redact(req.URL), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// getJSON performs a request and decodes the response into out
func (c *Client) getJSON(ctx context.Context, path string, params any, out any) error {
	body, err := c.doRequest(ctx, path, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) getPage(ctx context.Context, path string, params any) (*Page, error) {
	var raw rawPage
	if err := c.getJSON(ctx, path, params, &raw); err != nil {
		return nil, err
	}
	return raw.normalize(), nil
}

// redact strips the query so logged URLs stay short
func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}

// TestConnection verifies the configured token against the API
func (c *Client) TestConnection(ctx context.Context) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.getJSON(ctx, "/authentication", nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("TMDB rejected the configured token")
	}
	return nil
}
