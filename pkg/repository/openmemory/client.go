// Package openmemory implements interfaces.MemoryGateway on top of the
// OpenMemory REST API.
package openmemory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
	"github.com/webmasterarbez/elaoms/pkg/utils/safe"
)

// DefaultTimeout bounds every call to the memory engine
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 512

// Client is an OpenMemory gateway. It is safe for concurrent use; all calls
// share one connection pool.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

var _ interfaces.MemoryGateway = (*Client)(nil)

// Option is a functional option for Client configuration
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the OpenMemory server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("OpenMemory URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid OpenMemory URL", goerr.V("url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("OpenMemory URL must be http or https", goerr.V("url", baseURL))
	}

	c := &Client{
		baseURL: u,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return c, nil
}

type addRequest struct {
	Content     string         `json:"content"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserID      string         `json:"user_id"`
	Salience    float64        `json:"salience"`
	DecayLambda float64        `json:"decay_lambda"`
}

type addResponse struct {
	ID string `json:"id"`
}

type queryRequest struct {
	Query   string       `json:"query"`
	K       int          `json:"k"`
	Filters queryFilters `json:"filters"`
}

type queryFilters struct {
	UserID string `json:"user_id"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

type queryMatch struct {
	ID            string         `json:"id"`
	Content       string         `json:"content"`
	Score         float64        `json:"score"`
	PrimarySector string         `json:"primary_sector"`
	Salience      float64        `json:"salience"`
	Metadata      map[string]any `json:"metadata"`
}

type summaryResponse struct {
	UserID          string `json:"user_id"`
	Summary         string `json:"summary"`
	ReflectionCount int    `json:"reflection_count"`
	UpdatedAt       int64  `json:"updated_at"`
}

// Add stores one memory
func (c *Client) Add(ctx context.Context, intent *model.MemoryWriteIntent) (model.MemoryID, error) {
	if err := intent.Validate(); err != nil {
		return "", goerr.Wrap(interfaces.ErrValidationRejected, "invalid memory", goerr.V("cause", err.Error()))
	}

	metadata := make(map[string]any, len(intent.Metadata)+1)
	for k, v := range intent.Metadata {
		metadata[k] = v
	}
	if intent.SectorHint != "" {
		metadata[model.MetaSectorHint] = intent.SectorHint.String()
	}

	req := addRequest{
		Content:     intent.Content,
		Tags:        intent.Tags,
		Metadata:    metadata,
		UserID:      intent.Owner.String(),
		Salience:    intent.Salience,
		DecayLambda: intent.DecayRate,
	}

	var resp addResponse
	if _, err := c.do(ctx, http.MethodPost, "/memory/add", req, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to add memory", goerr.V("owner", intent.Owner))
	}
	return model.MemoryID(resp.ID), nil
}

// Query searches memories of owner
func (c *Client) Query(ctx context.Context, text string, owner model.CallerID, limit int) ([]*model.MemoryHit, error) {
	if limit <= 0 {
		limit = 1
	}
	req := queryRequest{
		Query:   text,
		K:       limit,
		Filters: queryFilters{UserID: owner.String()},
	}

	var resp queryResponse
	if _, err := c.do(ctx, http.MethodPost, "/memory/query", req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to query memories", goerr.V("owner", owner))
	}

	hits := make([]*model.MemoryHit, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		hits = append(hits, &model.MemoryHit{
			ID:       model.MemoryID(m.ID),
			Content:  m.Content,
			Score:    m.Score,
			Sector:   types.Sector(m.PrimarySector),
			Salience: m.Salience,
			Metadata: m.Metadata,
		})
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Summary returns the engine's user summary. Unknown users yield "".
func (c *Client) Summary(ctx context.Context, owner model.CallerID) (string, error) {
	path := "/users/" + url.PathEscape(owner.String()) + "/summary"

	var resp summaryResponse
	status, err := c.do(ctx, http.MethodGet, path, nil, &resp)
	if status == http.StatusNotFound {
		return "", nil
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to get user summary", goerr.V("owner", owner))
	}
	return resp.Summary, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(interfaces.ErrUpstreamUnavailable, "request to memory engine failed",
			goerr.V("path", path),
			goerr.V("cause", err.Error()),
			goerr.V("timeout", errors.Is(err, context.DeadlineExceeded)),
		)
	}
	defer safe.DrainClose(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		values := []goerr.Option{
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(snippet)),
		}
		switch {
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
			return resp.StatusCode, goerr.Wrap(interfaces.ErrValidationRejected, "memory engine rejected request", values...)
		default:
			return resp.StatusCode, goerr.Wrap(interfaces.ErrUpstreamUnavailable, "memory engine returned error status", values...)
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, goerr.Wrap(interfaces.ErrUpstreamUnavailable, "failed to decode memory engine response",
				goerr.V("path", path),
				goerr.V("cause", err.Error()),
			)
		}
	}

	return resp.StatusCode, nil
}
