// Package registry fetches namespace metadata from the public identifier
// registries and folds it into the synonym table used for normalization.
// Responses are cached as JSON artifacts; fetch failures are returned to the
// caller without retries.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/config"
	"xrefcanon/internal/logging"
)

// Namespace is the artifact namespace directory for registry caches.
const Namespace = "registry"

// ErrOffline is returned when a registry is needed but fetching is disabled
// and no cached copy exists.
var ErrOffline = errors.New("registry offline and not cached")

// Client fetches and caches registry documents.
type Client struct {
	httpClient *http.Client
	artifacts  *artifact.Manager
	logger     *slog.Logger
	miriamURL  string
	olsURL     string
	oboURL     string
	offline    bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithURLs overrides registry endpoints. Empty values keep the current URL.
func WithURLs(miriam, ols, obo string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(miriam); s != "" {
			c.miriamURL = s
		}
		if s := strings.TrimSpace(ols); s != "" {
			c.olsURL = s
		}
		if s := strings.TrimSpace(obo); s != "" {
			c.oboURL = s
		}
	}
}

// WithOffline serves registries from cache only.
func WithOffline(offline bool) Option {
	return func(c *Client) {
		c.offline = offline
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "registry")
	}
}

// WithTimeout sets the HTTP timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithConfig applies the endpoint, offline and timeout settings of cfg.
func WithConfig(cfg config.Registry) Option {
	return func(c *Client) {
		WithURLs(cfg.MiriamURL, cfg.OLSURL, cfg.OBOFoundryURL)(c)
		WithOffline(cfg.Offline)(c)
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)(c)
	}
}

// New creates a registry client caching into artifacts.
func New(artifacts *artifact.Manager, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		artifacts:  artifacts,
		logger:     logging.NewComponentLogger(nil, "registry"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/x-yaml;q=0.9, */*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}

type page struct {
	Embedded map[string]json.RawMessage `json:"_embedded"`
	Links    struct {
		Next *struct {
			Href string `json:"href"`
		} `json:"next"`
	} `json:"_links"`
}

// FetchPaginated follows _links.next.href from url, accumulating the items
// under _embedded[key] of every page into one list.
func (c *Client) FetchPaginated(ctx context.Context, url, key string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	seen := make(map[string]struct{})
	for url != "" {
		if _, dup := seen[url]; dup {
			return nil, fmt.Errorf("pagination loop at %s", url)
		}
		seen[url] = struct{}{}

		body, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}
		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", url, err)
		}
		if raw, ok := p.Embedded[key]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("decode %s _embedded.%s: %w", url, key, err)
			}
			out = append(out, items...)
		}
		c.logger.Debug("fetched registry page", logging.String("url", url), logging.Int("items", len(out)))

		url = ""
		if p.Links.Next != nil {
			url = strings.TrimSpace(p.Links.Next.Href)
		}
	}
	return out, nil
}

// cached serves a registry document from the artifact cache, fetching it with
// fetch unless the client is offline.
func cached[T any](ctx context.Context, c *Client, name string, force bool, fetch func(ctx context.Context) (T, error)) (T, error) {
	path := c.artifacts.Path(Namespace, "", name+".json")
	header := []string{name}
	if c.offline {
		value, err := artifact.Load(path, header, artifact.JSONCodec[T]{})
		if err != nil {
			var zero T
			return zero, fmt.Errorf("%w: %s", ErrOffline, name)
		}
		return value, nil
	}
	return artifact.GetOrCompute(ctx, c.artifacts, path, header, artifact.JSONCodec[T]{}, force, func(ctx context.Context) (T, error) {
		logging.WithContext(ctx, c.logger).Info("fetching registry", logging.String("registry", name))
		return fetch(ctx)
	})
}
