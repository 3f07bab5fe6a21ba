// Package apiclient is the HTTP adapter between the client stores and the
// parking REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/core/envelope"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
)

// DefaultBaseURL is used when no base address is configured.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://127.0.0.1:5000/api.
	BaseURL string
	// Storage is read before every request for the bearer credential. May be nil.
	Storage ports.Storage
	// HTTPClient defaults to a client without a timeout.
	HTTPClient *http.Client
	// Timeout, when positive, bounds each request.
	Timeout time.Duration
	Log     zerolog.Logger
}

// Client implements ports.APIClient.
type Client struct {
	base    string
	storage ports.Storage
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

var _ ports.APIClient = (*Client)(nil)

func New(opts Options) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		storage: opts.Storage,
		http:    hc,
		timeout: opts.Timeout,
		log:     opts.Log,
	}
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string { return c.base }

// URL joins path onto the base with exactly one slash, so "admin/bookings"
// and "/admin/bookings" address the same resource.
func (c *Client) URL(path string, query url.Values) string {
	u := c.base
	if p := strings.TrimLeft(path, "/"); p != "" {
		u += "/" + p
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*envelope.Envelope, error) {
	body, _, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return envelope.Parse(body), nil
}

func (c *Client) Post(ctx context.Context, path string, payload any) (*envelope.Envelope, error) {
	body, _, err := c.Do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return envelope.Parse(body), nil
}

func (c *Client) Put(ctx context.Context, path string, payload any) (*envelope.Envelope, error) {
	body, _, err := c.Do(ctx, http.MethodPut, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return envelope.Parse(body), nil
}

func (c *Client) Delete(ctx context.Context, path string) (*envelope.Envelope, error) {
	body, _, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return envelope.Parse(body), nil
}

func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Do performs one request and returns the body and its content type.
// Non-2xx responses are returned as *domain.APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%s %s: encode payload: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(ctx, req)

	route := routeLabel(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, route, "error").Inc()
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(method, route, strconv.Itoa(resp.StatusCode)).Inc()
	if err != nil {
		return nil, "", fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &domain.APIError{
			StatusCode: resp.StatusCode,
			Message:    envelope.ErrorMessage(body),
			Body:       body,
		}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// authorize attaches the persisted credential, if any. Storage failures only
// cost the header, never the request.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.storage == nil {
		return
	}
	token, err := c.storage.Get(ctx, ports.TokenKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("read credential from storage")
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// routeLabel collapses numeric path segments so metric cardinality stays bounded.
func routeLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
