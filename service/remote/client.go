// Package remote talks to a farmstore server over HTTP: the catalog listings
// as a catalog.Source and the cart service as a cart.Persistence.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Config holds the server location and API credentials. APIKey is sent as a
// bearer token (AUTH_TYPE=key); otherwise User/Pass go out as basic auth.
type Config struct {
	BaseURL    string
	APIKey     string
	User       string
	Pass       string
	HTTPClient *http.Client
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %s %s: status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

type client struct {
	cfg  Config
	http *http.Client
}

func newClient(cfg Config) client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return client{cfg: cfg, http: hc}
}

// do sends body (JSON-encoded when non-nil) and decodes a 2xx answer into out.
func (c client) do(ctx context.Context, method, path string, header http.Header, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}
	url := c.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case c.cfg.APIKey != "":
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	case c.cfg.User != "":
		req.SetBasicAuth(c.cfg.User, c.cfg.Pass)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, URL: url, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", url, err)
	}
	return nil
}
