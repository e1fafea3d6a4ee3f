// Package core talks to the HTTP gateway of the AliECS control core.
// It covers the calls the lock console needs: the detector inventory,
// environment lookups for the ownership gate, and the forwarding of
// environment transitions.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Environment is the slice of a control-core environment the lock
// console cares about.
type Environment struct {
	ID                string   `json:"id"`
	State             string   `json:"state"`
	IncludedDetectors []string `json:"includedDetectors"`
}

// Client is an HTTP client of the control core gateway. One instance
// is shared by all request handlers; the embedded http.Client handles
// connection reuse.
type Client struct {
	log     zerolog.Logger
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the gateway at baseURL. Every call
// is bounded by timeout on top of whatever deadline the caller's
// context carries.
func NewClient(log zerolog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ListDetectors fetches the detector inventory used to seed the lock
// registry.
func (c *Client) ListDetectors(ctx context.Context) ([]string, error) {
	var detectors []string
	if err := c.get(ctx, "/api/detectors", &detectors); err != nil {
		return nil, err
	}
	return detectors, nil
}

// GetEnvironment fetches the environment with the given id. An unknown
// id yields ErrNotFound, an exceeded deadline ErrTimeout.
func (c *Client) GetEnvironment(ctx context.Context, id string) (Environment, error) {
	var env Environment
	path := "/api/environment/" + url.PathEscape(id)
	if err := c.get(ctx, path, &env); err != nil {
		return Environment{}, err
	}
	return env, nil
}

// RequestTransition forwards an environment state transition to the
// control core. The ownership gate must have admitted the request
// before this is called.
func (c *Client) RequestTransition(ctx context.Context, id, transition string) error {
	path := "/api/environment/" + url.PathEscape(id) + "/" + url.PathEscape(transition)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapTransportError(err)
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, path)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapTransportError(err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, path); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) checkStatus(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode >= 400:
		c.log.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("control core request failed")
		return fmt.Errorf("control core answered %d for %s", resp.StatusCode, path)
	}
	return nil
}

// wrapTransportError folds the several shapes a client-side timeout
// can take into ErrTimeout.
func (c *Client) wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
