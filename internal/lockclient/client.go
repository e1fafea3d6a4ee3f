// Package lockclient is a typed Go client of the lock coordinator's
// REST surface, used by console-side tooling and the integration
// tests.
package lockclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/AliceO2Group/detlockd/internal/lockservice"
)

// Client interacts with one running lock coordinator on behalf of one
// operator identity. The identity travels in the same headers the SSO
// proxy would set.
type Client struct {
	baseURL string
	user    lockservice.User
	http    *http.Client
}

// New creates a client for the service at baseURL acting as user.
func New(baseURL string, user lockservice.User) *Client {
	return &Client{
		baseURL: baseURL,
		user:    user,
		http:    &http.Client{},
	}
}

// Locks fetches the current snapshot of every tracked lock.
func (c *Client) Locks(ctx context.Context) (lockservice.Snapshot, error) {
	return c.do(ctx, http.MethodGet, "/locks")
}

// Take acquires the lock of the given detector, or TargetAll.
func (c *Client) Take(ctx context.Context, detector string) (lockservice.Snapshot, error) {
	return c.action(ctx, detector, lockservice.ActionTake, false)
}

// Release frees the lock of the given detector, or TargetAll.
func (c *Client) Release(ctx context.Context, detector string) (lockservice.Snapshot, error) {
	return c.action(ctx, detector, lockservice.ActionRelease, false)
}

// ForceTake reassigns the lock regardless of its current owner. The
// service refuses this for identities without admin access.
func (c *Client) ForceTake(ctx context.Context, detector string) (lockservice.Snapshot, error) {
	return c.action(ctx, detector, lockservice.ActionTake, true)
}

// ForceRelease frees the lock regardless of its current owner.
func (c *Client) ForceRelease(ctx context.Context, detector string) (lockservice.Snapshot, error) {
	return c.action(ctx, detector, lockservice.ActionRelease, true)
}

func (c *Client) action(ctx context.Context, detector string, action lockservice.Action, force bool) (lockservice.Snapshot, error) {
	path := "/locks/" + url.PathEscape(detector) + "/" + string(action)
	if force {
		path = "/locks/force/" + url.PathEscape(detector) + "/" + string(action)
	}
	return c.do(ctx, http.MethodPut, path)
}

func (c *Client) do(ctx context.Context, method, path string) (lockservice.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Operator-Username", c.user.Username)
	req.Header.Set("X-Operator-Fullname", c.user.FullName)
	req.Header.Set("X-Operator-Personid", strconv.Itoa(c.user.PersonID))
	if len(c.user.Access) > 0 {
		req.Header.Set("X-Operator-Access", strings.Join(c.user.Access, ","))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
			return nil, fmt.Errorf("lock service answered %d for %s", resp.StatusCode, path)
		}
		return nil, &lockservice.Error{
			Kind:    kindFromStatus(resp.StatusCode),
			Message: body.Message,
		}
	}

	var snap lockservice.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

func kindFromStatus(status int) lockservice.Kind {
	switch status {
	case http.StatusBadRequest:
		return lockservice.KindInvalidInput
	case http.StatusNotFound:
		return lockservice.KindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return lockservice.KindUnauthorized
	case http.StatusRequestTimeout:
		return lockservice.KindTimeout
	}
	return lockservice.KindInternal
}
