package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/sync/host"
)

// connectTimeout is spec.md §5's "3-second connect timeout"; read/write
// timeouts are left at the transport default, as the spec requires.
const connectTimeout = 3 * time.Second

// HostClient is the node's view of the host's HTTP surface (spec.md §6).
// Every call is wrapped in a bounded exponential backoff so a transient
// network blip doesn't fail a whole sync cycle outright; a non-transient
// HTTP status (401/409/422) is wrapped in backoff.Permanent so it is not
// retried.
type HostClient struct {
	BaseURL string
	NodeID  id.AppID
	HTTP    *http.Client
}

func NewHostClient(baseURL string, nodeID id.AppID) *HostClient {
	return &HostClient{
		BaseURL: baseURL,
		NodeID:  nodeID,
		HTTP: &http.Client{
			Transport: &http.Transport{DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext},
		},
	}
}

// ErrConnection is returned when every retry attempt failed to even reach
// the host; spec.md §5 treats this as connection failure, a sync-cycle
// no-op that preserves ChangesRecord.
var ErrConnection = fmt.Errorf("sync/node: host unreachable")

// StatusError is a non-transient rejection from the host: 401 (unknown
// node), 409 (catalogue conflict), or 422 (event apply error).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sync/node: host responded %d: %s", e.StatusCode, e.Body)
}

func (c *HostClient) Register(ctx context.Context) (id.AppID, error) {
	body, err := c.doWithRetry(ctx, http.MethodPost, "/nodes", nil, false)
	if err != nil {
		return id.AppID{}, err
	}
	var appID string
	if err := json.Unmarshal(body, &appID); err != nil {
		return id.AppID{}, fmt.Errorf("sync/node: decoding register response: %w", err)
	}
	return id.ParseAppID(appID)
}

func (c *HostClient) Guide(ctx context.Context) (host.Guide, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, "/sync/guide", nil, true)
	if err != nil {
		return host.Guide{}, err
	}
	var g host.Guide
	if err := json.Unmarshal(body, &g); err != nil {
		return host.Guide{}, fmt.Errorf("sync/node: decoding guide: %w", err)
	}
	return g, nil
}

func (c *HostClient) State(ctx context.Context) (host.State, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, "/sync/report", nil, true)
	if err != nil {
		return host.State{}, err
	}
	var s host.State
	if err := json.Unmarshal(body, &s); err != nil {
		return host.State{}, fmt.Errorf("sync/node: decoding host state: %w", err)
	}
	return s, nil
}

// Push PATCHes changes to the host. A StatusError (409/422) is returned
// unwrapped so the sync task can surface it on the confirmation channel;
// anything else failing after retries is ErrConnection.
func (c *HostClient) Push(ctx context.Context, changes host.NodeChanges) error {
	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("sync/node: encoding push: %w", err)
	}
	_, err = c.doWithRetry(ctx, http.MethodPatch, "/sync", payload, true)
	return err
}

// doWithRetry issues one HTTP call, retrying transient failures (transport
// errors, 5xx) with a bounded exponential backoff and giving up immediately
// on a 4xx (those are permanent per spec.md §6's status table).
func (c *HostClient) doWithRetry(ctx context.Context, method, path string, payload []byte, authed bool) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if authed {
			req.Header.Set("X-Node-Id", c.NodeID.String())
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err // transient: retry
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("sync/node: host %d: %s", resp.StatusCode, body) // transient: retry
		default:
			return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
		}
	}

	result, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(5),
	)
	if err != nil {
		var statusErr *StatusError
		if ok := asStatusError(err, &statusErr); ok {
			return nil, statusErr
		}
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return result, nil
}

func asStatusError(err error, target **StatusError) bool {
	for err != nil {
		if se, ok := err.(*StatusError); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
