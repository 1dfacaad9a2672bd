// Package api is the thin HTTP client the upload pipeline uses to talk to
// the Vibecast server: presigned-upload slots, batch fan-out ingest, and
// the presigned PUT itself.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/netx"
	"github.com/vibecast/vibecast/internal/wire"
)

// Client talks to the server HTTP API.
type Client struct {
	base string
	http *http.Client
	log  logging.Logger
}

// New returns a Client for the API at base (e.g. "http://127.0.0.1:8080")
// with the given per-request timeout.
func New(base string, timeout time.Duration, log logging.Logger) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  log.With("module", "api"),
	}
}

// CreateUpload asks the server for a presigned PUT slot for one asset.
func (c *Client) CreateUpload(ctx context.Context, role, contentType string) (*wire.UploadSlot, error) {
	slot := &wire.UploadSlot{}
	err := c.postJSON(ctx, "/api/uploads", &wire.UploadRequest{Role: role, ContentType: contentType}, slot)
	if err != nil {
		return nil, fmt.Errorf("create upload slot: %w", err)
	}
	return slot, nil
}

// Upload PUTs the file at path to the slot's presigned URL. Transient
// failures are retried with backoff; the object key stays the same across
// attempts, so a retried upload overwrites rather than duplicates.
func (c *Client) Upload(ctx context.Context, slot *wire.UploadSlot, path, contentType string) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := netx.UploadToPresignedURL(ctx, c.http, slot.PutURL, path, contentType)
		if err != nil && netx.IsConnectionError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// CreateBatch submits the fan-out for one task. The returned result carries
// per-receiver outcomes; res.OK is false on any partial failure.
func (c *Client) CreateBatch(ctx context.Context, req *wire.BatchRequest) (*wire.BatchResult, error) {
	res := &wire.BatchResult{}
	if err := c.postJSON(ctx, "/api/batches", req, res); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return res, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError maps HTTP failure statuses onto the shared sentinel errors so
// the queue can classify them for the sender.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", string(b), common.ErrPermissionDenied)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", string(b), common.ErrTimeout)
	case http.StatusRequestEntityTooLarge, http.StatusInsufficientStorage:
		return fmt.Errorf("%s: %w", string(b), common.ErrQuotaExceeded)
	default:
		return fmt.Errorf("api status %s: %s", resp.Status, string(b))
	}
}
