package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ProductDesk/internal/product"
	"ProductDesk/pkg/kit"
)

const (
	opList   = "list"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opPing   = "ping"

	maxErrorBody = 4 << 10
)

// Client talks to the remote product API. It never retries; a failed call
// surfaces to the caller as a *TransportError.
type Client struct {
	BaseURL string
	Client  *http.Client
	Metrics *kit.ClientMetrics
}

// NewClient builds a client for baseURL. A zero timeout leaves calls bounded
// only by their context.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api base url %q: want http(s)://host", baseURL)
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	if err := c.do(ctx, opList, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []product.Product{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, f product.Fields) (product.Product, error) {
	var p product.Product
	if err := c.do(ctx, opCreate, http.MethodPost, "/products", f, &p); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

// Update sends the full product, id included.
func (c *Client) Update(ctx context.Context, id int64, f product.Fields) (product.Product, error) {
	var p product.Product
	if err := c.do(ctx, opUpdate, http.MethodPatch, productPath(id), f.WithID(id), &p); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, opDelete, http.MethodDelete, productPath(id), nil, nil)
}

// Ping reports whether the API answers the list endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, opPing, http.MethodGet, "/products", nil, nil)
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() { c.Metrics.Observe(op, start, err) }()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, Status: resp.StatusCode, Err: ErrNotFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, Status: resp.StatusCode, Err: badStatus(snippet)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}
	return nil
}

func badStatus(body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return ErrBadStatus
	}
	return fmt.Errorf("%w: %s", ErrBadStatus, msg)
}

// IsTransport reports whether err came from the remote API call itself.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
