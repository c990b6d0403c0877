// Package client talks to the area HTTP API and implements area.Service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meikuraledutech/area"
)

// Client is an area.Service backed by the HTTP API.
type Client struct {
	base string
	http *http.Client
}

var _ area.Service = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the JSON shape of a failed response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// GetArea fetches a stored area.
func (c *Client) GetArea(ctx context.Context, id string) (*area.AreaRecord, error) {
	var rec area.AreaRecord
	if err := c.do(ctx, http.MethodGet, "/areas/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateAreaWithActions creates a new area.
func (c *Client) CreateAreaWithActions(ctx context.Context, req *area.SaveRequest) (*area.AreaRecord, error) {
	var rec area.AreaRecord
	if err := c.do(ctx, http.MethodPost, "/areas", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateAreaComplete replaces an existing area.
func (c *Client) UpdateAreaComplete(ctx context.Context, id string, req *area.SaveRequest) (*area.AreaRecord, error) {
	var rec area.AreaRecord
	if err := c.do(ctx, http.MethodPut, "/areas/"+url.PathEscape(id), req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAreas returns the summaries of every stored area.
func (c *Client) ListAreas(ctx context.Context) ([]area.AreaSummary, error) {
	var out []area.AreaSummary
	if err := c.do(ctx, http.MethodGet, "/areas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError turns an error response back into the sentinel the server
// started from, where there is one.
func decodeError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(data))
	}
	cause := errors.New(eb.Error)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return area.ErrAreaNotFound
	case http.StatusUnprocessableEntity:
		switch eb.Code {
		case area.CodeCycle:
			return fmt.Errorf("%w: %s", area.ErrCycleDetected, eb.Error)
		case area.CodeUnknownServiceID:
			return fmt.Errorf("%w: %s", area.ErrUnknownServiceID, eb.Error)
		}
		code := eb.Code
		if code == "" {
			code = area.CodeInvalid
		}
		return area.Invalid(code, cause)
	}
	return fmt.Errorf("client: %s: %w", resp.Status, cause)
}
