// Package apper is the HTTP client for the hosted record-table backend. It
// implements records.Client over the backend's JSON API.
package apper

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

	"github.com/clinic/clinic/internal/platform/records"
)

const (
	HeaderProjectID = "X-Apper-Project-Id"
	HeaderPublicKey = "X-Apper-Public-Key"

	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4096
)

// Config holds the bootstrap parameters of the hosted backend.
type Config struct {
	BaseURL    string
	ProjectID  string
	PublicKey  string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; overrides Timeout
}

// Client talks to the hosted backend. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	projectID string
	publicKey string
	http      *http.Client
}

var _ records.Client = (*Client)(nil)

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("apper: base url is required")
	}
	if cfg.ProjectID == "" || cfg.PublicKey == "" {
		return nil, fmt.Errorf("apper: project id and public key are required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apper: invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apper: base url scheme must be http or https, got %q", base.Scheme)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		base:      base,
		projectID: cfg.ProjectID,
		publicKey: cfg.PublicKey,
		http:      hc,
	}, nil
}

func (c *Client) FetchRecords(ctx context.Context, table string, q records.Query) (*records.FetchResponse, error) {
	var out records.FetchResponse
	if _, err := c.do(ctx, "fetch", http.MethodPost, c.tablePath(table, "records", "fetch"), nil, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRecordByID(ctx context.Context, table string, id int, q records.Query) (*records.GetResponse, error) {
	params := url.Values{}
	if len(q.Fields) > 0 {
		params.Set("fields", strings.Join(q.Fields, ","))
	}
	var out records.GetResponse
	status, err := c.do(ctx, "get", http.MethodGet, c.tablePath(table, "records", strconv.Itoa(id)), params, nil, &out)
	if status == http.StatusNotFound {
		return &records.GetResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRecord(ctx context.Context, table string, recs []records.Record) (*records.MutationResponse, error) {
	return c.mutate(ctx, "create", http.MethodPost, table, map[string]any{"records": recs})
}

func (c *Client) UpdateRecord(ctx context.Context, table string, recs []records.Record) (*records.MutationResponse, error) {
	return c.mutate(ctx, "update", http.MethodPut, table, map[string]any{"records": recs})
}

func (c *Client) DeleteRecord(ctx context.Context, table string, ids []int) (*records.MutationResponse, error) {
	return c.mutate(ctx, "delete", http.MethodDelete, table, map[string]any{"RecordIds": ids})
}

func (c *Client) mutate(ctx context.Context, op, method, table string, body any) (*records.MutationResponse, error) {
	var out records.MutationResponse
	if _, err := c.do(ctx, op, method, c.tablePath(table, "records"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) tablePath(table string, parts ...string) string {
	segs := append([]string{"tables", url.PathEscape(table)}, parts...)
	return "/" + strings.Join(segs, "/")
}

// do performs one request. A non-2xx answer whose body is a JSON envelope is
// decoded into out so the caller can read the backend's own success flag and
// message; anything else becomes a TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body, out any) (int, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, &records.TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, &records.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderProjectID, c.projectID)
	req.Header.Set(HeaderPublicKey, c.publicKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &records.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &records.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(bytes.TrimSpace(raw)) == 0 {
			return resp.StatusCode, nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &records.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
		return resp.StatusCode, nil
	}

	if resp.StatusCode != http.StatusNotFound && isEnvelope(raw) {
		if err := json.Unmarshal(raw, out); err == nil {
			return resp.StatusCode, nil
		}
	}
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return resp.StatusCode, &records.TransportError{
		Op:  op,
		Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
	}
}

// isEnvelope reports whether body is a JSON object carrying a success flag.
func isEnvelope(body []byte) bool {
	var probe struct {
		Success *bool `json:"success"`
	}
	return json.Unmarshal(body, &probe) == nil && probe.Success != nil
}
