// Package sclient is an HTTP client for the routes served by [sserver].
//
// Addresses may be plain HTTP base URLs such as "http://127.0.0.1:8080",
// or unix sockets written as "unix:///run/gsegtree.sock".
package sclient

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

	"github.com/gordian-engine/gsegtree/sinput"
	"github.com/gordian-engine/gsegtree/smulti"
	"github.com/gordian-engine/gsegtree/sserver"
	"github.com/gordian-engine/gsegtree/svis"
	"github.com/tv42/httpunix"
)

// unixLocation is the host name registered for a unix socket address.
const unixLocation = "gsegtree"

type Client struct {
	base string
	hc   *http.Client
}

// StatusError is returned when the server responds with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// New returns a Client for addr.
func New(addr string) (*Client, error) {
	if path, ok := strings.CutPrefix(addr, "unix://"); ok {
		if path == "" {
			return nil, fmt.Errorf("missing socket path in %q", addr)
		}
		ut := &httpunix.Transport{
			DialTimeout:           time.Second,
			RequestTimeout:        10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
		}
		ut.RegisterLocation(unixLocation, path)

		return &Client{
			base: httpunix.Scheme + "://" + unixLocation,
			hc:   &http.Client{Transport: ut},
		}, nil
	}

	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported address scheme %q", u.Scheme)
	}
	return &Client{
		base: strings.TrimSuffix(addr, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Create builds a new tree on the server from values.
func (c *Client) Create(ctx context.Context, values []int64) (sserver.CreateResponse, error) {
	var out sserver.CreateResponse
	err := c.do(ctx, http.MethodPost, "/trees", sinput.BuildRequest{Values: values}, &out)
	return out, err
}

// List returns the IDs of every tree on the server.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var out sserver.ListResponse
	err := c.do(ctx, http.MethodGet, "/trees", nil, &out)
	return out.IDs, err
}

// Get returns a snapshot of the tree id.
func (c *Client) Get(ctx context.Context, id string) (svis.Snapshot, error) {
	var out svis.Snapshot
	err := c.do(ctx, http.MethodGet, "/trees/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Delete removes the tree id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/trees/"+url.PathEscape(id), nil, nil)
}

// Query returns the requested aggregates over [lo, hi) of tree id.
func (c *Client) Query(ctx context.Context, id string, lo, hi int, kinds smulti.Kinds) (map[smulti.Kind]int64, error) {
	v := url.Values{}
	v.Set("lo", strconv.Itoa(lo))
	v.Set("hi", strconv.Itoa(hi))
	v.Set("kinds", kinds.String())

	var out map[smulti.Kind]int64
	err := c.do(ctx, http.MethodGet, "/trees/"+url.PathEscape(id)+"/query?"+v.Encode(), nil, &out)
	return out, err
}

// Update sets position pos of tree id to value.
func (c *Client) Update(ctx context.Context, id string, pos int, value int64) error {
	body := sinput.UpdateRequest{Position: pos, Value: value}
	return c.do(ctx, http.MethodPost, "/trees/"+url.PathEscape(id)+"/update", body, nil)
}

// Render returns the tree id rendered as "text" or "dot".
func (c *Client) Render(ctx context.Context, id, format string) (string, error) {
	path := "/trees/" + url.PathEscape(id) + "/render?format=" + url.QueryEscape(format)
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(b), nil
}

// do sends in as JSON, if non-nil, and decodes the response into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs the request and turns non-2xx responses into a [*StatusError].
// On success the caller must close the response body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			Code:    resp.StatusCode,
			Message: strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}
