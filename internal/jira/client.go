package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lotas/ticketdeck/internal/governor"
	"github.com/lotas/ticketdeck/internal/types"
)

const (
	// PageSize is the maxResults used for each page request.
	PageSize = 100

	requestTimeout = 360 * time.Second
	maxErrorBody   = 4 << 10
)

// Client talks to the tracker's REST v2 API.
type Client struct {
	rc       *RequestContext
	http     *http.Client
	gov      *governor.Governor
	pageSize int
}

// NewClient returns a client for rc. Page workers are admitted through gov;
// nil means governor.Default().
func NewClient(rc *RequestContext, gov *governor.Governor) *Client {
	if gov == nil {
		gov = governor.Default()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if rc.Proxy != nil {
		transport.Proxy = proxyFunc(rc.Proxy)
	}
	return &Client{
		rc:       rc,
		http:     &http.Client{Timeout: requestTimeout, Transport: transport},
		gov:      gov,
		pageSize: PageSize,
	}
}

func proxyFunc(p *Proxies) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		raw := p.HTTP
		if req.URL.Scheme == "https" {
			raw = p.HTTPS
		}
		if raw == "" {
			return nil, nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
		}
		return u, nil
	}
}

// Server returns the base URL requests are sent to.
func (c *Client) Server() string { return c.rc.Server }

type issueJSON struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

func (i issueJSON) ticket() types.Ticket {
	return types.Ticket{Key: i.Key, Fields: i.Fields}
}

type searchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []issueJSON `json:"issues"`
}

// get performs one GET and returns the body of a 2xx response. A 204
// returns a nil body and no error.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	apiURL := c.rc.Server + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range c.rc.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrOffline, err)
	}
	return body, nil
}

func (c *Client) searchPage(ctx context.Context, jql string, startAt, maxResults int) (*searchResponse, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(maxResults))

	body, err := c.get(ctx, "/rest/api/2/search", q)
	if err != nil {
		return nil, err
	}
	var sr searchResponse
	if body == nil {
		return &sr, nil
	}
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &sr, nil
}

// Issue fetches a single issue by key.
func (c *Client) Issue(ctx context.Context, key string) (types.Ticket, error) {
	body, err := c.get(ctx, "/rest/api/2/issue/"+url.PathEscape(key), nil)
	if err != nil {
		return types.Ticket{}, err
	}
	if body == nil {
		return types.Ticket{}, fmt.Errorf("issue %s: empty response", key)
	}
	var ij issueJSON
	if err := json.Unmarshal(body, &ij); err != nil {
		return types.Ticket{}, fmt.Errorf("decode issue %s: %w", key, err)
	}
	if ij.Key == "" {
		ij.Key = key
	}
	return ij.ticket(), nil
}
