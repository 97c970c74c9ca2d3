// Package erp is the boundary the CRUD screens consume: typed resource
// accessors over the authorized HTTP client. Nothing here touches the
// Authorization header; credential injection is the transport's job.
package erp

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

	"github.com/pkg/errors"
)

// Client issues requests against the ERP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client. The http.Client must be built on the
// request authorizer; see transport.Authorizer.Client.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[erp.NewClient] base URL is required")
	}
	if httpClient == nil {
		return nil, errors.New("[erp.NewClient] http client is required")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// ListParams are the shared filter/sort/paginate parameters of every list
// view.
type ListParams struct {
	Search   string
	SortBy   string
	SortDesc bool
	Skip     int
	Limit    int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
		if p.SortDesc {
			q.Set("sort_order", "desc")
		}
	}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// Page is one page of a list view.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// APIError is a non-2xx response from the API, propagated unmodified so the
// calling screen can stop its loading state and pick its own messaging.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d", e.Status)
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] encode body")
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.do] decode %s response", path)
	}
	return nil
}

// Resource is the shared CRUD plumbing under every admin list screen.
type Resource[T any] struct {
	client *Client
	path   string
}

func resource[T any](c *Client, path string) Resource[T] {
	return Resource[T]{client: c, path: path}
}

// List fetches one page of the resource.
func (r Resource[T]) List(ctx context.Context, params ListParams) (Page[T], error) {
	var page Page[T]
	err := r.client.do(ctx, http.MethodGet, r.path, params.query(), nil, &page)
	return page, err
}

// Get fetches a single item by id.
func (r Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", r.path, id), nil, nil, &item)
	return item, err
}

// Create stores a new item and returns it as created by the server.
func (r Resource[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	err := r.client.do(ctx, http.MethodPost, r.path, nil, item, &created)
	return created, err
}

// Update replaces the item with the given id.
func (r Resource[T]) Update(ctx context.Context, id int64, item T) (T, error) {
	var updated T
	err := r.client.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), nil, item, &updated)
	return updated, err
}

// Delete removes the item with the given id.
func (r Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id), nil, nil, nil)
}
