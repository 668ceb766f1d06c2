// Package registry provides a client for the remote node registry API.
package registry

import (
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

	"github.com/narvanalabs/grid-explorer/internal/models"
)

// DefaultPageSize is used when the client is built with a non-positive page size.
const DefaultPageSize = 100

// maxPages bounds a listing when the registry omits the Pages header and
// keeps returning full pages.
const maxPages = 10000

// PagesHeader carries the total page count on list responses.
const PagesHeader = "Pages"

// HTTPError is returned for non-2xx registry responses.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("registry error (%d): %s", e.StatusCode, e.Message)
}

// Client is a read-only client for the registry directory endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
}

// NewClient creates a new registry client.
func NewClient(baseURL string, timeout time.Duration, pageSize int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		pageSize:   pageSize,
	}
}

// WithHTTPClient returns a copy of the client using hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: hc,
		pageSize:   c.pageSize,
	}
}

// ListNodes fetches every node page.
func (c *Client) ListNodes(ctx context.Context) ([]models.NodeRecord, error) {
	return listAll[models.NodeRecord](ctx, c, "/nodes")
}

// ListFarms fetches every farm page.
func (c *Client) ListFarms(ctx context.Context) ([]models.FarmRecord, error) {
	return listAll[models.FarmRecord](ctx, c, "/farms")
}

// Ping checks that the registry answers a minimal listing.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, "/farms", url.Values{"page": {"1"}, "size": {"1"}})
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	all := make([]T, 0)
	for page := 1; page <= maxPages; page++ {
		var items []T
		pages, err := c.getPage(ctx, path, page, &items)
		if err != nil {
			return nil, fmt.Errorf("listing %s page %d: %w", path, page, err)
		}
		all = append(all, items...)

		if pages > 0 {
			if page >= pages {
				return all, nil
			}
			continue
		}
		// Without a Pages header, a short page is the last one.
		if len(items) < c.pageSize {
			return all, nil
		}
	}
	return nil, fmt.Errorf("listing %s: exceeded %d pages", path, maxPages)
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// getPage performs a paged GET and decodes the body into result.
func (c *Client) getPage(ctx context.Context, path string, page int, result interface{}) (int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(c.pageSize))

	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	pages := 0
	if h := resp.Header.Get(PagesHeader); h != "" {
		pages, err = strconv.Atoi(h)
		if err != nil {
			return 0, fmt.Errorf("invalid %s header %q: %w", PagesHeader, h, err)
		}
	}
	return pages, nil
}

// decodeError reads the registry's {"error": "..."} body.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		E string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.E != "" {
		return &HTTPError{StatusCode: resp.StatusCode, Message: payload.E}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

// IsNotFound reports whether err is a registry 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
