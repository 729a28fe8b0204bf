// Package postgrest is a small query builder for the PostgREST API served by the hosted store
// (e.g. Supabase at <base>/rest/v1). It covers what the gateway needs: select with ordering and
// equality filters, insert, partial update and delete, optional embedded relations, and
// single-object responses.
package postgrest

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

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/remote"
)

// restPath is appended to the base URL; tables are resolved below it.
const restPath = "/rest/v1"

const singleObjectMedia = "application/vnd.pgrst.object+json"

// Client issues PostgREST requests authenticated with the project's access token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient returns a Client for baseURL (e.g. https://xyz.supabase.co). httpClient may be nil;
// then a client without a request timeout is used, so in-flight requests always resolve on their own.
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("postgrest: base URL is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("postgrest: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("postgrest: invalid base URL %q: missing scheme or host", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(u.String(), "/"),
		Token:      token,
		HTTPClient: httpClient,
	}, nil
}

// From starts a query against table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, method: http.MethodGet, params: url.Values{}}
}

// Query is a single PostgREST request under construction. Methods return the receiver for chaining.
type Query struct {
	client *Client
	table  string
	method string
	params url.Values
	body   any
	single bool
}

// Select sets the column list, including embeds such as "*,user:profiles(id,name)".
// On insert or update it asks PostgREST to return the affected rows.
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

// Eq adds an equality filter column=eq.value.
func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

// Order sorts by column.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Add("order", column+"."+dir)
	return q
}

// Insert turns the query into a POST of rows (a struct, map or slice of them).
func (q *Query) Insert(rows any) *Query {
	q.method = http.MethodPost
	q.body = rows
	return q
}

// Update turns the query into a PATCH setting fields on every row matching the filters.
func (q *Query) Update(fields any) *Query {
	q.method = http.MethodPatch
	q.body = fields
	return q
}

// Delete turns the query into a DELETE of every row matching the filters.
func (q *Query) Delete() *Query {
	q.method = http.MethodDelete
	return q
}

// Single asks for exactly one row as a JSON object instead of an array.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Op names the request for error reports, e.g. "profiles.update".
func (q *Query) Op() string {
	switch q.method {
	case http.MethodPost:
		return q.table + ".insert"
	case http.MethodPatch:
		return q.table + ".update"
	case http.MethodDelete:
		return q.table + ".delete"
	default:
		return q.table + ".select"
	}
}

// URL returns the request URL the query resolves to.
func (q *Query) URL() string {
	u := q.client.BaseURL + restPath + "/" + url.PathEscape(q.table)
	if enc := q.params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Execute sends the request and decodes the response into dest when dest is non-nil.
// A non-2xx response becomes a *remote.RejectedError; transport failures are returned as-is.
func (q *Query) Execute(ctx context.Context, dest any) error {
	var body io.Reader
	if q.body != nil {
		payload, err := json.Marshal(q.body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", q.Op(), err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, q.method, q.URL(), body)
	if err != nil {
		return fmt.Errorf("%s: %w", q.Op(), err)
	}
	req.Header.Set("apikey", q.client.Token)
	req.Header.Set("Authorization", "Bearer "+q.client.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.single {
		req.Header.Set("Accept", singleObjectMedia)
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if q.method != http.MethodGet {
		if q.params.Has("select") {
			req.Header.Set("Prefer", "return=representation")
		} else {
			req.Header.Set("Prefer", "return=minimal")
		}
	}

	resp, err := q.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", q.Op(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", q.Op(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rejection(q.Op(), resp.StatusCode, raw)
	}
	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", q.Op(), err)
	}
	return nil
}

// apiError is the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func rejection(op string, status int, raw []byte) error {
	rej := &remote.RejectedError{Op: op, Status: status}
	var ae apiError
	if err := json.Unmarshal(raw, &ae); err == nil && (ae.Message != "" || ae.Code != "") {
		rej.Code = ae.Code
		rej.Message = ae.Message
		rej.Details = ae.Details
		if rej.Details == "" {
			rej.Details = ae.Hint
		}
	} else {
		rej.Message = fmt.Sprintf("status %d", status)
		if s := strings.TrimSpace(string(raw)); s != "" {
			rej.Details = s
		}
	}
	return rej
}
