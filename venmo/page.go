package venmo

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// PageRequest describes how a page was produced: the resource path, the fixed
// query parameters of the original call (excluding offset and limit), the
// nested key path used for extraction, and the cursor. It is a plain value so a
// continuation can be interpreted by fetchPage instead of holding a bound
// method reference.
type PageRequest struct {
	Path   string
	Query  url.Values
	Nested []string
	Offset int
	Limit  int
}

// Page is a read-only ordered sequence of typed records plus the request
// descriptor that produced it. Constructing a page never touches the network;
// only NextPage issues a new request.
type Page[T any] struct {
	items  []T
	client *Client
	req    PageRequest
	bound  bool
}

func newPage[T any](items []T) *Page[T] {
	return &Page[T]{items: items}
}

// bind records the producing request. Called by the retrieval method right
// after construction, not by callers.
func (p *Page[T]) bind(client *Client, req PageRequest) {
	p.client = client
	p.req = req
	p.bound = true
}

// Items returns the records in original response order. The slice must not be
// mutated.
func (p *Page[T]) Items() []T {
	return p.items
}

// Len returns the number of records in this page.
func (p *Page[T]) Len() int {
	return len(p.items)
}

// At returns the record at index i.
func (p *Page[T]) At(i int) T {
	return p.items[i]
}

// Request returns the descriptor this page was produced from.
func (p *Page[T]) Request() PageRequest {
	return p.req
}

// NextPage fetches the logically-next page by re-issuing the recorded request
// with the offset advanced by this page's limit. Upstream treats the limit as
// the page boundary, so the advance uses the limit even when fewer items were
// returned. An empty page signals exhaustion; the receiver is left untouched.
func (p *Page[T]) NextPage(ctx context.Context) (*Page[T], error) {
	if !p.bound {
		return nil, errors.New("page is not bound to a producing request")
	}
	next := p.req
	next.Offset += next.Limit
	return fetchPage[T](ctx, p.client, next)
}

// fetchPage is the single dispatcher that interprets a PageRequest: it
// performs the GET, deserializes the list payload, and binds the resulting
// page so it can continue the same query.
func fetchPage[T any](ctx context.Context, c *Client, req PageRequest) (*Page[T], error) {
	query := cloneQuery(req.Query)
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	query.Set("offset", strconv.Itoa(req.Offset))

	resp, err := c.Call(ctx, Request{
		Method: http.MethodGet,
		Path:   req.Path,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	page, err := DeserializePage[T](resp, req.Nested...)
	if err != nil {
		return nil, err
	}
	page.bind(c, req)
	return page, nil
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
