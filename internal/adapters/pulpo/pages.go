package pulpo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPageSize is the offset/limit step of paginated WMS listings
const DefaultPageSize = 600

// Pages walks a paginated WMS listing record by record. It follows the
// scanner pattern: Next reports whether a record is available, Record returns
// it, and Err must be checked once Next returns false. Pagination stops on
// the first short page.
type Pages struct {
	ctx      context.Context
	client   *Client
	endpoint string
	params   url.Values
	pageSize int

	stopAfter int
	emitted   int

	buf    []json.RawMessage
	pos    int
	offset int
	done   bool
	err    error
}

// Paginate starts a paginated walk over endpoint. pageSize zero means
// DefaultPageSize; stopAfter caps the number of records emitted, zero means
// no cap.
func (c *Client) Paginate(ctx context.Context, endpoint string, params url.Values, pageSize, stopAfter int) *Pages {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	copied := url.Values{}
	for key, values := range params {
		copied[key] = values
	}
	return &Pages{
		ctx:       ctx,
		client:    c,
		endpoint:  endpoint,
		params:    copied,
		pageSize:  pageSize,
		stopAfter: stopAfter,
		pos:       -1,
	}
}

// Next advances to the next record, fetching the next page when the buffer
// runs out
func (p *Pages) Next() bool {
	if p.err != nil {
		return false
	}
	if p.stopAfter > 0 && p.emitted >= p.stopAfter {
		return false
	}

	p.pos++
	for p.pos >= len(p.buf) {
		if p.done {
			return false
		}
		if err := p.fetch(); err != nil {
			p.err = err
			return false
		}
		p.pos = 0
		if len(p.buf) == 0 && p.done {
			return false
		}
	}
	p.emitted++
	return true
}

// Record returns the raw record Next advanced to
func (p *Pages) Record() json.RawMessage {
	if p.pos < 0 || p.pos >= len(p.buf) {
		return nil
	}
	return p.buf[p.pos]
}

// Err returns the first error the walk hit, nil after a clean finish
func (p *Pages) Err() error {
	return p.err
}

// fetch loads the page at the current offset
func (p *Pages) fetch() error {
	p.params.Set("offset", strconv.Itoa(p.offset))
	p.params.Set("limit", strconv.Itoa(p.pageSize))

	raw, err := p.client.Request(p.ctx, http.MethodGet, p.endpoint, p.params, nil)
	if err != nil {
		return err
	}

	p.buf = p.buf[:0]
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p.buf); err != nil {
			return &DecodeError{Endpoint: p.endpoint, Err: err}
		}
	}
	if len(p.buf) < p.pageSize {
		p.done = true
	}
	p.offset += p.pageSize
	return nil
}
