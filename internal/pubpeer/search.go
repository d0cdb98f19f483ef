// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubpeer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// searchResponse mirrors the search API page shape.
type searchResponse struct {
	Publications []types.SearchHit `json:"publications"`
	Meta         searchMeta        `json:"meta"`
}

type searchMeta struct {
	// Total is the server-reported result count, read once from the
	// first page. Nil when the server omits it.
	Total *int `json:"total"`
}

// Search returns a forward-only iterator over search hits for query. The
// iterator fetches the token lazily on the first page, paginates with an
// increasing "from" offset, and stops on an empty page, when the offset
// reaches the server-reported total, or when the configured result cap
// is hit. A politeness delay runs between pages, never after the last.
func (c *Client) Search(ctx context.Context, query string) *SearchIterator {
	return &SearchIterator{
		client: c,
		ctx:    ctx,
		query:  query,
		total:  -1,
	}
}

// SearchIterator is a restartable-per-call, single-pass iterator.
// Abandoning it mid-iteration has no side effect beyond the HTTP calls
// already issued.
type SearchIterator struct {
	client *Client
	ctx    context.Context
	query  string

	page      []types.SearchHit
	pos       int
	current   types.SearchHit
	offset    int
	collected int
	total     int // -1 until the first page reports it
	started   bool
	exhausted bool
	done      bool
	err       error
}

// Next advances the iterator, fetching the next page when the buffered
// one is consumed. It returns false when the sequence ends or fails;
// check Err afterwards.
func (it *SearchIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if it.pos >= len(it.page) {
		if !it.advance() {
			return false
		}
	}
	it.current = it.page[it.pos]
	it.pos++
	it.collected++
	if max := it.client.cfg.MaxResults; max > 0 && it.collected >= max {
		it.done = true
	}
	return true
}

// Hit returns the hit produced by the last successful Next call.
func (it *SearchIterator) Hit() types.SearchHit { return it.current }

// Err returns the failure that terminated the iteration, if any.
func (it *SearchIterator) Err() error { return it.err }

// advance fetches the next page into the buffer.
func (it *SearchIterator) advance() bool {
	if it.exhausted {
		it.done = true
		return false
	}
	if !it.started {
		if _, err := it.client.Token(it.ctx); err != nil {
			it.fail(err)
			return false
		}
		it.started = true
	} else if delay := it.client.cfg.Delay; delay > 0 {
		select {
		case <-it.ctx.Done():
			it.fail(it.ctx.Err())
			return false
		case <-time.After(delay):
		}
	}

	page, err := it.client.searchPage(it.ctx, it.query, it.offset)
	if err != nil {
		it.fail(err)
		return false
	}
	if it.total < 0 && page.Meta.Total != nil {
		it.total = *page.Meta.Total
	}
	if len(page.Publications) == 0 {
		it.done = true
		return false
	}
	it.page = page.Publications
	it.pos = 0
	it.offset += len(page.Publications)
	if it.total >= 0 && it.offset >= it.total {
		it.exhausted = true
	}
	if max := it.client.cfg.MaxResults; max > 0 && it.offset >= max {
		it.exhausted = true
	}
	return true
}

func (it *SearchIterator) fail(err error) {
	it.err = err
	it.done = true
}

// searchPage fetches one page of search results at the given offset.
func (c *Client) searchPage(ctx context.Context, query string, offset int) (*searchResponse, error) {
	params := map[string]string{
		"q":    query,
		"type": "publications",
	}
	if offset > 0 {
		params["from"] = strconv.Itoa(offset)
	}
	resp, err := c.get(ctx, "/api/search", params, true)
	if err != nil {
		return nil, err
	}
	var page searchResponse
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return &page, nil
}

// Link converts a hit into a canonical absolute detail-page URL. Hits
// with neither a link nor an id yield ok=false and are skipped.
func (c *Client) Link(hit types.SearchHit) (link string, ok bool) {
	if hit.LinkWithHash != "" {
		if strings.HasPrefix(hit.LinkWithHash, "http") {
			return hit.LinkWithHash, true
		}
		return c.BaseURL() + hit.LinkWithHash, true
	}
	if hit.PubPeerID != "" {
		return c.BaseURL() + "/publications/" + hit.PubPeerID, true
	}
	return "", false
}

// CollectLinks runs a search to completion and returns the canonical link
// for every usable hit, in result order.
func (c *Client) CollectLinks(ctx context.Context, query string) ([]string, error) {
	links := []string{}
	it := c.Search(ctx, query)
	for it.Next() {
		if link, ok := c.Link(it.Hit()); ok {
			links = append(links, link)
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// CollectHits runs a search to completion and returns the raw hits.
func (c *Client) CollectHits(ctx context.Context, query string) ([]types.SearchHit, error) {
	hits := []types.SearchHit{}
	it := c.Search(ctx, query)
	for it.Next() {
		hits = append(hits, it.Hit())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// SearchURL returns the human-browsable search page URL for phrase, with
// the phrase strictly percent-encoded (spaces as %20, not +).
func (c *Client) SearchURL(phrase string) string {
	return c.BaseURL() + "/search?q=" + strictQuote(phrase)
}

// strictQuote percent-encodes every byte outside the unreserved set.
func strictQuote(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' ||
			ch == '_' || ch == '.' || ch == '-' || ch == '~' {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[ch>>4])
		b.WriteByte(upperhex[ch&0xf])
	}
	return b.String()
}
