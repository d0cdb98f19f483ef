// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubpeer implements the session-bound PubPeer client: token
// management, paginated search, detail-page fetching, and the shared
// retry policy that keeps long harvest runs alive across transient
// failures and token expiry.
package pubpeer

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// retryableStatuses trigger a session reset and a retry. A 403 on the
// token-bearing search endpoint is handled separately as token expiry.
var retryableStatuses = map[int]bool{
	403: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// Client owns one HTTP session against the service and the anti-automation
// token tied to it. It is not safe for concurrent use: the token and the
// session are replaced in place on failure, and the service invalidates
// tokens that are used concurrently anyway.
type Client struct {
	cfg             types.ClientConfig
	http            *resty.Client
	externalSession bool
	csrfToken       string
	log             zerolog.Logger
}

// New returns a client with a fresh cookie-jar session.
func New(cfg types.ClientConfig, logger zerolog.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: newSession(cfg),
		log:  logger,
	}
}

// NewWithSession returns a client on top of a caller-owned session. The
// session is reused as-is across failures and never replaced; its
// User-Agent is set only when the caller has not set one.
func NewWithSession(cfg types.ClientConfig, session *resty.Client, logger zerolog.Logger) *Client {
	if session.Header.Get("User-Agent") == "" {
		session.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Client{
		cfg:             cfg,
		http:            session,
		externalSession: true,
		log:             logger,
	}
}

func newSession(cfg types.ClientConfig) *resty.Client {
	session := resty.New()
	if jar, err := cookiejar.New(nil); err == nil {
		session.SetCookieJar(jar)
	}
	session.SetTimeout(cfg.Timeout)
	session.SetHeader("User-Agent", cfg.UserAgent)
	return session
}

// resetSession discards the current session, and with it any cookies the
// service has tied to the expiring token. Caller-owned sessions are kept.
func (c *Client) resetSession() {
	if c.externalSession {
		return
	}
	c.http = newSession(c.cfg)
	c.log.Debug().Msg("recreated http session")
}

// BaseURL returns the configured service root without a trailing slash.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

// Config returns the client configuration.
func (c *Client) Config() types.ClientConfig { return c.cfg }

// Token returns the cached anti-automation token, fetching the landing
// page on first use.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.csrfToken != "" {
		return c.csrfToken, nil
	}
	return c.RefreshToken(ctx, false)
}

// RefreshToken fetches the landing page and extracts a fresh token from
// the csrf-token meta tag. With force set, the cached token is discarded
// first so a concurrent expiry signal cannot resurrect it.
func (c *Client) RefreshToken(ctx context.Context, force bool) (string, error) {
	if force {
		c.csrfToken = ""
	}
	resp, err := c.http.R().SetContext(ctx).Get(c.BaseURL() + "/")
	if err != nil {
		return "", &RequestError{Endpoint: "/", Err: err}
	}
	if resp.IsError() {
		return "", &RequestError{Endpoint: "/", StatusCode: resp.StatusCode()}
	}
	token, ok := findCSRFToken(resp.Body())
	if !ok {
		return "", ErrTokenUnavailable
	}
	c.csrfToken = token
	c.log.Debug().Msg("refreshed csrf token")
	return token, nil
}

// findCSRFToken locates <meta name="csrf-token" content="..."> in the
// landing page. The name match is case-insensitive.
func findCSRFToken(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	var token string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if name, _ := s.Attr("name"); strings.EqualFold(name, "csrf-token") {
			token, _ = s.Attr("content")
			return false
		}
		return true
	})
	return token, token != ""
}

// get issues one GET against path with the given query parameters,
// applying the unified retry policy:
//
//   - transport errors and HTTP error statuses reset the session, sleep
//     backoff*attempt, and retry up to MaxRetries attempts;
//   - when needsToken is set, every retried failure also forces a token
//     refresh, and a bare 403 is treated as token expiry: refresh only,
//     session kept;
//   - exhausting the budget re-raises the last captured failure, or
//     ErrRetriesExhausted when only rate-limit style statuses were seen.
//
// Refreshing the token even on non-auth errors mirrors the service's
// observed behavior of binding tokens to sessions.
func (c *Client) get(ctx context.Context, path string, params map[string]string, needsToken bool) (*resty.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		req := c.http.R().SetContext(ctx)
		if len(params) > 0 {
			req.SetQueryParams(params)
		}
		if needsToken {
			token, err := c.Token(ctx)
			if err != nil {
				return nil, err
			}
			req.SetQueryParam("token", token)
		}

		resp, err := req.Get(c.BaseURL() + path)
		if err != nil {
			lastErr = &RequestError{Endpoint: path, Err: err}
			c.log.Warn().Err(err).Str("path", path).Int("attempt", attempt).Msg("request failed")
			c.resetSession()
			if rerr := c.recoverToken(ctx, needsToken); rerr != nil {
				return nil, rerr
			}
			if serr := c.backoff(ctx, attempt); serr != nil {
				return nil, serr
			}
			continue
		}

		status := resp.StatusCode()
		switch {
		case needsToken && status == 403:
			// Token expiry signal: refresh without touching the session.
			c.log.Debug().Int("attempt", attempt).Msg("got 403, refreshing token")
			if _, rerr := c.RefreshToken(ctx, true); rerr != nil {
				return nil, rerr
			}
		case retryableStatuses[status]:
			c.log.Warn().Int("status", status).Str("path", path).Int("attempt", attempt).Msg("retryable status")
			c.resetSession()
			if rerr := c.recoverToken(ctx, needsToken); rerr != nil {
				return nil, rerr
			}
		case status >= 400:
			lastErr = &RequestError{Endpoint: path, StatusCode: status}
			c.log.Warn().Int("status", status).Str("path", path).Int("attempt", attempt).Msg("http error")
			c.resetSession()
			if rerr := c.recoverToken(ctx, needsToken); rerr != nil {
				return nil, rerr
			}
		default:
			return resp, nil
		}

		if serr := c.backoff(ctx, attempt); serr != nil {
			return nil, serr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrRetriesExhausted
}

func (c *Client) recoverToken(ctx context.Context, needsToken bool) error {
	if !needsToken {
		return nil
	}
	_, err := c.RefreshToken(ctx, true)
	return err
}

// backoff sleeps attempt*RetryBackoff, honoring context cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt) * c.cfg.RetryBackoff
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// pause sleeps the configured politeness delay, honoring cancellation.
func (c *Client) pause(ctx context.Context) error {
	if c.cfg.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cfg.Delay):
		return nil
	}
}
