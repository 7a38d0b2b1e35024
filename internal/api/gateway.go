package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// RequestOptions tune a single Gateway call.
type RequestOptions struct {
	// SkipSessionExpiry disables the 401 interception for this call.
	// The login exchange uses it so a wrong password surfaces as
	// ErrInvalidCredentials instead of a forced logout.
	SkipSessionExpiry bool
	// Header entries are set on the outgoing request before defaults apply.
	Header http.Header
}

// Gateway constructs authenticated requests against the REST backend. It
// attaches the bearer token when one is present and normalizes JSON bodies.
// On a 401 it clears the token store and returns ErrSessionExpired — it never
// performs navigation itself; the web layer is the single subscriber that
// turns ErrSessionExpired into a redirect.
type Gateway struct {
	baseURL string
	tokens  TokenStore
	client  *http.Client
}

// NewGateway creates a Gateway for the given base URL and token store.
// PRE: baseURL has no trailing slash; tokens is non-nil
// POST: Returns a ready-to-use gateway
func NewGateway(baseURL string, tokens TokenStore, client *http.Client) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		client:  client,
	}
}

// Do sends a request. Root-relative paths are prefixed with the base URL;
// absolute URLs pass through verbatim. The caller owns the response body and
// is responsible for inspecting the status — except for 401, which (unless
// opted out) clears the token store and returns ErrSessionExpired without
// exposing the response.
// PRE: method is a valid HTTP method; path is root-relative or absolute
// POST: Returns the backend response, or an error if the transport failed or
// the session expired
func (g *Gateway) Do(ctx context.Context, method, path string, body []byte, opts *RequestOptions) (*http.Response, error) {
	url := path
	if strings.HasPrefix(path, "/") {
		url = g.baseURL + path
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	if opts != nil {
		for k, vs := range opts.Header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}
	if token, ok := g.tokens.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && (opts == nil || !opts.SkipSessionExpiry) {
		resp.Body.Close()
		if err := g.tokens.Clear(); err != nil {
			slog.Error("token_clear_failed", "error", err.Error())
		}
		slog.Info("auth_event", "event", "session_expired", "path", path)
		return nil, ErrSessionExpired
	}

	return resp, nil
}
