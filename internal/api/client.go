// Package api is the client for the program's REST backend: the token store,
// the authenticated request gateway, the login exchange, and the athlete
// roster controller the admin dashboard renders from.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"xcsite/internal/domain/athlete"
	"xcsite/internal/domain/meet"
	"xcsite/internal/domain/result"
)

// Client wraps the Gateway with typed calls for the site's pages.
type Client struct {
	gateway *Gateway
	tokens  TokenStore
}

// NewClient creates a Client over the given gateway and token store.
// PRE: gateway and tokens share the same TokenStore
func NewClient(gateway *Gateway, tokens TokenStore) *Client {
	return &Client{gateway: gateway, tokens: tokens}
}

// Gateway exposes the underlying gateway for callers that need raw requests.
func (c *Client) Gateway() *Gateway {
	return c.gateway
}

// Login exchanges the admin password for a bearer token and persists it.
// The exchange itself skips the 401 session-expiry interception so a wrong
// password surfaces inline instead of forcing a logout redirect.
// POST: On success the token store holds the returned token
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return "", ErrLoginUnavailable
	}

	resp, err := c.gateway.Do(ctx, http.MethodPost, "/api/admin/login", body, &RequestOptions{SkipSessionExpiry: true})
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "reason", "transport", "error", err.Error())
		return "", ErrLoginUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Info("auth_event", "event", "login_failed", "reason", "wrong_password")
		return "", ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Info("auth_event", "event", "login_failed", "reason", "status", "status", resp.StatusCode)
		return "", ErrLoginUnavailable
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Token == "" {
		return "", ErrLoginUnavailable
	}

	if err := c.tokens.Set(payload.Token); err != nil {
		return "", fmt.Errorf("persisting token: %w", err)
	}
	slog.Info("auth_event", "event", "login_success")
	return payload.Token, nil
}

// Logout clears the persisted token. It does not call the backend.
func (c *Client) Logout() error {
	slog.Info("auth_event", "event", "logout")
	return c.tokens.Clear()
}

// Athletes fetches the roster for the public pages without touching the
// admin Roster controller's collection.
// POST: Returns athletes in server order, or ErrFetchFailed
func (c *Client) Athletes(ctx context.Context) ([]athlete.Athlete, error) {
	var athletes []athlete.Athlete
	if err := c.getJSON(ctx, "/api/athletes", &athletes); err != nil {
		return nil, err
	}
	return athletes, nil
}

// Meets fetches the season calendar.
// POST: Returns meets in server order, or ErrFetchFailed
func (c *Client) Meets(ctx context.Context) ([]meet.Meet, error) {
	var meets []meet.Meet
	if err := c.getJSON(ctx, "/api/meets", &meets); err != nil {
		return nil, err
	}
	return meets, nil
}

// Results fetches all recorded race results.
// POST: Returns results in server order, or ErrFetchFailed
func (c *Client) Results(ctx context.Context) ([]result.Result, error) {
	var results []result.Result
	if err := c.getJSON(ctx, "/api/results", &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.gateway.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return err
		}
		return ErrFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrFetchFailed
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ErrFetchFailed
	}
	return nil
}
