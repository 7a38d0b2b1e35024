package api

import "errors"

// Operation errors surfaced by the backend client. Handlers convert these to
// human-readable messages; none propagate past the page that triggered them.
var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrLoginUnavailable   = errors.New("login service unavailable")
	ErrSessionExpired     = errors.New("session expired")
	ErrFetchFailed        = errors.New("failed to fetch athletes")
	ErrCreateFailed       = errors.New("failed to create athlete")
	ErrUpdateFailed       = errors.New("failed to update athlete")
	ErrDeleteFailed       = errors.New("failed to delete athlete")
	ErrNotFound           = errors.New("athlete not found")
)
