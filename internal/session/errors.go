package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/wayfarer-go/wayfarer/internal/gameclient"
)

// Failure classes surfaced to the scan loop.
var (
	// ErrInvalidCredentials is terminal for a login attempt; new credentials are needed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired means the handle was rejected; a re-login is required.
	ErrSessionExpired = errors.New("session expired")
	// ErrRemoteUnavailable means the backend could not be reached in time.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrInsufficientSupplies means no usable capture device is left.
	ErrInsufficientSupplies = errors.New("insufficient supplies")

	// ErrNoSession is returned by session-bound calls before a login succeeded.
	ErrNoSession = errors.New("no active session")
	// ErrLoginInProgress rejects a login while another one is in flight.
	ErrLoginInProgress = errors.New("login already in progress")
	// ErrNoCachedCredentials is returned by Relogin when nothing was bound yet.
	ErrNoCachedCredentials = errors.New("no cached credentials")
)

// classify maps an adapter failure onto the session taxonomy. A rejected handle
// is dropped so later calls report ErrNoSession until a re-login succeeds.
func (m *Manager) classify(op string, h gameclient.Session, err error) error {
	switch {
	case errors.Is(err, gameclient.ErrSessionInvalid):
		m.invalidate(h)
		return fmt.Errorf("%s: %w: %w", op, ErrSessionExpired, err)
	case errors.Is(err, gameclient.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, err)
	case errors.Is(err, gameclient.ErrNoSuchItem):
		return fmt.Errorf("%s: %w: %w", op, ErrInsufficientSupplies, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// fatal reports whether err must stop the current unit of work.
func fatal(err error) bool {
	return errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, ErrNoSession) ||
		errors.Is(err, context.Canceled)
}
