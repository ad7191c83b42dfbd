// Package poster talks to the photo-sharing platform instance: login with
// session reuse, challenge handling, and photo upload.
package poster

import (
	"context"
	"errors"
)

var (
	// ErrSessionInvalid means a persisted session artifact could not be
	// reused and a fresh login is required.
	ErrSessionInvalid = errors.New("persisted session is expired or invalid")

	// ErrChallengeRequired means the platform wants a one-time verification
	// code before completing the login.
	ErrChallengeRequired = errors.New("platform requires a verification code")

	// ErrCheckpointRequired means the account is blocked behind a manual web
	// verification step. Automated login must not retry.
	ErrCheckpointRequired = errors.New("platform requires manual web verification (checkpoint)")
)

// Client is the platform capability used by the upload orchestrator.
type Client interface {
	// LoadSession restores a previously persisted session artifact and
	// validates it against the platform.
	LoadSession() error

	// Login authenticates with the given credentials. code carries the
	// one-time verification code when resubmitting after
	// ErrChallengeRequired, and is empty on the first attempt.
	Login(ctx context.Context, username, password, code string) error

	// SaveSession persists the current session artifact for future runs.
	SaveSession() error

	// Upload posts the image with the given caption and returns the media id.
	Upload(ctx context.Context, imagePath, caption string) (string, error)
}
