package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
)

// ErrSessionNotFound covers unknown and revoked tokens.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session/token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID int64) error
	// PurgeExpired removes sessions that expired at or before now and reports how many.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
