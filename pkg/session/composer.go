package session

import (
	"context"

	"github.com/openlearnco/classgate/pkg/auth"
	"github.com/openlearnco/classgate/pkg/backend"
	"github.com/openlearnco/classgate/pkg/observability"
)

// Session is a request-scoped view of a verified identity plus the
// user's most recent enrollment context. Sessions are never persisted or
// shared across requests; there is no server-side session store.
type Session struct {
	User         *auth.User `json:"user"`
	EnrollmentID *string    `json:"enrollmentId"`
	ClassID      *string    `json:"classId"`
}

// Provider is the slice of the content API that session composition and
// login need.
type Provider interface {
	Login(ctx context.Context, identifier, password string) (*backend.LoginResponse, error)
	Me(ctx context.Context, token string) (*auth.User, error)
	LatestEnrollment(ctx context.Context, token string, userID int) (*backend.Enrollment, error)
}

// Composer builds sessions from verified identities
type Composer struct {
	provider Provider
	logger   *observability.Logger
}

// NewComposer creates a session composer
func NewComposer(provider Provider, logger *observability.Logger) *Composer {
	return &Composer{
		provider: provider,
		logger:   logger,
	}
}

// Compose fetches the user's newest enrollment and assembles the session.
// An enrollment lookup failure must never block a login: the session
// degrades to nil enrollment fields with a warning.
func (c *Composer) Compose(ctx context.Context, token string, user *auth.User) *Session {
	session := &Session{User: user}

	enrollment, err := c.provider.LatestEnrollment(ctx, token, user.ID)
	if err != nil {
		c.logger.WithError(err).
			WithField("user_id", user.ID).
			Warn("enrollment lookup failed, composing partial session")
		return session
	}
	if enrollment == nil {
		return session
	}

	session.EnrollmentID = &enrollment.DocumentID
	if enrollment.Class != nil {
		session.ClassID = &enrollment.Class.DocumentID
	}

	return session
}
