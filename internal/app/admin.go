package app

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"labor-quiz-service/internal/domain"
)

// AdminAuth checks admin credentials and marks sessions as admin.
type AdminAuth struct {
	username     string
	passwordHash []byte
	sessions     SessionStore
}

// NewAdminAuth takes the configured username and bcrypt hash. Logins always
// fail when either is empty.
func NewAdminAuth(username, passwordHash string, sessions SessionStore) *AdminAuth {
	if username == "" || passwordHash == "" {
		log.Warn().Msg("admin credentials not configured, admin login disabled")
	}
	return &AdminAuth{
		username:     username,
		passwordHash: []byte(passwordHash),
		sessions:     sessions,
	}
}

// HashPassword returns a bcrypt hash suitable for the admin config.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login verifies the credentials and upgrades the given session to admin, or
// opens a new one when sessionID is empty or unknown.
func (a *AdminAuth) Login(ctx context.Context, sessionID, username, password string) (domain.Session, error) {
	if !a.verify(username, password) {
		log.Warn().Str("username", username).Msg("admin login rejected")
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	if sessionID != "" {
		session, err := a.sessions.Get(ctx, sessionID)
		if err == nil {
			session.Admin = true
			if err := a.sessions.Save(ctx, session); err != nil {
				return domain.Session{}, err
			}
			log.Info().Str("username", username).Msg("admin logged in")
			return session, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Session{}, err
		}
	}

	session, err := a.sessions.Create(ctx, domain.Session{Admin: true})
	if err != nil {
		return domain.Session{}, err
	}
	log.Info().Str("username", username).Msg("admin logged in")
	return session, nil
}

// Logout drops the session entirely.
func (a *AdminAuth) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return a.sessions.Delete(ctx, sessionID)
}

// IsAdmin reports whether the session exists and is logged in as admin.
func (a *AdminAuth) IsAdmin(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	session, err := a.sessions.Get(ctx, sessionID)
	if err != nil {
		return false
	}
	return session.Admin
}

func (a *AdminAuth) verify(username, password string) bool {
	if a.username == "" || len(a.passwordHash) == 0 {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
