package client

import (
	"context"
	"sync"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"love-space-backend/services/apperrors"
)

type Stage int

const (
	// StageLocked: the shared passphrase has not been accepted yet.
	StageLocked Stage = iota
	// StageSignedOut: unlocked, nobody signed in.
	StageSignedOut
	StageReady
)

func (s Stage) String() string {
	switch s {
	case StageLocked:
		return "locked"
	case StageSignedOut:
		return "signed-out"
	case StageReady:
		return "ready"
	}
	return "unknown"
}

var (
	ErrNotReady = errors.New("not signed in")
	ErrLocked   = errors.New("shared passphrase not accepted yet")

	// ErrConfirmEmail: the account was created but must be confirmed
	// through the emailed link before signing in.
	ErrConfirmEmail = errors.New("check your email for the verification link")
)

type User struct {
	ID    string
	Email string
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// Session is the client's view of who is using it. Callers share one
// Session by pointer; it replaces any process-wide user state.
type Session struct {
	api *API

	mu    sync.Mutex
	stage Stage
	user  User
}

func NewSession(api *API) *Session {
	return &Session{api: api}
}

func (s *Session) API() *API {
	return s.api
}

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// User returns the signed in user, or ErrNotReady.
func (s *Session) User() (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageReady {
		return User{}, ErrNotReady
	}
	return s.user, nil
}

// Unlock submits the shared passphrase. A wrong passphrase leaves the
// session locked.
func (s *Session) Unlock(ctx context.Context, passphrase string) error {
	if err := s.api.ValidatePassword(ctx, passphrase); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageLocked {
		s.stage = StageSignedOut
	}
	return nil
}

// SignIn checks the email against the allow-list and then adopts the
// provider access token. The token is verified by the gate service on use;
// here it is only decoded for the user id.
func (s *Session) SignIn(ctx context.Context, email, accessToken string) error {
	if err := s.checkEmail(ctx, email); err != nil {
		return err
	}
	return s.adopt(email, accessToken)
}

// SignInWithPassword checks the email against the allow-list, then signs
// in with the provider.
func (s *Session) SignInWithPassword(ctx context.Context, auth *AuthProvider, email, password string) error {
	if err := s.checkEmail(ctx, email); err != nil {
		return err
	}
	token, err := auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	return s.adopt(email, token)
}

// SignUp checks the email against the allow-list and registers it with the
// provider. When the provider wants the email confirmed first the session
// stays signed out and ErrConfirmEmail is returned.
func (s *Session) SignUp(ctx context.Context, auth *AuthProvider, email, password string) error {
	if err := s.checkEmail(ctx, email); err != nil {
		return err
	}
	token, err := auth.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrConfirmEmail
	}
	return s.adopt(email, token)
}

func (s *Session) checkEmail(ctx context.Context, email string) error {
	if s.Stage() == StageLocked {
		return ErrLocked
	}
	return s.api.ValidateEmail(ctx, email)
}

func (s *Session) adopt(email, accessToken string) error {
	claims := &tokenClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(accessToken, claims); err != nil {
		return apperrors.Invalid("Malformed access token")
	}
	if claims.Subject == "" {
		return apperrors.Invalid("Access token has no subject")
	}
	if claims.Email != "" && claims.Email != email {
		return apperrors.Denied("Access token belongs to another email")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.api.SetToken(accessToken)
	s.user = User{ID: claims.Subject, Email: email}
	s.stage = StageReady
	return nil
}

// SignOut forgets the user. The passphrase stays accepted.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api.SetToken("")
	s.user = User{}
	if s.stage == StageReady {
		s.stage = StageSignedOut
	}
}
