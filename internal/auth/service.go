package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sorjordet/sorjordet/pkg/logger"
	"github.com/sorjordet/sorjordet/pkg/validator"
)

// RegisteredUser is the passwordless record returned by registration.
type RegisteredUser struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Service orchestrates the login and registration flows.
type Service struct {
	store    Store
	hasher   *Hasher
	issuer   *TokenIssuer
	log      *slog.Logger
	minDelay time.Duration
	policy   validator.PasswordStrengthConfig
}

// NewService wires the login flow. minDelay comes from Config.MinLoginDelay.
func NewService(store Store, hasher *Hasher, issuer *TokenIssuer, cfg Config, log *slog.Logger) *Service {
	minDelay := cfg.MinLoginDelay
	if minDelay < 0 {
		minDelay = 0
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		log:      log,
		minDelay: minDelay,
		policy:   validator.DefaultPasswordStrength(),
	}
}

// Login verifies the credentials and returns a signed bearer token. Both
// failure branches (unknown username, wrong password) return
// ErrInvalidCredential and are held to the same minimum duration, so neither
// the error nor the latency reveals whether the username exists. Datastore
// failures propagate as-is: they are an operational problem, not an
// authentication outcome.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	started := time.Now()
	username = strings.TrimSpace(username)

	cred, err := s.store.FindCredentialByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			s.log.Info("login failed", slog.String("username", username), logger.Component("auth"))
			if derr := s.equalize(ctx, started); derr != nil {
				return "", derr
			}
			return "", ErrInvalidCredential
		}
		return "", err
	}

	if err := s.hasher.Verify(password, cred.PasswordHash); err != nil {
		s.log.Info("login failed", slog.String("username", username), logger.Component("auth"))
		if derr := s.equalize(ctx, started); derr != nil {
			return "", derr
		}
		return "", ErrInvalidCredential
	}

	token, err := s.issuer.Issue(cred.Username)
	if err != nil {
		return "", err
	}

	s.recordLastLogin(cred.ID, cred.Username)

	return token, nil
}

// Register validates the password policy, hashes the password, and persists
// the credential. The caller must already be authenticated; the guard
// enforces that upstream.
func (s *Service) Register(ctx context.Context, username, password, email string) (*RegisteredUser, error) {
	username = strings.TrimSpace(username)

	if err := validator.Apply(
		validator.Required("username", username),
		validator.MaxLen("username", username, 64),
		validator.ValidEmail("email", email),
		validator.StrongPassword("password", password, s.policy),
		validator.NotCommonPassword("password", password),
	); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	id, err := s.store.InsertCredential(ctx, username, hash, email)
	if err != nil {
		return nil, err
	}

	return &RegisteredUser{ID: id, Name: username, Email: email}, nil
}

// equalize suspends until at least minDelay has passed since started. The
// wait is a scheduled timer, not a busy block, and honors cancellation.
func (s *Service) equalize(ctx context.Context, started time.Time) error {
	remaining := s.minDelay - time.Since(started)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recordLastLogin updates the last-login timestamp without blocking the
// response. Best effort: failures are logged, never surfaced.
func (s *Service) recordLastLogin(id int32, username string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("last-login update panicked",
					slog.Any("panic", r),
					logger.Component("auth"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.store.UpdateLastLogin(ctx, id); err != nil {
			s.log.Error("failed to record last login",
				slog.String("username", username),
				logger.Error(err),
				logger.Component("auth"),
			)
		}
	}()
}
