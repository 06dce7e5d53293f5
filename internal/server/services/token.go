// Package services contains server-side business logic. This file implements
// TokenService, which issues access/refresh token pairs, rotates refresh
// tokens exactly once, revokes them on logout and verifies access tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IdentityResolver is the user directory. FindByID returns
// common.ErrorNotFound when the user no longer exists.
type IdentityResolver interface {
	FindByID(ctx context.Context, id string) (*models.Identity, error)
}

// Recorder receives lifecycle events, typically *metrics.Metrics.
type Recorder interface {
	Issued()
	Rotated()
	RotationFailed(reason string)
	Revoked()
	Verified(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) Issued()               {}
func (nopRecorder) Rotated()              {}
func (nopRecorder) RotationFailed(string) {}
func (nopRecorder) Revoked()              {}
func (nopRecorder) Verified(bool)         {}

// TokenService owns the refresh-token state machine: a record is created
// active on issuance and revoked exactly once, by rotation or logout.
type TokenService struct {
	repomanager repomanager.RepositoryManager
	access      *auth.Codec
	refresh     *auth.Codec

	accessTTLSeconds  int64
	refreshTTLSeconds int64
	refreshTTL        time.Duration

	now      func() time.Time
	newID    func() string
	resolver IdentityResolver
	logger   logging.Logger
	recorder Recorder
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock overrides time.Now for signing, expiry checks and revocation stamps.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *TokenService) { s.logger = l }
}

// WithRecorder sets the lifecycle event sink.
func WithRecorder(r Recorder) Option {
	return func(s *TokenService) { s.recorder = r }
}

// WithIDGenerator overrides the rotation id generator (uuid.NewString).
func WithIDGenerator(gen func() string) Option {
	return func(s *TokenService) { s.newID = gen }
}

// WithIdentityResolver makes Rotate reload the identity from the user
// directory instead of trusting the refresh token's claims.
func WithIdentityResolver(r IdentityResolver) Option {
	return func(s *TokenService) { s.resolver = r }
}

// NewTokenService builds the service from the token settings in cfg. Bad TTL
// strings fail with common.ErrInvalidDuration and empty secrets with
// common.ErrInvalidConfig.
func NewTokenService(m repomanager.RepositoryManager, cfg *config.Config, opts ...Option) (*TokenService, error) {
	s := &TokenService{
		repomanager: m,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logging.Nop{},
		recorder:    nopRecorder{},
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "token_service")

	var err error
	if s.accessTTLSeconds, err = timex.ParseSeconds(cfg.AccessTokenTTL); err != nil {
		return nil, fmt.Errorf("access token ttl: %w", err)
	}
	if s.refreshTTLSeconds, err = timex.ParseSeconds(cfg.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("refresh token ttl: %w", err)
	}
	if s.refreshTTL, err = timex.Parse(cfg.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("refresh token ttl: %w", err)
	}

	if s.access, err = auth.NewCodec([]byte(cfg.AccessTokenSecret), auth.WithClock(s.now)); err != nil {
		return nil, fmt.Errorf("access codec: %w", err)
	}
	if s.refresh, err = auth.NewCodec([]byte(cfg.RefreshTokenSecret), auth.WithClock(s.now)); err != nil {
		return nil, fmt.Errorf("refresh codec: %w", err)
	}

	return s, nil
}

// Issue mints a new pair for identity and persists the refresh record. It is
// the entry transition for login and registration.
func (s *TokenService) Issue(ctx context.Context, identity models.Identity) (*TokenPair, error) {
	var pair *TokenPair
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repo refreshtokens.Repository) error {
		var err error
		pair, err = s.issue(ctx, repo, identity)
		return err
	})
	if err != nil {
		return nil, s.internal(ctx, "issue failed", err, "user_id", identity.ID)
	}

	s.recorder.Issued()
	return pair, nil
}

// Rotate exchanges a refresh token for a new pair. Each refresh token is
// accepted at most once: the old record is revoked in the same transaction
// that stores the new one.
//
// Errors: common.ErrInvalidToken (bad signature, malformed or claim-level
// expiry), common.ErrTokenNotFound (unknown, revoked, already rotated or the
// user is gone), common.ErrTokenExpired (persisted expiry passed), or
// common.ErrorInternal for storage faults.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, *models.Identity, error) {
	if refreshToken == "" {
		return nil, nil, s.rotationFailed(ctx, common.ErrInvalidToken)
	}

	claims, err := s.refresh.Verify(refreshToken)
	if err != nil {
		return nil, nil, s.rotationFailed(ctx, err)
	}
	if claims.RotationID == "" {
		return nil, nil, s.rotationFailed(ctx, fmt.Errorf("%w: missing rotation id", common.ErrInvalidToken))
	}

	var (
		pair     *TokenPair
		identity models.Identity
	)
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repo refreshtokens.Repository) error {
		rec, err := repo.FindActiveByToken(ctx, refreshToken)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		if rec.ID != claims.RotationID || rec.UserID != claims.Subject {
			return fmt.Errorf("%w: record does not match claims", common.ErrInvalidToken)
		}

		now := s.now()
		if rec.ExpiredAt(now) {
			return common.ErrTokenExpired
		}

		identity = claims.Identity()
		if s.resolver != nil {
			resolved, err := s.resolver.FindByID(ctx, rec.UserID)
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenNotFound
			}
			if err != nil {
				return fmt.Errorf("resolve identity: %w", err)
			}
			identity = *resolved
		}

		won, err := repo.RevokeByID(ctx, rec.ID, now)
		if err != nil {
			return err
		}
		if !won {
			return common.ErrTokenNotFound
		}

		pair, err = s.issue(ctx, repo, identity)
		return err
	})
	if errors.Is(err, common.ErrConflict) {
		err = fmt.Errorf("%w: %w", common.ErrTokenNotFound, err)
	}
	if err != nil {
		return nil, nil, s.rotationFailed(ctx, err, "rotation_id", claims.RotationID)
	}

	s.logger.Info(ctx, "refresh token rotated", "user_id", identity.ID, "rotation_id", claims.RotationID)
	s.recorder.Rotated()
	s.recorder.Issued()
	return pair, &identity, nil
}

// Revoke marks the record behind refreshToken as revoked. Unknown and already
// revoked tokens are a no-op; only storage faults are returned.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.repomanager.RefreshTokens().RevokeByToken(ctx, refreshToken, s.now()); err != nil {
		return s.internal(ctx, "revoke failed", err)
	}

	s.recorder.Revoked()
	return nil
}

// VerifyAccess returns the claims of a valid access token. Any failure,
// including an empty token, yields ok == false. It never touches storage.
func (s *TokenService) VerifyAccess(accessToken string) (*auth.Claims, bool) {
	if accessToken == "" {
		s.recorder.Verified(false)
		return nil, false
	}

	claims, err := s.access.Verify(accessToken)
	if err != nil {
		s.recorder.Verified(false)
		return nil, false
	}

	s.recorder.Verified(true)
	return claims, true
}

// issue signs a pair under a fresh rotation id and stores its record through
// repo. A rotation id collision is retried once with a new id.
func (s *TokenService) issue(ctx context.Context, repo refreshtokens.Repository, identity models.Identity) (*TokenPair, error) {
	for attempt := 0; attempt < 2; attempt++ {
		rotationID := s.newID()

		access, err := s.access.Sign(auth.NewClaims(identity, ""), s.accessTTLSeconds)
		if err != nil {
			return nil, err
		}
		refresh, err := s.refresh.Sign(auth.NewClaims(identity, rotationID), s.refreshTTLSeconds)
		if err != nil {
			return nil, err
		}

		now := s.now()
		err = repo.Create(ctx, &models.RefreshToken{
			ID:        rotationID,
			UserID:    identity.ID,
			Token:     refresh,
			ExpiresAt: now.Add(s.refreshTTL),
			CreatedAt: now,
		})
		if err == nil {
			return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
		}
		if !errors.Is(err, common.ErrDuplicateID) {
			return nil, err
		}
		s.logger.Warn(ctx, "rotation id collision", "rotation_id", rotationID, "attempt", attempt+1)
	}

	return nil, fmt.Errorf("%w: collision persisted after retry", common.ErrDuplicateID)
}

// rotationFailed classifies err into one of the user-facing kinds or an
// internal fault, records it and returns the error to hand to the caller.
func (s *TokenService) rotationFailed(ctx context.Context, err error, args ...any) error {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		s.recorder.RotationFailed("invalid_token")
	case errors.Is(err, common.ErrTokenNotFound):
		s.recorder.RotationFailed("not_found")
	case errors.Is(err, common.ErrTokenExpired):
		s.recorder.RotationFailed("expired")
	default:
		s.recorder.RotationFailed("internal")
		return s.internal(ctx, "rotate failed", err, args...)
	}

	s.logger.Debug(ctx, "refresh token rejected", append(args, "reason", err.Error())...)
	return err
}

func (s *TokenService) internal(ctx context.Context, msg string, err error, args ...any) error {
	s.logger.Error(ctx, msg, append(args, "error", err.Error())...)
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
