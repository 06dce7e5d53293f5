// Package auth signs and verifies the compact HS256 tokens carried by clients.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of both token classes. RotationID is only set on
// refresh tokens, where it names the persisted record.
type Claims struct {
	Roles      []string `json:"roles"`
	Email      string   `json:"email"`
	RotationID string   `json:"tokenId,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims builds the claims for an identity.
func NewClaims(id models.Identity, rotationID string) Claims {
	roles := make([]string, len(id.Roles))
	copy(roles, id.Roles)
	return Claims{
		Roles:            roles,
		Email:            id.Email,
		RotationID:       rotationID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.ID},
	}
}

// Identity returns the identity embedded in the claims.
func (c *Claims) Identity() models.Identity {
	return models.Identity{ID: c.Subject, Roles: c.Roles, Email: c.Email}
}

// Codec signs and verifies tokens with a single HMAC secret. One Codec is
// built per token class so the classes never share a key.
type Codec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithClock overrides time.Now for signing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a Codec for secret, which must not be empty.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", common.ErrInvalidConfig)
	}

	c := &Codec{secret: secret, now: time.Now}
	for _, o := range opts {
		o(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Sign stamps claims with iat = now and exp = now + ttlSeconds and returns
// the signed compact token.
func (c *Codec) Sign(claims Claims, ttlSeconds int64) (string, error) {
	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(ttlSeconds) * time.Second))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, structure and expiry. Every failure wraps
// common.ErrInvalidToken; an expired token additionally matches
// jwt.ErrTokenExpired.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := c.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	return claims, nil
}
