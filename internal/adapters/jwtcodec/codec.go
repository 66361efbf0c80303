// Package jwtcodec implements ports.TokenCodec with HS256 JWTs.
// Access and refresh tokens are signed with distinct secrets so a
// leaked access secret cannot mint long-lived refresh tokens.
package jwtcodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openquest/questlog/config"
	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/ports"
)

// accessClaims is the wire shape of an access token payload.
type accessClaims struct {
	jwt.RegisteredClaims
	Role     string `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
}

// refreshClaims is the wire shape of a refresh token payload.
// Deliberately carries nothing beyond the registered claims.
type refreshClaims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies the token pair. Now is injectable for tests.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// New builds a Codec from token configuration.
func New(cfg config.TokenConfig, opts ...Option) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwtcodec: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("jwtcodec: access and refresh secrets must differ")
	}
	c := &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IssueAccessToken mints a short-lived access token.
func (c *Codec) IssueAccessToken(claims domainauth.AccessClaims) (string, error) {
	if claims.UserID == "" {
		return "", errors.New("jwtcodec: user id is required")
	}
	now := c.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
		Role:     string(claims.Role),
		Username: claims.Username,
	})
	signed, err := token.SignedString(c.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken mints a long-lived refresh token carrying only the user id.
func (c *Codec) IssueRefreshToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("jwtcodec: user id is required")
	}
	now := c.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	})
	signed, err := token.SignedString(c.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature, method, and expiry against the access secret.
func (c *Codec) VerifyAccessToken(token string) (domainauth.AccessClaims, error) {
	var parsed accessClaims
	if err := c.parse(token, &parsed, c.accessSecret); err != nil {
		return domainauth.AccessClaims{}, err
	}
	return domainauth.AccessClaims{
		UserID:   parsed.Subject,
		Role:     domainauth.Role(parsed.Role),
		Username: parsed.Username,
	}, nil
}

// VerifyRefreshToken validates a refresh token against the refresh secret.
func (c *Codec) VerifyRefreshToken(token string) (domainauth.RefreshClaims, error) {
	var parsed refreshClaims
	if err := c.parse(token, &parsed, c.refreshSecret); err != nil {
		return domainauth.RefreshClaims{}, err
	}
	return domainauth.RefreshClaims{UserID: parsed.Subject}, nil
}

func (c *Codec) parse(token string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return mapJWTError(err)
	}
	return nil
}

// mapJWTError translates jwt library errors to the port's sentinel errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ports.ErrTokenExpired
	}
	return fmt.Errorf("%w: %w", ports.ErrTokenInvalid, err)
}

var _ ports.TokenCodec = (*Codec)(nil)
