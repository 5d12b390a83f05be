package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medsupply/cotizaciones-api/pkg/config"
)

var (
	ErrMissingSecret  = errors.New("jwt secret is required")
	ErrMissingIssuer  = errors.New("jwt issuer is required")
	ErrIncompleteUser = errors.New("token principal incomplete")
)

// Tokens are HS256 only; a header naming another alg is rejected.
var signingMethod = jwt.SigningMethodHS256

func (p AccessTokenPayload) validate() error {
	if p.UserID <= 0 || !p.Role.IsValid() {
		return fmt.Errorf("%w: id=%d rol=%q", ErrIncompleteUser, p.UserID, p.Role)
	}
	return nil
}

func (p AccessTokenPayload) claims(cfg config.JWTConfig, now time.Time) AccessTokenClaims {
	return AccessTokenClaims{
		UserID:   p.UserID,
		Username: p.Username,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration())),
		},
	}
}

// MintAccessToken signs payload with the configured secret. The token
// expires cfg.Expiration() after now.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", ErrMissingSecret
	case cfg.Issuer == "":
		return "", ErrMissingIssuer
	}
	if err := payload.validate(); err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(signingMethod, payload.claims(cfg, now)).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry and returns the
// principal carried by the token.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}

	principal := AccessTokenPayload{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
	if err := principal.validate(); err != nil {
		return nil, err
	}
	return claims, nil
}
