package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rentchain/rentclient/internal/core/domain"
)

// Claims is the identity payload of a backend token.
type Claims struct {
	Email string                  `json:"email,omitempty"`
	Role  domain.Role             `json:"role,omitempty"`
	Types []domain.CapabilityType `json:"types,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsDecoder reads backend tokens. With a secret it verifies the HS256
// signature; without one the payload is trusted as issued.
type ClaimsDecoder struct {
	secret []byte
	now    func() time.Time
}

func NewClaimsDecoder(secret string) *ClaimsDecoder {
	d := &ClaimsDecoder{now: time.Now}
	if secret != "" {
		d.secret = []byte(secret)
	}
	return d
}

// Decode returns the token claims. Expiry is not enforced here; use Check.
func (d *ClaimsDecoder) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if d.secret == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("decode token: %w", err)
		}
		return claims, nil
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return d.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}

// Check rejects malformed or expired tokens. Tokens that are not JWTs are
// accepted as opaque.
func (d *ClaimsDecoder) Check(token string) error {
	claims, err := d.Decode(token)
	if err != nil {
		if d.secret == nil && errors.Is(err, jwt.ErrTokenMalformed) {
			return nil
		}
		return err
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(d.now()) {
		return fmt.Errorf("check token: %w", jwt.ErrTokenExpired)
	}
	return nil
}
