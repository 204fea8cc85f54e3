package credentials

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

// Claims is a display-only view of the access token. It is decoded without
// signature verification and never influences the session.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	Email     string    `json:"email,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
}

// Expired reports whether the token carries an expiry that lies before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// Inspect decodes the JWT claims of the bundle's access token.
// Opaque (non-JWT) tokens return ErrOpaqueToken.
func Inspect(b *Bundle) (Claims, error) {
	if !b.Valid() {
		return Claims{}, apperrors.ErrNoCredentials
	}
	if strings.Count(b.AccessToken, ".") != 2 {
		return Claims{}, apperrors.ErrOpaqueToken
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(b.AccessToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, apperrors.Wrapf(apperrors.ErrOpaqueToken, "parse: %v", err)
	}
	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, apperrors.ErrOpaqueToken
	}

	var claims Claims
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Issuer, _ = mapClaims.GetIssuer()
	claims.Email, _ = mapClaims["email"].(string)
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
