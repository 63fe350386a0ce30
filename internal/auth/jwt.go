// internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A magic-login token can only be exchanged, never used as a bearer.
const (
	PurposeAccess     = "access"
	PurposeMagicLogin = "magic-login"
)

const (
	UserTokenTTL  = 7 * 24 * time.Hour
	AdminTokenTTL = time.Hour
	MagicLinkTTL  = 15 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

type Claims struct {
	UserID  string `json:"uid"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"typ"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 token for userID valid for ttl.
func (tm *TokenManager) Issue(userID, role, purpose string, ttl time.Duration) (string, error) {
	now := tm.now()
	claims := Claims{
		UserID:  userID,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Parse verifies signature, expiry and issuer, and rejects tokens minted for another purpose.
func (tm *TokenManager) Parse(tokenStr, purpose string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
