// Package token issues and verifies the signed bearer tokens used by the
// REST API and the WebSocket channel.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/hearth/internal/auth"
)

const (
	AccessTTL  = time.Hour
	RefreshTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by both token kinds. Refresh tokens omit Role; it is
// re-derived from the user row when a new access token is minted.
type Claims struct {
	UserID   int64  `json:"user_id,omitempty"`
	FamilyID int64  `json:"family_id"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs access and refresh tokens with separate secrets so one kind
// can never be replayed as the other.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     AccessTTL,
		refreshTTL:    RefreshTTL,
	}
}

// NewIssuerTTL is like NewIssuer with explicit lifetimes, for tests.
func NewIssuerTTL(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	i := NewIssuer(accessSecret, refreshSecret)
	i.accessTTL = accessTTL
	i.refreshTTL = refreshTTL
	return i
}

// IssueAccess signs a 1-hour access token carrying the full identity.
func (i *Issuer) IssueAccess(id auth.Identity) (string, error) {
	return sign(i.accessSecret, Claims{
		UserID:   id.UserID,
		FamilyID: id.FamilyID,
		Role:     id.Role,
	}, i.accessTTL)
}

// IssueRefresh signs a 7-day refresh token. Role is intentionally omitted.
func (i *Issuer) IssueRefresh(id auth.Identity) (string, error) {
	return sign(i.refreshSecret, Claims{
		UserID:   id.UserID,
		FamilyID: id.FamilyID,
	}, i.refreshTTL)
}

// VerifyAccess validates signature and expiry of an access token.
func (i *Issuer) VerifyAccess(tokenString string) (auth.Identity, error) {
	return verify(i.accessSecret, tokenString)
}

// VerifyRefresh validates signature and expiry of a refresh token.
func (i *Issuer) VerifyRefresh(tokenString string) (auth.Identity, error) {
	return verify(i.refreshSecret, tokenString)
}

func sign(secret []byte, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func verify(secret []byte, tokenString string) (auth.Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return auth.Identity{}, ErrInvalidToken
	}
	if claims.FamilyID == 0 {
		return auth.Identity{}, ErrInvalidToken
	}
	return auth.Identity{
		UserID:   claims.UserID,
		FamilyID: claims.FamilyID,
		Role:     claims.Role,
	}, nil
}
