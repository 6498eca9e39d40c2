package token

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/hearth/internal/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")
	id := auth.Identity{UserID: 7, FamilyID: 3, Role: "parent"}

	signed, err := issuer.IssueAccess(id)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	got, err := issuer.VerifyAccess(signed)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if got != id {
		t.Errorf("identity = %+v, want %+v", got, id)
	}
}

func TestRefreshTokenOmitsRole(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	signed, err := issuer.IssueRefresh(auth.Identity{UserID: 7, FamilyID: 3, Role: "parent"})
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	got, err := issuer.VerifyRefresh(signed)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if got.Role != "" {
		t.Errorf("refresh token carries role %q, want none", got.Role)
	}
	if got.UserID != 7 || got.FamilyID != 3 {
		t.Errorf("identity = %+v", got)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewIssuerTTL("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	signed, err := issuer.IssueAccess(auth.Identity{FamilyID: 3})
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	if _, err := issuer.VerifyAccess(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestCrossSecretRejected(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	// A refresh token must not verify as an access token.
	refresh, err := issuer.IssueRefresh(auth.Identity{UserID: 7, FamilyID: 3})
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if _, err := issuer.VerifyAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh verified as access, err = %v", err)
	}

	// A token from a differently keyed issuer must not verify either.
	other := NewIssuer("other-secret", "refresh-secret")
	signed, err := other.IssueAccess(auth.Identity{FamilyID: 3})
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := issuer.VerifyAccess(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token accepted, err = %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := issuer.VerifyAccess(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccess(%q) err = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestMissingFamilyIDRejected(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	signed, err := issuer.IssueAccess(auth.Identity{UserID: 7})
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := issuer.VerifyAccess(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token without family accepted, err = %v", err)
	}
}
