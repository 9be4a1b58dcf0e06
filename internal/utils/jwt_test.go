package utils

import "testing"

func TestVerifyTokenRoundTrip(t *testing.T) {
	tok, err := NewVerifyToken("secret", 42, 60)
	if err != nil {
		t.Fatalf("issue verify token: %v", err)
	}
	uid, err := ParseVerifyToken("secret", tok)
	if err != nil {
		t.Fatalf("parse verify token: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected user 42, got %d", uid)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewVerifyToken("secret", 42, 60)
	if err != nil {
		t.Fatalf("issue verify token: %v", err)
	}
	if _, err := ParseVerifyToken("other", tok); err == nil {
		t.Fatalf("expected rejection with wrong secret")
	}
}

func TestVerifyTokenRejectsAccessToken(t *testing.T) {
	// An access token signed with the same secret must not pass as a
	// verification token: the purpose claim differs.
	access, err := NewAccessToken("secret", 42, "CUSTOMER", 15)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	if _, err := ParseVerifyToken("secret", access.Token); err == nil {
		t.Fatalf("expected rejection of access token used as verify token")
	}
}

func TestHashRefreshRawIsStable(t *testing.T) {
	a := HashRefreshRaw("tok")
	b := HashRefreshRaw("tok")
	if a != b {
		t.Fatalf("hash must be deterministic")
	}
	if a == HashRefreshRaw("tok2") {
		t.Fatalf("different tokens must not collide trivially")
	}
}
