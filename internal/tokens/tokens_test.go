package tokens

import (
	"testing"
	"time"

	"github.com/newspulse/newspulse/backend/go-services/internal/config"
)

func testIssuer() *Issuer {
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret-0123456789abcdef"
	cfg.JWT.AccessTokenTTL = time.Hour
	return NewIssuer(cfg)
}

func TestIssueAndParse(t *testing.T) {
	iss := testIssuer()
	tok, err := iss.IssueSessionToken("a@b.c")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	sub, err := iss.ParseSubject(tok)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sub != "a@b.c" {
		t.Fatalf("unexpected subject: %s", sub)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	iss := testIssuer()
	tok, err := iss.IssueSessionToken("a@b.c")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := iss.ParseSubject(tok + "x"); err == nil {
		t.Fatal("expected error for tampered token")
	}

	other := testIssuer()
	other.secret = []byte("a-different-secret-0123456789abc")
	if _, err := other.ParseSubject(tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	iss := testIssuer()
	iss.ttl = -time.Minute
	tok, err := iss.IssueSessionToken("a@b.c")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := iss.ParseSubject(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}
