package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/newspulse/newspulse/backend/go-services/internal/identity"
)

type fakeIssuer struct{ n int }

func (f *fakeIssuer) IssueSessionToken(subject string) (string, error) {
	f.n++
	return fmt.Sprintf("token-%s-%d", subject, f.n), nil
}

// plainHasher avoids bcrypt cost in unit tests
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Compare(hashed, plain string) error {
	if hashed != "hashed:"+plain {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService() (*Service, *MemoryUserRepository) {
	repo := NewMemoryUserRepository()
	return NewService(repo, &fakeIssuer{}, plainHasher{}), repo
}

func TestResolveIdentityCreatesUser(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p, err := svc.ResolveIdentity(ctx, "google", &identity.Claims{
		Email: "alice@example.com", Name: "Alice Smith", Subject: "g-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Username != "alicesmith" {
		t.Fatalf("unexpected username: %s", p.Username)
	}
	if p.Email != "alice@example.com" || p.Token == "" {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if p.Preferences.Topics == nil || p.ReadingHistory == nil || p.Bookmarks == nil || p.LikedArticles == nil {
		t.Fatal("payload collections must be non-nil")
	}

	u, _ := repo.FindByEmail(ctx, "alice@example.com")
	if u == nil {
		t.Fatal("expected user persisted")
	}
	if u.OAuthProvider != "google" || u.OAuthID != "g-1" {
		t.Fatalf("provider fields not stored: %+v", u)
	}
	if u.PasswordHash != "hashed:oauth_google_g-1" {
		t.Fatalf("placeholder password hash not derived from provider+subject: %q", u.PasswordHash)
	}
}

func TestResolveIdentityIdempotentByEmail(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	claims := &identity.Claims{Email: "bob@example.com", Name: "Bob", Subject: "g-2"}

	first, err := svc.ResolveIdentity(ctx, "google", claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ResolveIdentity(ctx, "google", claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Username != first.Username {
		t.Fatalf("expected same username, got %s then %s", first.Username, second.Username)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected a single account, got %d", repo.Count())
	}
	if second.Token == first.Token {
		t.Fatal("expected a fresh token per login")
	}
}

func TestResolveIdentityUsernameSuffixes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i, wantName := range []string{"alice", "alice1", "alice2"} {
		p, err := svc.ResolveIdentity(ctx, "google", &identity.Claims{
			Email: fmt.Sprintf("alice%d@example.com", i), Name: "Alice", Subject: fmt.Sprintf("g-%d", i),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Username != wantName {
			t.Fatalf("collision %d resolved to %q, want %q", i, p.Username, wantName)
		}
	}
}

func TestResolveIdentityUsernameFallsBackToEmailLocalPart(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.ResolveIdentity(context.Background(), "apple", &identity.Claims{
		Email: "carol.j@example.com", Subject: "a-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Username != "carol.j" {
		t.Fatalf("expected email local part, got %q", p.Username)
	}
}

func TestResolveIdentityMissingEmail(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.ResolveIdentity(context.Background(), "google", &identity.Claims{Name: "No Mail", Subject: "g-9"})
	if !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}
	if repo.Count() != 0 {
		t.Fatal("missing email must not persist anything")
	}
}

func TestResolveIdentityNilClaims(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ResolveIdentity(context.Background(), "google", nil)
	if !errors.Is(err, ErrInvalidProviderToken) {
		t.Fatalf("expected ErrInvalidProviderToken, got %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Register(ctx, "dave", "dave@example.com", "pw123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if p.Username != "dave" {
		t.Fatalf("unexpected username: %s", p.Username)
	}

	if _, err := svc.Register(ctx, "dave2", "dave@example.com", "pw123"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused email, got %v", err)
	}

	if _, err := svc.Login(ctx, "dave@example.com", "pw123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.Login(ctx, "dave@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestProviderAccountsRejectPasswordLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.ResolveIdentity(ctx, "google", &identity.Claims{Email: "eve@example.com", Name: "Eve", Subject: "g-7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the placeholder hash is write-only, never an authentication path
	if _, err := svc.Login(ctx, "eve@example.com", "oauth_google_g-7"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
