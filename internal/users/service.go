package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/newspulse/newspulse/backend/go-services/internal/identity"
	"github.com/newspulse/newspulse/backend/go-services/internal/models"
)

// TokenIssuer mints an opaque session token bound to the given subject.
type TokenIssuer interface {
	IssueSessionToken(subject string) (string, error)
}

// PasswordHasher is the password-hashing capability the resolver depends on.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) error
}

// SessionPayload is the normalized profile-plus-token structure returned
// after successful authentication.
type SessionPayload struct {
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	Token          string             `json:"token"`
	Preferences    models.Preferences `json:"preferences"`
	ReadingHistory []string           `json:"reading_history"`
	Bookmarks      []string           `json:"bookmarks"`
	LikedArticles  []string           `json:"liked_articles"`
}

// Service resolves external identities and password logins to user records.
type Service struct {
	repo   UserRepository
	tokens TokenIssuer
	hasher PasswordHasher
}

func NewService(repo UserRepository, tokens TokenIssuer, hasher PasswordHasher) *Service {
	return &Service{repo: repo, tokens: tokens, hasher: hasher}
}

// insertRetries bounds the suffix retries taken when an insert loses the race
// against a concurrent registration with the same derived username.
const insertRetries = 5

// ResolveIdentity maps verified identity claims to an internal user, creating
// one on first login. Claims must carry an email; a nil claims value means
// the provider verification yielded nothing usable.
func (s *Service) ResolveIdentity(ctx context.Context, provider string, claims *identity.Claims) (*SessionPayload, error) {
	if claims == nil {
		return nil, ErrInvalidProviderToken
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}

	existing, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if existing != nil {
		return s.sessionFor(existing)
	}

	candidate := deriveUsername(claims.Name, claims.Email)
	username, err := s.uniqueUsername(ctx, candidate)
	if err != nil {
		return nil, err
	}

	// The field is always populated even though the user never sets a
	// password; the placeholder is write-only and rejected for direct login.
	placeholder := fmt.Sprintf("oauth_%s_%s", provider, claims.Subject)
	hash, err := s.hasher.Hash(placeholder)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	u := &models.User{
		Username:       username,
		Email:          claims.Email,
		PasswordHash:   hash,
		OAuthProvider:  provider,
		OAuthID:        claims.Subject,
		Preferences:    models.EmptyPreferences(),
		ReadingHistory: []string{},
		Bookmarks:      []string{},
		LikedArticles:  []string{},
	}

	// The unique indexes are the real uniqueness signal: a lost race shows up
	// as a duplicate-key insert, retried with the next suffix.
	base := username
	for attempt := 0; ; attempt++ {
		err = s.repo.Insert(ctx, u)
		if err == nil {
			return s.sessionFor(u)
		}
		if err != ErrDuplicate || attempt >= insertRetries {
			break
		}
		// a concurrent login for the same email may have created the account
		if again, ferr := s.repo.FindByEmail(ctx, claims.Email); ferr == nil && again != nil {
			return s.sessionFor(again)
		}
		u.Username, err = s.uniqueUsername(ctx, base)
		if err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("create user: %w", err)
}

// sessionFor issues a fresh token bound to the user's email and normalizes
// the profile fields, substituting empty defaults for absent collections.
func (s *Service) sessionFor(u *models.User) (*SessionPayload, error) {
	token, err := s.tokens.IssueSessionToken(u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	p := &SessionPayload{
		Username:       u.Username,
		Email:          u.Email,
		Token:          token,
		Preferences:    u.Preferences,
		ReadingHistory: u.ReadingHistory,
		Bookmarks:      u.Bookmarks,
		LikedArticles:  u.LikedArticles,
	}
	if p.Preferences.Topics == nil {
		p.Preferences.Topics = []string{}
	}
	if p.Preferences.Sources == nil {
		p.Preferences.Sources = []string{}
	}
	if p.Preferences.Countries == nil {
		p.Preferences.Countries = []string{}
	}
	if p.ReadingHistory == nil {
		p.ReadingHistory = []string{}
	}
	if p.Bookmarks == nil {
		p.Bookmarks = []string{}
	}
	if p.LikedArticles == nil {
		p.LikedArticles = []string{}
	}
	return p, nil
}

// deriveUsername lowercases the display name and strips spaces; when that
// leaves nothing it falls back to the local part of the email.
func deriveUsername(name, email string) string {
	candidate := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	if candidate == "" {
		candidate = strings.SplitN(email, "@", 2)[0]
	}
	return candidate
}

// uniqueUsername appends an increasing integer suffix to the candidate until
// an unused username is found.
func (s *Service) uniqueUsername(ctx context.Context, candidate string) (string, error) {
	username := candidate
	for counter := 1; ; counter++ {
		u, err := s.repo.FindByUsername(ctx, username)
		if err != nil {
			return "", fmt.Errorf("lookup username %q: %w", username, err)
		}
		if u == nil {
			return username, nil
		}
		username = fmt.Sprintf("%s%d", candidate, counter)
	}
}

// Register creates a password-based account and returns a session payload.
func (s *Service) Register(ctx context.Context, username, email, password string) (*SessionPayload, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if existing, err := s.repo.FindByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	} else if existing != nil {
		return nil, ErrDuplicate
	}
	if username == "" {
		username = deriveUsername("", email)
	}
	resolved, err := s.uniqueUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:       resolved,
		Email:          email,
		PasswordHash:   hash,
		Preferences:    models.EmptyPreferences(),
		ReadingHistory: []string{},
		Bookmarks:      []string{},
		LikedArticles:  []string{},
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.sessionFor(u)
}

// Login authenticates a password account. Accounts created through an
// identity provider only hold a write-only placeholder hash and are rejected
// here; their owners must log in through the provider.
func (s *Service) Login(ctx context.Context, email, password string) (*SessionPayload, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if u == nil || u.OAuthProvider != "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.sessionFor(u)
}

// Profile returns the stored user record for an email, nil when unknown.
func (s *Service) Profile(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	return u, nil
}
