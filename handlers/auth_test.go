package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/backend/go-services/internal/config"
	"github.com/newspulse/newspulse/backend/go-services/internal/identity"
	"github.com/newspulse/newspulse/backend/go-services/internal/sessions"
	"github.com/newspulse/newspulse/backend/go-services/internal/tokens"
	"github.com/newspulse/newspulse/backend/go-services/internal/users"
)

type memSessionRepo struct {
	mu   sync.Mutex
	byRT map[string]*sessions.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{byRT: map[string]*sessions.Session{}}
}

func (r *memSessionRepo) Create(_ context.Context, s *sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byRT[s.RefreshToken] = &cp
	return nil
}

func (r *memSessionRepo) GetByRefresh(_ context.Context, refresh string) (*sessions.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byRT[refresh]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) DeleteByRefresh(_ context.Context, refresh string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byRT, refresh)
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Compare(hashed, plain string) error {
	if hashed != "hashed:"+plain {
		return users.ErrInvalidCredentials
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:         "test-secret",
			AccessTokenTTL: time.Hour,
			SessionTTL:     7 * 24 * time.Hour,
		},
	}
}

func authRouter(t *testing.T) (*gin.Engine, *users.MemoryUserRepository, *memSessionRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	userRepo := users.NewMemoryUserRepository()
	sessRepo := newMemSessionRepo()
	issuer := tokens.NewIssuer(cfg)
	usersSvc := users.NewService(userRepo, issuer, plainHasher{})
	sessionsSvc := sessions.NewService(sessRepo)

	reg := identity.NewRegistry()
	reg.Register("insecure", identity.NewInsecureVerifier())

	r := gin.New()
	NewAuthHandler(cfg, usersSvc, sessionsSvc, issuer, reg).Register(r.Group("/"))
	return r, userRepo, sessRepo
}

// unsigned JWT carrying the given claims, accepted by the insecure verifier.
func providerToken(t *testing.T, claims map[string]string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	body, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + "."
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestOAuthLoginCreatesUser(t *testing.T) {
	r, userRepo, _ := authRouter(t)
	tok := providerToken(t, map[string]string{
		"email": "alice@example.com", "name": "Alice Smith", "sub": "g-1",
	})

	w := postJSON(r, "/auth/oauth", OAuthRequest{Token: tok, Provider: "insecure"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "alicesmith", resp["username"])
	require.Equal(t, "alice@example.com", resp["email"])
	require.NotEmpty(t, resp["token"])
	require.NotEmpty(t, resp["refresh_token"])
	require.Equal(t, 1, userRepo.Count())

	// second login with the same email attaches to the same account
	w = postJSON(r, "/auth/oauth", OAuthRequest{Token: tok, Provider: "insecure"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, userRepo.Count())
}

func TestOAuthLoginRejectsUnknownProvider(t *testing.T) {
	r, _, _ := authRouter(t)
	w := postJSON(r, "/auth/oauth", OAuthRequest{Token: "x.y.", Provider: "myspace"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthLoginRejectsMalformedToken(t *testing.T) {
	r, _, _ := authRouter(t)
	w := postJSON(r, "/auth/oauth", OAuthRequest{Token: "not-a-jwt", Provider: "insecure"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOAuthLoginRequiresEmail(t *testing.T) {
	r, userRepo, _ := authRouter(t)
	tok := providerToken(t, map[string]string{"name": "No Mail", "sub": "g-2"})
	w := postJSON(r, "/auth/oauth", OAuthRequest{Token: tok, Provider: "insecure"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 0, userRepo.Count())
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	r, _, sessRepo := authRouter(t)

	w := postJSON(r, "/auth/register", RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// duplicate email
	w = postJSON(r, "/auth/register", RegisterRequest{
		Username: "bob2", Email: "bob@example.com", Password: "other",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(r, "/auth/login", LoginRequest{Email: "bob@example.com", Password: "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	refresh, _ := resp["refresh_token"].(string)
	require.NotEmpty(t, refresh)

	w = postJSON(r, "/auth/login", LoginRequest{Email: "bob@example.com", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(r, "/auth/refresh", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	w = postJSON(r, "/auth/logout", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	sess, err := sessRepo.GetByRefresh(context.Background(), refresh)
	require.NoError(t, err)
	require.Nil(t, sess)

	// refresh token no longer valid after logout
	w = postJSON(r, "/auth/refresh", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
