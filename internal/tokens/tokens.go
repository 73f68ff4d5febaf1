package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/newspulse/newspulse/backend/go-services/internal/config"
)

// Issuer mints signed session tokens. It satisfies the TokenIssuer capability
// the identity resolver depends on.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(cfg *config.Config) *Issuer {
	return &Issuer{secret: []byte(cfg.JWT.Secret), ttl: cfg.JWT.AccessTokenTTL}
}

// IssueSessionToken creates a signed HS256 JWT bound to the subject (the
// user's email).
func (i *Issuer) IssueSessionToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// ParseSubject validates a session token and returns its subject.
func (i *Issuer) ParseSubject(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}
