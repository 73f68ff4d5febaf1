package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint,
// the same check the upstream service performs. When ClientID is set the
// token audience must match it.
type GoogleVerifier struct {
	ClientID     string
	TokenInfoURL string
	Client       *http.Client
}

func NewGoogleVerifier(clientID, tokenInfoURL string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID:     clientID,
		TokenInfoURL: tokenInfoURL,
		Client:       &http.Client{Timeout: 10 * time.Second},
	}
}

type googleTokenInfo struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Sub      string `json:"sub"`
	Audience string `json:"aud"`
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	u := g.TokenInfoURL + "?id_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google tokeninfo returned %d: %s", resp.StatusCode, string(b))
	}
	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("google tokeninfo decode: %w", err)
	}
	if g.ClientID != "" && info.Audience != g.ClientID {
		return nil, fmt.Errorf("google token audience mismatch")
	}
	return &Claims{Email: info.Email, Name: info.Name, Subject: info.Sub, Picture: info.Picture}, nil
}
