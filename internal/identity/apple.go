package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// AppleVerifier verifies Apple ID tokens via OIDC discovery against the
// Apple issuer (key fetching and signature checks are go-oidc's job).
type AppleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewAppleVerifier(ctx context.Context, issuer, clientID string) (*AppleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &AppleVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (a *AppleVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	idToken, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return &claims, nil
}
