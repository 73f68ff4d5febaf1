package identity

import (
	"context"
	"errors"
)

// Claims are the normalized attributes obtained after verifying a third-party
// login token. Email is the only attribute the rest of the system requires.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"sub"`
	Picture string `json:"picture,omitempty"`
}

// Verifier turns a raw provider token into verified identity claims.
// Implementations must return an error (not nil claims) when the token cannot
// be verified.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

var ErrUnknownProvider = errors.New("unknown identity provider")

// Registry maps provider names ("google", "apple") to their verifiers.
type Registry struct {
	verifiers map[string]Verifier
}

func NewRegistry() *Registry {
	return &Registry{verifiers: map[string]Verifier{}}
}

func (r *Registry) Register(provider string, v Verifier) {
	r.verifiers[provider] = v
}

func (r *Registry) Verify(ctx context.Context, provider, token string) (*Claims, error) {
	v, ok := r.verifiers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return v.Verify(ctx, token)
}

// Providers lists the registered provider names.
func (r *Registry) Providers() []string {
	out := make([]string, 0, len(r.verifiers))
	for k := range r.verifiers {
		out = append(out, k)
	}
	return out
}
