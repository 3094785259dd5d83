// Package credential resolves the device password for a username.
//
// Providers are tried in order by Chain. An interactive run wraps its chain in
// Cached so the operator is asked once per username, not once per device.
package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

// EnvPassword is the environment variable read by Env
const EnvPassword = "NBRSNAP_PASSWORD"

// ErrNoSecret is returned by a provider that has nothing for the username
var ErrNoSecret = errors.New("no secret available")

// Provider resolves the password for a username
type Provider interface {
	Resolve(ctx context.Context, username string) (string, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context, username string) (string, error)

// Resolve implements Provider
func (f ProviderFunc) Resolve(ctx context.Context, username string) (string, error) {
	return f(ctx, username)
}

// Static returns the same password for every username
type Static string

// Resolve implements Provider
func (s Static) Resolve(_ context.Context, _ string) (string, error) {
	if s == "" {
		return "", ErrNoSecret
	}
	return string(s), nil
}

// Env reads the password from an environment variable
type Env struct {
	Var string
}

// Resolve implements Provider
func (e Env) Resolve(_ context.Context, _ string) (string, error) {
	name := e.Var
	if name == "" {
		name = EnvPassword
	}
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v, nil
	}
	return "", ErrNoSecret
}

// Chain returns the first secret any provider yields. Providers answering
// ErrNoSecret are skipped; any other error stops the chain.
type Chain []Provider

// Resolve implements Provider
func (c Chain) Resolve(ctx context.Context, username string) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		secret, err := p.Resolve(ctx, username)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, ErrNoSecret) {
			return "", err
		}
	}
	return "", fmt.Errorf("password for %s: %w", username, ErrNoSecret)
}

// Cached resolves each username once and remembers the answer
type Cached struct {
	next    Provider
	mu      sync.Mutex
	secrets map[string]string
}

// NewCached wraps a provider
func NewCached(next Provider) *Cached {
	return &Cached{next: next, secrets: make(map[string]string)}
}

// Resolve implements Provider. Failed lookups are not cached.
func (c *Cached) Resolve(ctx context.Context, username string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if secret, ok := c.secrets[username]; ok {
		return secret, nil
	}
	secret, err := c.next.Resolve(ctx, username)
	if err != nil {
		return "", err
	}
	c.secrets[username] = secret
	return secret, nil
}
