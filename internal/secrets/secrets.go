package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrSecretUnavailable indicates the backing store is unreachable or the
// named secret does not exist. Startup treats any occurrence as fatal.
var ErrSecretUnavailable = errors.New("secret unavailable")

// Provider resolves named credentials. Called once per credential at
// process start; values are held in memory read-only afterwards.
type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}

// EnvProvider reads secrets straight from environment variables.
// Intended for local development only.
type EnvProvider struct{}

func NewEnvProvider() *EnvProvider { return &EnvProvider{} }

func (p *EnvProvider) Get(_ context.Context, name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: env var %s not set", ErrSecretUnavailable, name)
	}
	return v, nil
}
