// Package api exposes the consumer-facing surface of the module: a registry
// of named code providers (one per provisioned account) behind a single
// capability interface. Login-automation hosts depend on this package only.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-mobileauth/pkg/authenticator"
)

// Provider defines the contract for anything that can produce the current
// one-time code for an account.
type Provider interface {
	CurrentCode(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (string, error)

// CurrentCode executes the underlying function.
func (f ProviderFunc) CurrentCode(ctx context.Context) (string, error) {
	return f(ctx)
}

// Account pairs a provider with the name callers request it by.
type Account struct {
	Name     string
	Provider Provider
}

// Config contains the accounts the service should serve.
type Config struct {
	Accounts []Account
}

var (
	// ErrNoAccounts indicates the service was initialised without accounts.
	ErrNoAccounts = errors.New("api: no accounts configured")
	// ErrAccountNotFound indicates a requested account name does not exist.
	ErrAccountNotFound = errors.New("api: requested account not configured")
)

// Service dispatches code requests to configured accounts.
type Service struct {
	accounts []Account
}

// NewService builds a Service from the supplied configuration.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Accounts) == 0 {
		return nil, ErrNoAccounts
	}

	accounts := make([]Account, 0, len(cfg.Accounts))
	seen := map[string]struct{}{}
	for i, a := range cfg.Accounts {
		if a.Provider == nil {
			return nil, fmt.Errorf("api: account at index %d has no provider", i)
		}
		if _, ok := seen[a.Name]; ok {
			return nil, fmt.Errorf("api: duplicate account name %q", a.Name)
		}
		seen[a.Name] = struct{}{}
		accounts = append(accounts, a)
	}

	return &Service{accounts: accounts}, nil
}

// Code returns the current code for the named account. An empty name is
// accepted when exactly one account is configured.
func (s *Service) Code(ctx context.Context, name string) (string, error) {
	if s == nil || len(s.accounts) == 0 {
		return "", ErrNoAccounts
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if name == "" {
		if len(s.accounts) == 1 {
			return s.accounts[0].Provider.CurrentCode(ctx)
		}
		return "", fmt.Errorf("%w: account name required with %d accounts configured",
			ErrAccountNotFound, len(s.accounts))
	}

	for _, a := range s.accounts {
		if a.Name == name {
			return a.Provider.CurrentCode(ctx)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrAccountNotFound, name)
}

// Accounts returns the configured account names in registration order.
func (s *Service) Accounts() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.accounts))
	for i, a := range s.accounts {
		names[i] = a.Name
	}
	return names
}

// Ensure the concrete authenticator satisfies the Provider interface.
var _ Provider = (*authenticator.Authenticator)(nil)
