// Package identity models the wallet that tells the tracker who the user is.
package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrNoProvider means no wallet is available to ask for an account
	ErrNoProvider = errors.New("no wallet provider available")
	// ErrRejected means the user declined the account request
	ErrRejected = errors.New("account request rejected")
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s looks like a 20-byte hex account address
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Normalize returns the canonical (trimmed, lowercase) form of an address
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Same compares two addresses case-insensitively
func Same(a, b string) bool {
	return a != "" && Normalize(a) == Normalize(b)
}

// Provider is a wallet that can list and grant accounts
type Provider interface {
	// Accounts returns the accounts already granted, without prompting
	Accounts(ctx context.Context) ([]string, error)
	// RequestAccounts asks the user to grant access to an account
	RequestAccounts(ctx context.Context) ([]string, error)
	// Revoke drops the granted permissions
	Revoke(ctx context.Context) error
}

// Namer is implemented by providers that know a display name for the account
type Namer interface {
	DisplayName() string
}

// Static is a provider backed by a configured address. An empty address
// behaves like a missing wallet.
type Static struct {
	mu       sync.Mutex
	address  string
	name     string
	rejected bool
	revoked  bool
}

// NewStatic creates a provider for address with an optional display name
func NewStatic(address, displayName string) *Static {
	return &Static{address: strings.TrimSpace(address), name: displayName}
}

// Rejecting makes every account request fail with ErrRejected
func (s *Static) Rejecting() *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected = true
	return s
}

// Switch changes the account the wallet exposes
func (s *Static) Switch(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = strings.TrimSpace(address)
	s.revoked = false
}

func (s *Static) Accounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address == "" || s.revoked {
		return []string{}, nil
	}
	return []string{s.address}, nil
}

func (s *Static) RequestAccounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address == "" {
		return nil, ErrNoProvider
	}
	if s.rejected {
		return nil, ErrRejected
	}
	s.revoked = false
	return []string{s.address}, nil
}

func (s *Static) Revoke(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = true
	return nil
}

func (s *Static) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}
