package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "0x1234567890AbCdEf1234567890abcdef12345678"

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress(addr))
	assert.False(t, ValidAddress("0x123"))
	assert.False(t, ValidAddress("1234567890abcdef1234567890abcdef12345678"))
	assert.False(t, ValidAddress("0xZZ34567890abcdef1234567890abcdef12345678"))
}

func TestNormalizeAndSame(t *testing.T) {
	assert.Equal(t, "0x1234567890abcdef1234567890abcdef12345678", Normalize("  "+addr+" "))
	assert.True(t, Same(addr, Normalize(addr)))
	assert.False(t, Same("", ""))
	assert.False(t, Same(addr, "0xdead"))
}

func TestStaticWithoutAddressIsMissingProvider(t *testing.T) {
	p := NewStatic("", "")
	ctx := context.Background()

	_, err := p.RequestAccounts(ctx)
	assert.ErrorIs(t, err, ErrNoProvider)

	accounts, err := p.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestStaticRejecting(t *testing.T) {
	p := NewStatic(addr, "").Rejecting()
	_, err := p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
}

func TestStaticRevokeAndSwitch(t *testing.T) {
	p := NewStatic(addr, "Dori")
	ctx := context.Background()

	accounts, err := p.RequestAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addr}, accounts)
	assert.Equal(t, "Dori", p.DisplayName())

	require.NoError(t, p.Revoke(ctx))
	accounts, _ = p.Accounts(ctx)
	assert.Empty(t, accounts)

	p.Switch("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	accounts, _ = p.Accounts(ctx)
	assert.Equal(t, []string{"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"}, accounts)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic(addr, "").RequestAccounts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
