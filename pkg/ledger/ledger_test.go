package ledger

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/curve-launchpad/pkg/store"
)

func testLedger(t *testing.T, led Ledger) {
	t.Helper()

	mint := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	assert.Equal(t, uint64(0), led.BalanceOf(mint, alice))

	require.NoError(t, led.Mint(mint, alice, 1_000))
	assert.Equal(t, uint64(1_000), led.BalanceOf(mint, alice))

	require.NoError(t, led.Transfer(mint, alice, bob, 400))
	assert.Equal(t, uint64(600), led.BalanceOf(mint, alice))
	assert.Equal(t, uint64(400), led.BalanceOf(mint, bob))

	// Insufficient balance leaves both sides untouched.
	assert.Error(t, led.Transfer(mint, alice, bob, 601))
	assert.Equal(t, uint64(600), led.BalanceOf(mint, alice))
	assert.Equal(t, uint64(400), led.BalanceOf(mint, bob))

	// Zero transfers are a no-op.
	require.NoError(t, led.Transfer(mint, alice, bob, 0))

	// Native and token balances are independent.
	require.NoError(t, led.Mint(Native, alice, 5_000))
	assert.Equal(t, uint64(5_000), led.BalanceOf(Native, alice))
	assert.Equal(t, uint64(600), led.BalanceOf(mint, alice))
}

func TestMemoryLedger(t *testing.T) {
	testLedger(t, NewMemory())
}

func TestStoredLedger(t *testing.T) {
	testLedger(t, NewStored(store.NewMemory()))
}

func TestStoredLedgerPersists(t *testing.T) {
	st := store.NewMemory()
	owner := solana.NewWallet().PublicKey()

	require.NoError(t, NewStored(st).Mint(Native, owner, 777))

	// A fresh ledger over the same store sees the balance.
	assert.Equal(t, uint64(777), NewStored(st).BalanceOf(Native, owner))
}
