// Package ledger abstracts the token/native balance service the engine
// settles trades against. The engine only ever moves balances it has already
// validated; the ledger enforces non-negative balances as a last line of
// defense.
package ledger

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Native is the asset key of the native currency (lamports). Token assets
// are keyed by their mint.
var Native = solana.PublicKey{}

// Ledger is the balance collaborator contract.
type Ledger interface {
	// Transfer moves amount of asset from one owner to another.
	Transfer(asset, from, to solana.PublicKey, amount uint64) error
	// Mint credits newly issued supply of asset to an owner.
	Mint(asset, to solana.PublicKey, amount uint64) error
	// BalanceOf returns the owner's balance of asset.
	BalanceOf(asset, owner solana.PublicKey) uint64
}

// Memory is an in-process Ledger keeping balances in maps. Safe for
// concurrent use.
type Memory struct {
	mu       sync.RWMutex
	balances map[solana.PublicKey]map[solana.PublicKey]uint64
}

// NewMemory builds an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		balances: make(map[solana.PublicKey]map[solana.PublicKey]uint64),
	}
}

// Transfer moves amount of asset between owners, failing if the source
// balance is insufficient.
func (m *Memory) Transfer(asset, from, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	owners := m.balances[asset]
	if owners == nil || owners[from] < amount {
		return fmt.Errorf("transfer %d of %s from %s: insufficient balance", amount, asset, from)
	}
	owners[from] -= amount
	owners[to] += amount
	return nil
}

// Mint credits amount of asset to an owner.
func (m *Memory) Mint(asset, to solana.PublicKey, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owners := m.balances[asset]
	if owners == nil {
		owners = make(map[solana.PublicKey]uint64)
		m.balances[asset] = owners
	}
	next := owners[to] + amount
	if next < owners[to] {
		return fmt.Errorf("mint %d of %s to %s: balance overflow", amount, asset, to)
	}
	owners[to] = next
	return nil
}

// BalanceOf returns the owner's balance of asset.
func (m *Memory) BalanceOf(asset, owner solana.PublicKey) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[asset][owner]
}
