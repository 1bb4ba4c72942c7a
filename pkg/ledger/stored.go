package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/curve-launchpad/pkg/store"
)

const balancePrefix = "balance:"

// Stored is a Ledger persisting balances in a record store, so CLI sessions
// and restarts observe the same balances as the engine records.
type Stored struct {
	mu sync.Mutex
	st store.Store
}

// NewStored builds a store-backed ledger.
func NewStored(st store.Store) *Stored {
	return &Stored{st: st}
}

func balanceKey(asset, owner solana.PublicKey) []byte {
	key := make([]byte, 0, len(balancePrefix)+64)
	key = append(key, balancePrefix...)
	key = append(key, asset.Bytes()...)
	key = append(key, owner.Bytes()...)
	return key
}

func (s *Stored) read(asset, owner solana.PublicKey) (uint64, error) {
	data, err := s.st.Get(balanceKey(asset, owner))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("malformed balance record for %s/%s", asset, owner)
	}
	return binary.LittleEndian.Uint64(data), nil
}

func (s *Stored) write(asset, owner solana.PublicKey, amount uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], amount)
	return s.st.Put(balanceKey(asset, owner), buf[:])
}

// Transfer moves amount of asset between owners, failing if the source
// balance is insufficient.
func (s *Stored) Transfer(asset, from, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.read(asset, from)
	if err != nil {
		return err
	}
	if src < amount {
		return fmt.Errorf("transfer %d of %s from %s: insufficient balance", amount, asset, from)
	}
	dst, err := s.read(asset, to)
	if err != nil {
		return err
	}
	if dst+amount < dst {
		return fmt.Errorf("transfer %d of %s to %s: balance overflow", amount, asset, to)
	}
	if err := s.write(asset, from, src-amount); err != nil {
		return err
	}
	return s.write(asset, to, dst+amount)
}

// Mint credits amount of asset to an owner.
func (s *Stored) Mint(asset, to solana.PublicKey, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.read(asset, to)
	if err != nil {
		return err
	}
	if cur+amount < cur {
		return fmt.Errorf("mint %d of %s to %s: balance overflow", amount, asset, to)
	}
	return s.write(asset, to, cur+amount)
}

// BalanceOf returns the owner's balance of asset; storage errors read as 0.
func (s *Stored) BalanceOf(asset, owner solana.PublicKey) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	bal, err := s.read(asset, owner)
	if err != nil {
		return 0
	}
	return bal
}
