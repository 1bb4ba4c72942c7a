// Package curve defines the persisted records of the launch engine: the
// global config singleton and the per-token bonding curve. Records are
// borsh-encoded for custody in the record store; all mutation goes through
// the trade executor and lifecycle controller.
package curve

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/curve-launchpad/pkg/constants"
	"github.com/ninja0404/curve-launchpad/pkg/types"
)

// Phase is the lifecycle state of a bonding curve. The progression is
// one-way: Active -> Complete -> Withdrawn.
type Phase uint8

const (
	// PhaseActive accepts buys and sells against the curve.
	PhaseActive Phase = iota
	// PhaseComplete freezes trading; real token reserves hit zero.
	PhaseComplete
	// PhaseWithdrawn marks a completed curve whose balances were claimed.
	PhaseWithdrawn
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	case PhaseWithdrawn:
		return "withdrawn"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Global is the deployment-wide config singleton. Created once by
// Initialize, mutated only by SetParams under the config authority.
type Global struct {
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	WithdrawAuthority           solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	InitialTokenSupply          uint64
	FeeBasisPoints              uint64
}

// Marshal borsh-encodes the record.
func (g *Global) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(g); err != nil {
		return nil, fmt.Errorf("encode global: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal borsh-decodes the record.
func (g *Global) Unmarshal(data []byte) error {
	if err := bin.NewBorshDecoder(data).Decode(g); err != nil {
		return fmt.Errorf("decode global: %w", err)
	}
	return nil
}

// BondingCurve is the per-token reserve record. Virtual reserves drive
// pricing only; real reserves track assets actually custodied by the curve.
type BondingCurve struct {
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
	TokenTotalSupply     uint64
	Phase                Phase
	Creator              solana.PublicKey
	Mint                 solana.PublicKey

	// Display metadata, immutable after creation.
	Name   string
	Symbol string
	URI    string
}

// NewBondingCurve seeds a curve from the global config template.
func NewBondingCurve(g *Global, mint, creator solana.PublicKey, name, symbol, uri string) (*BondingCurve, error) {
	bc := &BondingCurve{
		VirtualSolReserves:   g.InitialVirtualSolReserves,
		VirtualTokenReserves: g.InitialVirtualTokenReserves,
		RealSolReserves:      0,
		RealTokenReserves:    g.InitialRealTokenReserves,
		TokenTotalSupply:     g.InitialTokenSupply,
		Phase:                PhaseActive,
		Creator:              creator,
		Mint:                 mint,
		Name:                 name,
		Symbol:               symbol,
		URI:                  uri,
	}
	if err := bc.Validate(); err != nil {
		return nil, err
	}
	return bc, nil
}

// Complete reports whether trading against the curve is frozen.
func (bc *BondingCurve) Complete() bool {
	return bc.Phase >= PhaseComplete
}

// Validate checks the record invariants that must hold after every
// operation. Virtual reserves stay positive while the curve is active, and
// sellable reserves can never exceed total supply.
func (bc *BondingCurve) Validate() error {
	if bc.RealTokenReserves > bc.TokenTotalSupply {
		return types.NewValidationError("realTokenReserves", "exceeds token total supply")
	}
	if bc.Phase == PhaseActive {
		if bc.VirtualTokenReserves == 0 {
			return types.NewValidationError("virtualTokenReserves", "must be greater than 0 while active")
		}
		if bc.VirtualSolReserves == 0 {
			return types.NewValidationError("virtualSolReserves", "must be greater than 0 while active")
		}
	}
	return nil
}

// Marshal borsh-encodes the record.
func (bc *BondingCurve) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(bc); err != nil {
		return nil, fmt.Errorf("encode bonding curve: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal borsh-decodes the record.
func (bc *BondingCurve) Unmarshal(data []byte) error {
	if err := bin.NewBorshDecoder(data).Decode(bc); err != nil {
		return fmt.Errorf("decode bonding curve: %w", err)
	}
	return nil
}

func (bc *BondingCurve) String() string {
	return fmt.Sprintf(
		"virtual_sol_reserves: %d, virtual_token_reserves: %d, real_sol_reserves: %d, real_token_reserves: %d, token_total_supply: %d, phase: %s, creator: %s",
		bc.VirtualSolReserves,
		bc.VirtualTokenReserves,
		bc.RealSolReserves,
		bc.RealTokenReserves,
		bc.TokenTotalSupply,
		bc.Phase,
		bc.Creator,
	)
}

// GlobalKey is the store key of the config singleton.
func GlobalKey() []byte {
	return []byte(constants.SeedGlobal)
}

// CurveKey is the store key of the bonding curve for a mint.
func CurveKey(mint solana.PublicKey) []byte {
	return append([]byte(constants.SeedBondingCurve+":"), mint.Bytes()...)
}

// TransferKey is the store key of a user's last-trade record on a mint.
func TransferKey(user, mint solana.PublicKey) []byte {
	key := append([]byte(constants.SeedUserTransfer+":"), user.Bytes()...)
	return append(key, mint.Bytes()...)
}

// Address derives the ledger identity that custodies a curve's balances.
func Address(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constants.SeedBondingCurve), mint.Bytes()},
		constants.ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive curve address: %w", err)
	}
	return addr, nil
}
