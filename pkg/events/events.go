// Package events builds the notification records emitted by successful
// engine operations. Construction is a pure function of the operation's
// result; transport to observers (indexers, UIs) is out of scope.
package events

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/curve-launchpad/pkg/amm"
	"github.com/ninja0404/curve-launchpad/pkg/curve"
)

// CreateEvent records a new token launch.
type CreateEvent struct {
	Name    string
	Symbol  string
	URI     string
	Mint    solana.PublicKey
	Creator solana.PublicKey
}

// TradeEvent records one buy or sell, including the post-trade reserve
// snapshot.
type TradeEvent struct {
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	Fee                  uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
}

// CompleteEvent records the completion transition of a curve.
type CompleteEvent struct {
	User      solana.PublicKey
	Mint      solana.PublicKey
	Timestamp int64
}

// SetParamsEvent records a config change with the full new snapshot.
type SetParamsEvent struct {
	FeeRecipient                solana.PublicKey
	WithdrawAuthority           solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	InitialTokenSupply          uint64
	FeeBasisPoints              uint64
}

// WithdrawEvent records the claim of a completed curve's balances.
type WithdrawEvent struct {
	Mint        solana.PublicKey
	Authority   solana.PublicKey
	SolAmount   uint64
	TokenAmount uint64
	Timestamp   int64
}

// NewCreate builds the launch event for a freshly created curve.
func NewCreate(bc *curve.BondingCurve) CreateEvent {
	return CreateEvent{
		Name:    bc.Name,
		Symbol:  bc.Symbol,
		URI:     bc.URI,
		Mint:    bc.Mint,
		Creator: bc.Creator,
	}
}

// NewTrade builds the trade event from an executor result and the committed
// post-trade snapshot.
func NewTrade(bc *curve.BondingCurve, res *amm.TradeResult, user solana.PublicKey, timestamp int64) TradeEvent {
	return TradeEvent{
		Mint:                 bc.Mint,
		SolAmount:            res.SolAmount,
		TokenAmount:          res.TokenAmount,
		Fee:                  res.Fee,
		IsBuy:                res.IsBuy,
		User:                 user,
		Timestamp:            timestamp,
		VirtualSolReserves:   bc.VirtualSolReserves,
		VirtualTokenReserves: bc.VirtualTokenReserves,
		RealSolReserves:      bc.RealSolReserves,
		RealTokenReserves:    bc.RealTokenReserves,
	}
}

// NewComplete builds the completion event.
func NewComplete(bc *curve.BondingCurve, user solana.PublicKey, timestamp int64) CompleteEvent {
	return CompleteEvent{
		User:      user,
		Mint:      bc.Mint,
		Timestamp: timestamp,
	}
}

// NewSetParams snapshots the config after a parameter change.
func NewSetParams(g *curve.Global) SetParamsEvent {
	return SetParamsEvent{
		FeeRecipient:                g.FeeRecipient,
		WithdrawAuthority:           g.WithdrawAuthority,
		InitialVirtualTokenReserves: g.InitialVirtualTokenReserves,
		InitialVirtualSolReserves:   g.InitialVirtualSolReserves,
		InitialRealTokenReserves:    g.InitialRealTokenReserves,
		InitialTokenSupply:          g.InitialTokenSupply,
		FeeBasisPoints:              g.FeeBasisPoints,
	}
}

// NewWithdraw builds the withdraw event.
func NewWithdraw(bc *curve.BondingCurve, authority solana.PublicKey, solAmount, tokenAmount uint64, timestamp int64) WithdrawEvent {
	return WithdrawEvent{
		Mint:        bc.Mint,
		Authority:   authority,
		SolAmount:   solAmount,
		TokenAmount: tokenAmount,
		Timestamp:   timestamp,
	}
}

// Marshal borsh-encodes an event for observer transport.
func Marshal(ev interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(ev); err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return buf.Bytes(), nil
}
