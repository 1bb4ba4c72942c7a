package events

import (
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/curve-launchpad/pkg/amm"
	"github.com/ninja0404/curve-launchpad/pkg/curve"
)

func TestNewTradeSnapshotsCurve(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	bc := &curve.BondingCurve{
		Mint:                 solana.NewWallet().PublicKey(),
		VirtualSolReserves:   30_000_000_001,
		VirtualTokenReserves: 1_072_999_999_999_000,
		RealSolReserves:      1,
		RealTokenReserves:    793_099_999_999_000,
	}
	res := &amm.TradeResult{IsBuy: true, TokenAmount: 1_000, SolAmount: 1, Fee: 0}

	ev := NewTrade(bc, res, user, 1_700_000_000)
	assert.Equal(t, bc.Mint, ev.Mint)
	assert.Equal(t, user, ev.User)
	assert.True(t, ev.IsBuy)
	assert.Equal(t, bc.VirtualSolReserves, ev.VirtualSolReserves)
	assert.Equal(t, bc.RealTokenReserves, ev.RealTokenReserves)
	assert.Equal(t, int64(1_700_000_000), ev.Timestamp)
}

func TestMarshalRoundTrip(t *testing.T) {
	ev := TradeEvent{
		Mint:        solana.NewWallet().PublicKey(),
		SolAmount:   85_005_359_057,
		TokenAmount: 793_100_000_000_000,
		Fee:         425_026_795,
		IsBuy:       true,
		User:        solana.NewWallet().PublicKey(),
		Timestamp:   1_700_000_000,
	}

	data, err := Marshal(ev)
	require.NoError(t, err)

	var got TradeEvent
	require.NoError(t, bin.NewBorshDecoder(data).Decode(&got))
	assert.Equal(t, ev, got)
}
