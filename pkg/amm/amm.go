// Package amm implements the constant-product pricing engine and trade
// executor for bonding curves.
//
// Pricing holds virtual_token_reserves * virtual_sol_reserves invariant
// before fee. Rounding direction is load-bearing: buys round the required
// cost up, sells round the payout down, so the curve is never underpaid on
// entry nor overpaid on exit. Fees are computed on the gross curve price
// and rounded down.
//
// All functions are pure: they take a reserve snapshot and return a new one,
// never mutating the input. Every arithmetic step is overflow-checked; a
// result that does not fit uint64 rejects the trade.
package amm

import (
	"math/big"

	"github.com/ninja0404/curve-launchpad/pkg/constants"
	"github.com/ninja0404/curve-launchpad/pkg/curve"
	"github.com/ninja0404/curve-launchpad/pkg/types"
)

// TradeResult is the outcome of one executed trade. SolAmount is the gross
// curve price; Fee is routed to the fee recipient on top of (buy) or out of
// (sell) that amount.
type TradeResult struct {
	IsBuy       bool
	TokenAmount uint64
	SolAmount   uint64
	Fee         uint64
}

// GetBuyPrice returns the native-currency input required to buy tokenAmount
// from the curve, rounded up.
//
//	solAmount = ceil(virtualSolReserves * tokenAmount / (virtualTokenReserves - tokenAmount))
func GetBuyPrice(bc *curve.BondingCurve, tokenAmount uint64) (uint64, error) {
	if tokenAmount == 0 {
		return 0, types.ErrMinBuy
	}
	if tokenAmount >= bc.VirtualTokenReserves {
		return 0, types.ErrInsufficientTokens
	}

	num := new(big.Int).Mul(
		new(big.Int).SetUint64(bc.VirtualSolReserves),
		new(big.Int).SetUint64(tokenAmount),
	)
	den := new(big.Int).SetUint64(bc.VirtualTokenReserves - tokenAmount)

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	if !quo.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	return quo.Uint64(), nil
}

// GetSellPrice returns the native-currency output for selling tokenAmount
// into the curve, rounded down.
//
//	solAmount = floor(virtualSolReserves * tokenAmount / (virtualTokenReserves + tokenAmount))
func GetSellPrice(bc *curve.BondingCurve, tokenAmount uint64) (uint64, error) {
	if tokenAmount == 0 {
		return 0, types.ErrMinSell
	}

	num := new(big.Int).Mul(
		new(big.Int).SetUint64(bc.VirtualSolReserves),
		new(big.Int).SetUint64(tokenAmount),
	)
	den := new(big.Int).Add(
		new(big.Int).SetUint64(bc.VirtualTokenReserves),
		new(big.Int).SetUint64(tokenAmount),
	)

	quo := new(big.Int).Quo(num, den)
	if !quo.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	return quo.Uint64(), nil
}

// CreatorAllowance returns the maximum token amount the curve creator may
// trade, given the seconds elapsed since their previous trade on the mint.
// The allowance ramps linearly from zero to CreatorTransferCapBps of total
// supply over CreatorThrottleWindow, rounded down.
func CreatorAllowance(totalSupply uint64, elapsedSeconds int64) uint64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	if elapsedSeconds > constants.CreatorThrottleWindow {
		elapsedSeconds = constants.CreatorThrottleWindow
	}
	a := new(big.Int).SetUint64(totalSupply)
	a.Mul(a, new(big.Int).SetUint64(constants.CreatorTransferCapBps))
	a.Mul(a, big.NewInt(elapsedSeconds))
	a.Div(a, new(big.Int).Mul(
		big.NewInt(constants.BasisPointsDenominator),
		big.NewInt(constants.CreatorThrottleWindow),
	))
	return a.Uint64()
}

// Fee computes the trading fee on a gross sol amount, rounded down.
func Fee(solAmount, feeBasisPoints uint64) (uint64, error) {
	f := new(big.Int).Mul(
		new(big.Int).SetUint64(solAmount),
		new(big.Int).SetUint64(feeBasisPoints),
	)
	f.Quo(f, big.NewInt(constants.BasisPointsDenominator))
	if !f.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	return f.Uint64(), nil
}

// ApplyBuy executes a buy against a reserve snapshot and returns the updated
// snapshot and the trade result. The input snapshot is not mutated. Driving
// real token reserves to zero flips the curve to PhaseComplete; the
// transition is irreversible.
//
// Slippage (maxSolCost) is enforced by the caller against
// TradeResult.SolAmount + TradeResult.Fee before committing the snapshot.
func ApplyBuy(bc *curve.BondingCurve, tokenAmount, feeBasisPoints uint64) (*curve.BondingCurve, *TradeResult, error) {
	if bc.Complete() {
		return nil, nil, types.ErrBondingCurveComplete
	}
	if tokenAmount > bc.RealTokenReserves {
		return nil, nil, types.ErrInsufficientTokens
	}
	if tokenAmount == 0 {
		return nil, nil, types.ErrMinBuy
	}

	solAmount, err := GetBuyPrice(bc, tokenAmount)
	if err != nil {
		return nil, nil, err
	}
	fee, err := Fee(solAmount, feeBasisPoints)
	if err != nil {
		return nil, nil, err
	}

	next := *bc
	next.VirtualTokenReserves = bc.VirtualTokenReserves - tokenAmount
	next.RealTokenReserves = bc.RealTokenReserves - tokenAmount
	if next.VirtualSolReserves, err = addU64(bc.VirtualSolReserves, solAmount); err != nil {
		return nil, nil, err
	}
	if next.RealSolReserves, err = addU64(bc.RealSolReserves, solAmount); err != nil {
		return nil, nil, err
	}
	if next.RealTokenReserves == 0 {
		next.Phase = curve.PhaseComplete
	}

	return &next, &TradeResult{
		IsBuy:       true,
		TokenAmount: tokenAmount,
		SolAmount:   solAmount,
		Fee:         fee,
	}, nil
}

// ApplySell executes a sell against a reserve snapshot and returns the
// updated snapshot and the trade result. The input snapshot is not mutated.
// Selling never completes a curve.
//
// Slippage (minSolOutput) is enforced by the caller against
// TradeResult.SolAmount - TradeResult.Fee before committing the snapshot.
func ApplySell(bc *curve.BondingCurve, tokenAmount, feeBasisPoints uint64) (*curve.BondingCurve, *TradeResult, error) {
	if bc.Complete() {
		return nil, nil, types.ErrBondingCurveComplete
	}
	if tokenAmount == 0 {
		return nil, nil, types.ErrMinSell
	}

	solAmount, err := GetSellPrice(bc, tokenAmount)
	if err != nil {
		return nil, nil, err
	}
	fee, err := Fee(solAmount, feeBasisPoints)
	if err != nil {
		return nil, nil, err
	}

	next := *bc
	if next.VirtualTokenReserves, err = addU64(bc.VirtualTokenReserves, tokenAmount); err != nil {
		return nil, nil, err
	}
	if next.RealTokenReserves, err = addU64(bc.RealTokenReserves, tokenAmount); err != nil {
		return nil, nil, err
	}
	if next.VirtualSolReserves, err = subU64(bc.VirtualSolReserves, solAmount); err != nil {
		return nil, nil, err
	}
	if next.RealSolReserves, err = subU64(bc.RealSolReserves, solAmount); err != nil {
		return nil, nil, err
	}

	return &next, &TradeResult{
		IsBuy:       false,
		TokenAmount: tokenAmount,
		SolAmount:   solAmount,
		Fee:         fee,
	}, nil
}

func addU64(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, types.ErrArithmeticOverflow
	}
	return s, nil
}

func subU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, types.ErrArithmeticOverflow
	}
	return a - b, nil
}
