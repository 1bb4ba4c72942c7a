// Package quote provides price estimation over bonding curve snapshots.
//
// All quotes are non-binding: they are computed from a point-in-time
// snapshot and may differ from execution if other trades land first. The
// binding numbers come from the trade executor at commit time.
package quote

import (
	"math/big"

	"github.com/ninja0404/curve-launchpad/pkg/amm"
	"github.com/ninja0404/curve-launchpad/pkg/curve"
	"github.com/ninja0404/curve-launchpad/pkg/types"
)

// Result contains the outcome of a price quote.
type Result struct {
	// ExpectedOut is the estimated output amount (tokens for buy, SOL for sell).
	ExpectedOut uint64

	// MinOut is the minimum output with slippage applied.
	MinOut uint64

	// PriceImpactBps is the estimated price impact in basis points.
	PriceImpactBps uint64

	// SpotPrice is the current curve price (SOL per token, scaled by 1e9).
	SpotPrice uint64

	// ExecutionPrice is the effective price of this trade (scaled by 1e9).
	ExecutionPrice uint64
}

// BuyTokensOut estimates the token output for an exact SOL input.
//
//	tokensOut = solIn * virtualTokenReserves / (virtualSolReserves + solIn)
//
// The estimate is capped at the curve's sellable reserves.
func BuyTokensOut(bc *curve.BondingCurve, solLamports uint64) (uint64, error) {
	if solLamports == 0 {
		return 0, types.NewValidationError("solLamports", "must be greater than 0")
	}

	solIn := new(big.Int).SetUint64(solLamports)
	num := new(big.Int).Mul(solIn, new(big.Int).SetUint64(bc.VirtualTokenReserves))
	den := new(big.Int).Add(new(big.Int).SetUint64(bc.VirtualSolReserves), solIn)

	out := new(big.Int).Div(num, den)
	if !out.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	tokens := out.Uint64()
	if tokens > bc.RealTokenReserves {
		tokens = bc.RealTokenReserves
	}
	return tokens, nil
}

// BuyQuote estimates tokens received for an exact SOL input, with price
// metrics and optional slippage applied to MinOut.
func BuyQuote(bc *curve.BondingCurve, solLamports, slippageBps uint64) (*Result, error) {
	if err := types.ValidateSlippage(slippageBps); err != nil {
		return nil, err
	}
	tokens, err := BuyTokensOut(bc, solLamports)
	if err != nil {
		return nil, err
	}

	spot, exec, impact := priceMetrics(bc, solLamports, tokens, true)
	return &Result{
		ExpectedOut:    tokens,
		MinOut:         ApplySlippage(tokens, slippageBps),
		PriceImpactBps: impact,
		SpotPrice:      spot,
		ExecutionPrice: exec,
	}, nil
}

// SellQuote estimates the net SOL payout for selling tokenAmount, fee
// deducted, with price metrics and optional slippage applied to MinOut.
func SellQuote(bc *curve.BondingCurve, tokenAmount, feeBasisPoints, slippageBps uint64) (*Result, error) {
	if err := types.ValidateSlippage(slippageBps); err != nil {
		return nil, err
	}
	gross, err := amm.GetSellPrice(bc, tokenAmount)
	if err != nil {
		return nil, err
	}
	fee, err := amm.Fee(gross, feeBasisPoints)
	if err != nil {
		return nil, err
	}
	if fee > gross {
		return nil, types.ErrArithmeticOverflow
	}
	net := gross - fee

	spot, exec, impact := priceMetrics(bc, net, tokenAmount, false)
	return &Result{
		ExpectedOut:    net,
		MinOut:         ApplySlippage(net, slippageBps),
		PriceImpactBps: impact,
		SpotPrice:      spot,
		ExecutionPrice: exec,
	}, nil
}

// BuyCost returns the total SOL a caller must supply (curve price plus fee)
// to buy tokenAmount. Suitable as a maxSolCost input.
func BuyCost(bc *curve.BondingCurve, tokenAmount, feeBasisPoints uint64) (uint64, error) {
	gross, err := amm.GetBuyPrice(bc, tokenAmount)
	if err != nil {
		return 0, err
	}
	fee, err := amm.Fee(gross, feeBasisPoints)
	if err != nil {
		return 0, err
	}
	cost := gross + fee
	if cost < gross {
		return 0, types.ErrArithmeticOverflow
	}
	return cost, nil
}

// SpotPrice returns the current curve price as SOL per token, scaled by 1e9.
func SpotPrice(bc *curve.BondingCurve) (uint64, error) {
	if bc.VirtualTokenReserves == 0 {
		return 0, types.NewValidationError("virtualTokenReserves", "curve has zero token reserves")
	}
	price := new(big.Int).SetUint64(bc.VirtualSolReserves)
	price.Mul(price, big.NewInt(1e9))
	price.Div(price, new(big.Int).SetUint64(bc.VirtualTokenReserves))
	if !price.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	return price.Uint64(), nil
}

// ApplySlippage reduces amount by slippageBps basis points.
func ApplySlippage(amount, slippageBps uint64) uint64 {
	if slippageBps >= 10000 {
		return 0
	}
	out := new(big.Int).SetUint64(amount)
	out.Mul(out, new(big.Int).SetUint64(10000-slippageBps))
	out.Div(out, big.NewInt(10000))
	return out.Uint64()
}

func priceMetrics(bc *curve.BondingCurve, solAmount, tokenAmount uint64, isBuy bool) (spotPrice, execPrice, impactBps uint64) {
	if bc.VirtualTokenReserves == 0 || tokenAmount == 0 {
		return 0, 0, 0
	}

	spot := new(big.Int).SetUint64(bc.VirtualSolReserves)
	spot.Mul(spot, big.NewInt(1e9))
	spot.Div(spot, new(big.Int).SetUint64(bc.VirtualTokenReserves))
	spotPrice = spot.Uint64()

	exec := new(big.Int).SetUint64(solAmount)
	exec.Mul(exec, big.NewInt(1e9))
	exec.Div(exec, new(big.Int).SetUint64(tokenAmount))
	execPrice = exec.Uint64()

	if spotPrice > 0 {
		if isBuy {
			if execPrice > spotPrice {
				impactBps = (execPrice - spotPrice) * 10000 / spotPrice
			}
		} else {
			if spotPrice > execPrice {
				impactBps = (spotPrice - execPrice) * 10000 / spotPrice
			}
		}
	}
	return spotPrice, execPrice, impactBps
}
