package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/curve-launchpad/pkg/amm"
	"github.com/ninja0404/curve-launchpad/pkg/constants"
	"github.com/ninja0404/curve-launchpad/pkg/curve"
)

func defaultCurve() *curve.BondingCurve {
	return &curve.BondingCurve{
		VirtualTokenReserves: constants.DefaultInitialVirtualTokenReserves,
		VirtualSolReserves:   constants.DefaultInitialVirtualSolReserves,
		RealTokenReserves:    constants.DefaultInitialRealTokenReserves,
		TokenTotalSupply:     constants.DefaultInitialTokenSupply,
		Phase:                curve.PhaseActive,
	}
}

func TestBuyTokensOut(t *testing.T) {
	bc := defaultCurve()

	_, err := BuyTokensOut(bc, 0)
	assert.Error(t, err)

	// 1 SOL in: 1e9 * vToken / (vSol + 1e9), floored.
	out, err := BuyTokensOut(bc, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(34_612_903_225_806), out)

	// Oversized input is capped at the sellable reserves.
	out, err = BuyTokensOut(bc, 1_000_000_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, bc.RealTokenReserves, out)
}

func TestBuyQuote(t *testing.T) {
	bc := defaultCurve()

	res, err := BuyQuote(bc, 1_000_000_000, 100)
	require.NoError(t, err)

	assert.Equal(t, uint64(34_612_903_225_806), res.ExpectedOut)
	assert.Equal(t, ApplySlippage(res.ExpectedOut, 100), res.MinOut)
	assert.Less(t, res.MinOut, res.ExpectedOut)

	// Buying moves the execution price above spot.
	assert.Greater(t, res.ExecutionPrice, res.SpotPrice)
	assert.Greater(t, res.PriceImpactBps, uint64(0))

	_, err = BuyQuote(bc, 1_000_000_000, 10_001)
	assert.Error(t, err)
}

func TestSellQuote(t *testing.T) {
	bc := defaultCurve()
	const amount = 34_612_903_225_806

	gross, err := amm.GetSellPrice(bc, amount)
	require.NoError(t, err)
	fee, err := amm.Fee(gross, constants.DefaultFeeBasisPoints)
	require.NoError(t, err)

	res, err := SellQuote(bc, amount, constants.DefaultFeeBasisPoints, 0)
	require.NoError(t, err)
	assert.Equal(t, gross-fee, res.ExpectedOut)
	assert.Equal(t, res.ExpectedOut, res.MinOut)

	// Selling executes below spot.
	assert.Less(t, res.ExecutionPrice, res.SpotPrice)

	_, err = SellQuote(bc, 0, constants.DefaultFeeBasisPoints, 0)
	assert.Error(t, err)
}

func TestBuyCost(t *testing.T) {
	bc := defaultCurve()
	const amount = 1_000_000_000

	gross, err := amm.GetBuyPrice(bc, amount)
	require.NoError(t, err)
	fee, err := amm.Fee(gross, constants.DefaultFeeBasisPoints)
	require.NoError(t, err)

	cost, err := BuyCost(bc, amount, constants.DefaultFeeBasisPoints)
	require.NoError(t, err)
	assert.Equal(t, gross+fee, cost)
}

func TestSpotPrice(t *testing.T) {
	price, err := SpotPrice(defaultCurve())
	require.NoError(t, err)
	assert.Equal(t, uint64(27_958), price)

	_, err = SpotPrice(&curve.BondingCurve{})
	assert.Error(t, err)
}

func TestApplySlippage(t *testing.T) {
	assert.Equal(t, uint64(1_000), ApplySlippage(1_000, 0))
	assert.Equal(t, uint64(990), ApplySlippage(1_000, 100))
	assert.Equal(t, uint64(9_999), ApplySlippage(10_000, 1))
	assert.Equal(t, uint64(0), ApplySlippage(1_000, 10_000))
	assert.Equal(t, uint64(0), ApplySlippage(1_000, 12_000))
}
