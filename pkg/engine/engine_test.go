package engine

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/curve-launchpad/pkg/amm"
	"github.com/ninja0404/curve-launchpad/pkg/constants"
	"github.com/ninja0404/curve-launchpad/pkg/curve"
	"github.com/ninja0404/curve-launchpad/pkg/ledger"
	"github.com/ninja0404/curve-launchpad/pkg/store"
	"github.com/ninja0404/curve-launchpad/pkg/types"
)

type fixture struct {
	eng          *Engine
	led          *ledger.Memory
	authority    solana.PublicKey
	feeRecipient solana.PublicKey
	withdrawAuth solana.PublicKey
	creator      solana.PublicKey
	user         solana.PublicKey
	mint         solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	led := ledger.NewMemory()
	eng, err := New(store.NewMemory(), led, WithClock(func() time.Time {
		return time.Unix(1_700_000_000, 0)
	}))
	require.NoError(t, err)

	return &fixture{
		eng:          eng,
		led:          led,
		authority:    solana.NewWallet().PublicKey(),
		feeRecipient: solana.NewWallet().PublicKey(),
		withdrawAuth: solana.NewWallet().PublicKey(),
		creator:      solana.NewWallet().PublicKey(),
		user:         solana.NewWallet().PublicKey(),
		mint:         solana.NewWallet().PublicKey(),
	}
}

func (f *fixture) initialize(t *testing.T) {
	t.Helper()
	_, err := f.eng.Initialize(f.authority, f.feeRecipient, f.withdrawAuth)
	require.NoError(t, err)
}

func (f *fixture) createCurve(t *testing.T) *curve.BondingCurve {
	t.Helper()
	bc, _, err := f.eng.Create(f.creator, f.mint, "Test Token", "TEST", "https://example.com/meta.json")
	require.NoError(t, err)
	return bc
}

func (f *fixture) fund(t *testing.T, owner solana.PublicKey, lamports uint64) {
	t.Helper()
	require.NoError(t, f.led.Mint(ledger.Native, owner, lamports))
}

func (f *fixture) curveAddr(t *testing.T) solana.PublicKey {
	t.Helper()
	addr, err := curve.Address(f.mint)
	require.NoError(t, err)
	return addr
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)

	g, err := f.eng.Initialize(f.authority, f.feeRecipient, f.withdrawAuth)
	require.NoError(t, err)
	assert.True(t, g.Initialized)
	assert.Equal(t, f.authority, g.Authority)
	assert.Equal(t, constants.DefaultFeeBasisPoints, g.FeeBasisPoints)

	_, err = f.eng.Initialize(f.authority, f.feeRecipient, f.withdrawAuth)
	assert.ErrorIs(t, err, types.ErrAlreadyInitialized)
}

func TestOpsBeforeInitialize(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.eng.Create(f.user, f.mint, "T", "T", "")
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	_, _, err = f.eng.Buy(f.user, f.mint, 1, 1)
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	_, err = f.eng.SetParams(f.authority, 1, 1, 1, 1, 1)
	assert.ErrorIs(t, err, types.ErrNotInitialized)
}

func TestSetParams(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	t.Run("non-authority is rejected", func(t *testing.T) {
		_, err := f.eng.SetParams(f.user, 1, 2, 3, 4, 5)
		assert.ErrorIs(t, err, types.ErrInvalidAuthority)

		// Config unchanged.
		g, err := f.eng.Global()
		require.NoError(t, err)
		assert.Equal(t, constants.DefaultInitialVirtualTokenReserves, g.InitialVirtualTokenReserves)
	})

	t.Run("authority replaces the template", func(t *testing.T) {
		ev, err := f.eng.SetParams(f.authority, 2_000_000, 1_000_000, 1_500_000, 2_000_000, 100)
		require.NoError(t, err)
		assert.Equal(t, uint64(2_000_000), ev.InitialVirtualTokenReserves)
		assert.Equal(t, uint64(100), ev.FeeBasisPoints)
		assert.Equal(t, f.feeRecipient, ev.FeeRecipient)

		g, err := f.eng.Global()
		require.NoError(t, err)
		assert.Equal(t, uint64(100), g.FeeBasisPoints)
	})
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	bc, ev, err := f.eng.Create(f.user, f.mint, "Test Token", "TEST", "https://example.com/meta.json")
	require.NoError(t, err)
	assert.Equal(t, "Test Token", ev.Name)
	assert.Equal(t, f.mint, ev.Mint)
	assert.Equal(t, f.user, ev.Creator)
	assert.Equal(t, constants.DefaultInitialTokenSupply, bc.TokenTotalSupply)

	// Full supply sits in curve custody.
	assert.Equal(t, constants.DefaultInitialTokenSupply, f.led.BalanceOf(f.mint, f.curveAddr(t)))

	_, _, err = f.eng.Create(f.user, f.mint, "Again", "AGN", "")
	assert.ErrorIs(t, err, types.ErrDuplicateCurve)
}

func TestBuy(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	created := f.createCurve(t)
	f.fund(t, f.user, 1_000_000_000_000)

	const amount = 1_000_000_000
	wantSol, err := amm.GetBuyPrice(created, amount)
	require.NoError(t, err)
	wantFee, err := amm.Fee(wantSol, constants.DefaultFeeBasisPoints)
	require.NoError(t, err)

	t.Run("zero amount", func(t *testing.T) {
		_, _, err := f.eng.Buy(f.user, f.mint, 0, 1)
		assert.ErrorIs(t, err, types.ErrMinBuy)
	})

	t.Run("unknown mint", func(t *testing.T) {
		_, _, err := f.eng.Buy(f.user, solana.NewWallet().PublicKey(), 1, 1)
		assert.ErrorIs(t, err, types.ErrCurveNotFound)
	})

	t.Run("slippage bound enforced", func(t *testing.T) {
		_, _, err := f.eng.Buy(f.user, f.mint, amount, wantSol+wantFee-1)
		assert.ErrorIs(t, err, types.ErrMaxSOLCostExceeded)

		// No reserve mutation on failure.
		bc, err := f.eng.Curve(f.mint)
		require.NoError(t, err)
		assert.Equal(t, created.VirtualSolReserves, bc.VirtualSolReserves)
	})

	t.Run("insufficient sol", func(t *testing.T) {
		poor := solana.NewWallet().PublicKey()
		_, _, err := f.eng.Buy(poor, f.mint, amount, wantSol+wantFee)
		assert.ErrorIs(t, err, types.ErrInsufficientSOL)
	})

	t.Run("exceeds sellable reserves", func(t *testing.T) {
		_, _, err := f.eng.Buy(f.user, f.mint, created.RealTokenReserves+1, 1_000_000_000_000)
		assert.ErrorIs(t, err, types.ErrInsufficientTokens)
	})

	t.Run("successful buy settles all legs", func(t *testing.T) {
		userSolBefore := f.led.BalanceOf(ledger.Native, f.user)

		trade, completed, err := f.eng.Buy(f.user, f.mint, amount, wantSol+wantFee)
		require.NoError(t, err)
		assert.Nil(t, completed)

		assert.True(t, trade.IsBuy)
		assert.Equal(t, uint64(amount), trade.TokenAmount)
		assert.Equal(t, wantSol, trade.SolAmount)
		assert.Equal(t, wantFee, trade.Fee)
		assert.Equal(t, f.user, trade.User)
		assert.Equal(t, int64(1_700_000_000), trade.Timestamp)

		// Balances: user pays price+fee, curve holds price, recipient holds fee.
		assert.Equal(t, userSolBefore-wantSol-wantFee, f.led.BalanceOf(ledger.Native, f.user))
		assert.Equal(t, wantSol, f.led.BalanceOf(ledger.Native, f.curveAddr(t)))
		assert.Equal(t, wantFee, f.led.BalanceOf(ledger.Native, f.feeRecipient))
		assert.Equal(t, uint64(amount), f.led.BalanceOf(f.mint, f.user))

		// Record committed.
		bc, err := f.eng.Curve(f.mint)
		require.NoError(t, err)
		assert.Equal(t, created.RealTokenReserves-amount, bc.RealTokenReserves)
		assert.Equal(t, wantSol, bc.RealSolReserves)
		assert.Equal(t, trade.VirtualSolReserves, bc.VirtualSolReserves)
	})
}

func TestSell(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.createCurve(t)
	f.fund(t, f.user, 1_000_000_000_000)

	const bought = 2_000_000_000
	_, _, err := f.eng.Buy(f.user, f.mint, bought, 1_000_000_000_000)
	require.NoError(t, err)

	t.Run("zero amount", func(t *testing.T) {
		_, err := f.eng.Sell(f.user, f.mint, 0, 0)
		assert.ErrorIs(t, err, types.ErrMinSell)
	})

	t.Run("more than owned", func(t *testing.T) {
		_, err := f.eng.Sell(f.user, f.mint, bought+1, 0)
		assert.ErrorIs(t, err, types.ErrInsufficientTokens)
	})

	t.Run("min output enforced", func(t *testing.T) {
		bc, err := f.eng.Curve(f.mint)
		require.NoError(t, err)
		gross, err := amm.GetSellPrice(bc, 1_000_000_000)
		require.NoError(t, err)
		fee, err := amm.Fee(gross, constants.DefaultFeeBasisPoints)
		require.NoError(t, err)

		_, err = f.eng.Sell(f.user, f.mint, 1_000_000_000, gross-fee+1)
		assert.ErrorIs(t, err, types.ErrMinSOLOutputExceeded)
	})

	t.Run("successful sell settles all legs", func(t *testing.T) {
		bc, err := f.eng.Curve(f.mint)
		require.NoError(t, err)
		const amount = 1_000_000_000
		gross, err := amm.GetSellPrice(bc, amount)
		require.NoError(t, err)
		fee, err := amm.Fee(gross, constants.DefaultFeeBasisPoints)
		require.NoError(t, err)

		userSolBefore := f.led.BalanceOf(ledger.Native, f.user)
		userTokBefore := f.led.BalanceOf(f.mint, f.user)
		feeBefore := f.led.BalanceOf(ledger.Native, f.feeRecipient)

		trade, err := f.eng.Sell(f.user, f.mint, amount, gross-fee)
		require.NoError(t, err)
		assert.False(t, trade.IsBuy)
		assert.Equal(t, gross, trade.SolAmount)
		assert.Equal(t, fee, trade.Fee)

		assert.Equal(t, userSolBefore+gross-fee, f.led.BalanceOf(ledger.Native, f.user))
		assert.Equal(t, userTokBefore-amount, f.led.BalanceOf(f.mint, f.user))
		assert.Equal(t, feeBefore+fee, f.led.BalanceOf(ledger.Native, f.feeRecipient))

		next, err := f.eng.Curve(f.mint)
		require.NoError(t, err)
		assert.Equal(t, bc.RealTokenReserves+amount, next.RealTokenReserves)
		assert.Equal(t, bc.RealSolReserves-gross, next.RealSolReserves)
	})
}

func TestCompletionAndWithdraw(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	created := f.createCurve(t)
	f.fund(t, f.user, 200_000_000_000_000)

	t.Run("withdraw before completion", func(t *testing.T) {
		_, err := f.eng.Withdraw(f.withdrawAuth, f.mint)
		assert.ErrorIs(t, err, types.ErrBondingCurveNotComplete)
	})

	// Buy out the entire sellable reserve in one trade.
	cost, err := amm.GetBuyPrice(created, created.RealTokenReserves)
	require.NoError(t, err)
	fee, err := amm.Fee(cost, constants.DefaultFeeBasisPoints)
	require.NoError(t, err)

	trade, completed, err := f.eng.Buy(f.user, f.mint, created.RealTokenReserves, cost+fee)
	require.NoError(t, err)
	require.NotNil(t, completed)
	assert.Equal(t, f.mint, completed.Mint)
	assert.Equal(t, uint64(0), trade.RealTokenReserves)

	t.Run("curve is frozen", func(t *testing.T) {
		_, _, err := f.eng.Buy(f.user, f.mint, 1, 1_000_000_000)
		assert.ErrorIs(t, err, types.ErrBondingCurveComplete)

		_, err = f.eng.Sell(f.user, f.mint, 1, 0)
		assert.ErrorIs(t, err, types.ErrBondingCurveComplete)
	})

	t.Run("wrong withdraw authority", func(t *testing.T) {
		_, err := f.eng.Withdraw(f.user, f.mint)
		assert.ErrorIs(t, err, types.ErrInvalidWithdrawAuthority)
	})

	t.Run("withdraw drains balances above the floor", func(t *testing.T) {
		curveAddr := f.curveAddr(t)
		curveSol := f.led.BalanceOf(ledger.Native, curveAddr)
		curveTok := f.led.BalanceOf(f.mint, curveAddr)
		require.Greater(t, curveSol, constants.MinCurveLamports)

		ev, err := f.eng.Withdraw(f.withdrawAuth, f.mint)
		require.NoError(t, err)
		assert.Equal(t, curveSol-constants.MinCurveLamports, ev.SolAmount)
		assert.Equal(t, curveTok, ev.TokenAmount)

		assert.Equal(t, constants.MinCurveLamports, f.led.BalanceOf(ledger.Native, curveAddr))
		assert.Equal(t, uint64(0), f.led.BalanceOf(f.mint, curveAddr))
		assert.Equal(t, ev.SolAmount, f.led.BalanceOf(ledger.Native, f.withdrawAuth))
		assert.Equal(t, ev.TokenAmount, f.led.BalanceOf(f.mint, f.withdrawAuth))

		bc, err := f.eng.Curve(f.mint)
		require.NoError(t, err)
		assert.Equal(t, curve.PhaseWithdrawn, bc.Phase)
		assert.Equal(t, uint64(0), bc.RealSolReserves)
	})

	t.Run("second withdraw fails", func(t *testing.T) {
		_, err := f.eng.Withdraw(f.withdrawAuth, f.mint)
		assert.ErrorIs(t, err, types.ErrCurveNotWithdrawable)
	})
}

func TestCreatorThrottle(t *testing.T) {
	led := ledger.NewMemory()
	now := int64(1_700_000_000)
	eng, err := New(store.NewMemory(), led, WithClock(func() time.Time {
		return time.Unix(now, 0)
	}))
	require.NoError(t, err)

	authority := solana.NewWallet().PublicKey()
	_, err = eng.Initialize(authority, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, err)

	creator := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	_, _, err = eng.Create(creator, mint, "Test Token", "TEST", "")
	require.NoError(t, err)
	require.NoError(t, led.Mint(ledger.Native, creator, 1_000_000_000_000))

	allowance := amm.CreatorAllowance(constants.DefaultInitialTokenSupply, constants.CreatorThrottleWindow)
	require.Equal(t, uint64(5_000_000_000_000), allowance)

	t.Run("creator capped at full allowance", func(t *testing.T) {
		_, _, err := eng.Buy(creator, mint, allowance+1, 1_000_000_000_000)
		assert.ErrorIs(t, err, types.ErrCreatorTransferLimit)

		_, _, err = eng.Buy(creator, mint, allowance, 1_000_000_000_000)
		require.NoError(t, err)
	})

	t.Run("allowance is spent by the trade", func(t *testing.T) {
		_, err := eng.Sell(creator, mint, 1, 0)
		assert.ErrorIs(t, err, types.ErrCreatorTransferLimit)
	})

	t.Run("allowance ramps back with time", func(t *testing.T) {
		now += constants.CreatorThrottleWindow / 2

		_, err := eng.Sell(creator, mint, allowance/2+1, 0)
		assert.ErrorIs(t, err, types.ErrCreatorTransferLimit)

		_, err = eng.Sell(creator, mint, allowance/2, 0)
		require.NoError(t, err)
	})

	t.Run("other users trade unthrottled", func(t *testing.T) {
		user := solana.NewWallet().PublicKey()
		require.NoError(t, led.Mint(ledger.Native, user, 1_000_000_000_000))

		_, _, err := eng.Buy(user, mint, allowance*4, 1_000_000_000_000)
		require.NoError(t, err)
	})
}

func TestCurvesAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.createCurve(t)
	f.fund(t, f.user, 1_000_000_000_000)

	otherMint := solana.NewWallet().PublicKey()
	_, _, err := f.eng.Create(f.user, otherMint, "Other", "OTH", "")
	require.NoError(t, err)

	_, _, err = f.eng.Buy(f.user, f.mint, 1_000_000_000, 1_000_000_000_000)
	require.NoError(t, err)

	// The other curve still sits at its initial state.
	other, err := f.eng.Curve(otherMint)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultInitialRealTokenReserves, other.RealTokenReserves)
	assert.Equal(t, uint64(0), other.RealSolReserves)
}
