// Package engine implements the bonding-curve lifecycle controller: the
// global config singleton and the per-token state machine
// create -> trade* -> complete -> withdraw.
//
// The engine is entirely synchronous. Each operation reads a record
// snapshot, computes, and writes the snapshot back under a per-resource
// lock; no partial update is ever observable. Operations on distinct curves
// proceed in parallel.
package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/ninja0404/curve-launchpad/pkg/amm"
	"github.com/ninja0404/curve-launchpad/pkg/config"
	"github.com/ninja0404/curve-launchpad/pkg/constants"
	"github.com/ninja0404/curve-launchpad/pkg/curve"
	"github.com/ninja0404/curve-launchpad/pkg/events"
	"github.com/ninja0404/curve-launchpad/pkg/ledger"
	"github.com/ninja0404/curve-launchpad/pkg/store"
	"github.com/ninja0404/curve-launchpad/pkg/types"
)

// Engine is the lifecycle controller. Construct with New.
type Engine struct {
	store  store.Store
	ledger ledger.Ledger
	log    zerolog.Logger
	now    func() time.Time
	params config.LaunchParams

	globalMu sync.Mutex
	curveMu  sync.Map // mint -> *sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock overrides the timestamp source for emitted events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLaunchParams overrides the parameter template seeded at Initialize.
func WithLaunchParams(p config.LaunchParams) Option {
	return func(e *Engine) { e.params = p }
}

// New builds an Engine over a record store and a balance ledger.
func New(st store.Store, led ledger.Ledger, opts ...Option) (*Engine, error) {
	if st == nil {
		return nil, types.ErrNilStore
	}
	if led == nil {
		return nil, types.ErrNilLedger
	}
	e := &Engine{
		store:  st,
		ledger: led,
		log:    zerolog.Nop(),
		now:    time.Now,
		params: config.LaunchParams{
			InitialVirtualTokenReserves: constants.DefaultInitialVirtualTokenReserves,
			InitialVirtualSolReserves:   constants.DefaultInitialVirtualSolReserves,
			InitialRealTokenReserves:    constants.DefaultInitialRealTokenReserves,
			InitialTokenSupply:          constants.DefaultInitialTokenSupply,
			FeeBasisPoints:              constants.DefaultFeeBasisPoints,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// hasAuthority is the capability check: caller must equal the required
// identity recorded in the global config.
func hasAuthority(caller, required solana.PublicKey) bool {
	return caller.Equals(required)
}

// Initialize creates the global config singleton with the default launch
// parameters. Fails with AlreadyInitialized on repeat calls.
func (e *Engine) Initialize(authority, feeRecipient, withdrawAuthority solana.PublicKey) (*curve.Global, error) {
	if err := types.ValidatePublicKeys(map[string]solana.PublicKey{
		"authority":         authority,
		"feeRecipient":      feeRecipient,
		"withdrawAuthority": withdrawAuthority,
	}); err != nil {
		return nil, err
	}

	e.globalMu.Lock()
	defer e.globalMu.Unlock()

	if ok, err := e.store.Has(curve.GlobalKey()); err != nil {
		return nil, fmt.Errorf("check global: %w", err)
	} else if ok {
		return nil, types.ErrAlreadyInitialized
	}

	g := &curve.Global{
		Initialized:                 true,
		Authority:                   authority,
		FeeRecipient:                feeRecipient,
		WithdrawAuthority:           withdrawAuthority,
		InitialVirtualTokenReserves: e.params.InitialVirtualTokenReserves,
		InitialVirtualSolReserves:   e.params.InitialVirtualSolReserves,
		InitialRealTokenReserves:    e.params.InitialRealTokenReserves,
		InitialTokenSupply:          e.params.InitialTokenSupply,
		FeeBasisPoints:              e.params.FeeBasisPoints,
	}
	if err := e.putGlobal(g); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("op", "initialize").
		Str("authority", authority.String()).
		Msg("global config created")
	return g, nil
}

// SetParams replaces the launch parameter template. Only the config
// authority may call it; existing curves are unaffected.
func (e *Engine) SetParams(caller solana.PublicKey, initialVirtualTokenReserves, initialVirtualSolReserves, initialRealTokenReserves, initialTokenSupply, feeBasisPoints uint64) (events.SetParamsEvent, error) {
	e.globalMu.Lock()
	defer e.globalMu.Unlock()

	g, err := e.loadGlobal()
	if err != nil {
		return events.SetParamsEvent{}, err
	}
	if !hasAuthority(caller, g.Authority) {
		return events.SetParamsEvent{}, types.ErrInvalidAuthority
	}

	g.InitialVirtualTokenReserves = initialVirtualTokenReserves
	g.InitialVirtualSolReserves = initialVirtualSolReserves
	g.InitialRealTokenReserves = initialRealTokenReserves
	g.InitialTokenSupply = initialTokenSupply
	g.FeeBasisPoints = feeBasisPoints

	if err := e.putGlobal(g); err != nil {
		return events.SetParamsEvent{}, err
	}

	e.log.Info().
		Str("op", "set_params").
		Uint64("fee_basis_points", feeBasisPoints).
		Msg("global config updated")
	return events.NewSetParams(g), nil
}

// Create launches a new token: instantiates the bonding curve from the
// current config template, mints the full supply into curve custody, and
// binds the display metadata. One curve per mint.
func (e *Engine) Create(creator, mint solana.PublicKey, name, symbol, uri string) (*curve.BondingCurve, events.CreateEvent, error) {
	if err := types.ValidatePublicKeys(map[string]solana.PublicKey{
		"creator": creator,
		"mint":    mint,
	}); err != nil {
		return nil, events.CreateEvent{}, err
	}
	if err := types.ValidateMetadata(name, symbol, uri); err != nil {
		return nil, events.CreateEvent{}, err
	}

	g, err := e.loadGlobal()
	if err != nil {
		return nil, events.CreateEvent{}, err
	}

	mu := e.lockCurve(mint)
	defer mu.Unlock()

	if ok, err := e.store.Has(curve.CurveKey(mint)); err != nil {
		return nil, events.CreateEvent{}, fmt.Errorf("check curve: %w", err)
	} else if ok {
		return nil, events.CreateEvent{}, types.ErrDuplicateCurve
	}

	bc, err := curve.NewBondingCurve(g, mint, creator, name, symbol, uri)
	if err != nil {
		return nil, events.CreateEvent{}, err
	}

	curveAddr, err := curve.Address(mint)
	if err != nil {
		return nil, events.CreateEvent{}, err
	}
	if err := e.ledger.Mint(mint, curveAddr, bc.TokenTotalSupply); err != nil {
		return nil, events.CreateEvent{}, fmt.Errorf("mint supply: %w", err)
	}

	if err := e.putCurve(bc); err != nil {
		return nil, events.CreateEvent{}, err
	}

	e.log.Info().
		Str("op", "create").
		Str("mint", mint.String()).
		Str("symbol", symbol).
		Msg("bonding curve created")
	return bc, events.NewCreate(bc), nil
}

// Buy purchases tokenAmount from the curve. The caller pays the curve price
// plus fee, bounded by maxSolCost. A buy that drains the real token reserves
// completes the curve and additionally returns a CompleteEvent.
func (e *Engine) Buy(user, mint solana.PublicKey, tokenAmount, maxSolCost uint64) (events.TradeEvent, *events.CompleteEvent, error) {
	g, err := e.loadGlobal()
	if err != nil {
		return events.TradeEvent{}, nil, err
	}

	mu := e.lockCurve(mint)
	defer mu.Unlock()

	bc, err := e.loadCurve(mint)
	if err != nil {
		return events.TradeEvent{}, nil, err
	}

	ts := e.now().Unix()
	if err := e.checkCreatorThrottle(bc, user, tokenAmount, ts); err != nil {
		return events.TradeEvent{}, nil, err
	}

	next, res, err := amm.ApplyBuy(bc, tokenAmount, g.FeeBasisPoints)
	if err != nil {
		return events.TradeEvent{}, nil, err
	}

	cost := res.SolAmount + res.Fee
	if cost < res.SolAmount {
		return events.TradeEvent{}, nil, types.ErrArithmeticOverflow
	}
	if cost > maxSolCost {
		return events.TradeEvent{}, nil, types.ErrMaxSOLCostExceeded
	}
	if e.ledger.BalanceOf(ledger.Native, user) < cost {
		return events.TradeEvent{}, nil, types.ErrInsufficientSOL
	}
	if err := next.Validate(); err != nil {
		return events.TradeEvent{}, nil, err
	}

	curveAddr, err := curve.Address(mint)
	if err != nil {
		return events.TradeEvent{}, nil, err
	}
	if e.ledger.BalanceOf(mint, curveAddr) < res.TokenAmount {
		return events.TradeEvent{}, nil, types.ErrInsufficientTokens
	}

	// All guards passed; settle and commit.
	if err := e.ledger.Transfer(ledger.Native, user, curveAddr, res.SolAmount); err != nil {
		return events.TradeEvent{}, nil, fmt.Errorf("settle buy: %w", err)
	}
	if err := e.ledger.Transfer(ledger.Native, user, g.FeeRecipient, res.Fee); err != nil {
		return events.TradeEvent{}, nil, fmt.Errorf("settle buy fee: %w", err)
	}
	if err := e.ledger.Transfer(mint, curveAddr, user, res.TokenAmount); err != nil {
		return events.TradeEvent{}, nil, fmt.Errorf("settle buy tokens: %w", err)
	}
	if err := e.putCurve(next); err != nil {
		return events.TradeEvent{}, nil, err
	}
	if err := e.recordTransfer(user, mint, ts); err != nil {
		return events.TradeEvent{}, nil, err
	}

	trade := events.NewTrade(next, res, user, ts)

	var completed *events.CompleteEvent
	if next.Complete() && !bc.Complete() {
		ev := events.NewComplete(next, user, ts)
		completed = &ev
		e.log.Info().
			Str("op", "buy").
			Str("mint", mint.String()).
			Msg("bonding curve complete")
	}

	e.log.Debug().
		Str("op", "buy").
		Str("mint", mint.String()).
		Uint64("token_amount", res.TokenAmount).
		Uint64("sol_amount", res.SolAmount).
		Uint64("fee", res.Fee).
		Msg("buy applied")
	return trade, completed, nil
}

// Sell sells tokenAmount back to the curve. The caller receives the curve
// price minus fee, floored by minSolOutput. Selling never completes a curve.
func (e *Engine) Sell(user, mint solana.PublicKey, tokenAmount, minSolOutput uint64) (events.TradeEvent, error) {
	g, err := e.loadGlobal()
	if err != nil {
		return events.TradeEvent{}, err
	}

	mu := e.lockCurve(mint)
	defer mu.Unlock()

	bc, err := e.loadCurve(mint)
	if err != nil {
		return events.TradeEvent{}, err
	}

	ts := e.now().Unix()
	if err := e.checkCreatorThrottle(bc, user, tokenAmount, ts); err != nil {
		return events.TradeEvent{}, err
	}

	next, res, err := amm.ApplySell(bc, tokenAmount, g.FeeBasisPoints)
	if err != nil {
		return events.TradeEvent{}, err
	}

	if e.ledger.BalanceOf(mint, user) < tokenAmount {
		return events.TradeEvent{}, types.ErrInsufficientTokens
	}
	if res.Fee > res.SolAmount {
		return events.TradeEvent{}, types.ErrArithmeticOverflow
	}
	payout := res.SolAmount - res.Fee
	if payout < minSolOutput {
		return events.TradeEvent{}, types.ErrMinSOLOutputExceeded
	}
	if err := next.Validate(); err != nil {
		return events.TradeEvent{}, err
	}

	curveAddr, err := curve.Address(mint)
	if err != nil {
		return events.TradeEvent{}, err
	}

	if err := e.ledger.Transfer(mint, user, curveAddr, tokenAmount); err != nil {
		return events.TradeEvent{}, fmt.Errorf("settle sell tokens: %w", err)
	}
	if err := e.ledger.Transfer(ledger.Native, curveAddr, user, payout); err != nil {
		return events.TradeEvent{}, fmt.Errorf("settle sell: %w", err)
	}
	if err := e.ledger.Transfer(ledger.Native, curveAddr, g.FeeRecipient, res.Fee); err != nil {
		return events.TradeEvent{}, fmt.Errorf("settle sell fee: %w", err)
	}
	if err := e.putCurve(next); err != nil {
		return events.TradeEvent{}, err
	}
	if err := e.recordTransfer(user, mint, ts); err != nil {
		return events.TradeEvent{}, err
	}

	e.log.Debug().
		Str("op", "sell").
		Str("mint", mint.String()).
		Uint64("token_amount", res.TokenAmount).
		Uint64("sol_amount", res.SolAmount).
		Uint64("fee", res.Fee).
		Msg("sell applied")
	return events.NewTrade(next, res, user, ts), nil
}

// Withdraw claims a completed curve's remaining balances for the withdraw
// authority. The curve retains the protocol-mandated minimum native balance
// and its record, marked Withdrawn; a second call fails.
func (e *Engine) Withdraw(caller, mint solana.PublicKey) (events.WithdrawEvent, error) {
	g, err := e.loadGlobal()
	if err != nil {
		return events.WithdrawEvent{}, err
	}

	mu := e.lockCurve(mint)
	defer mu.Unlock()

	bc, err := e.loadCurve(mint)
	if err != nil {
		return events.WithdrawEvent{}, err
	}

	switch bc.Phase {
	case curve.PhaseActive:
		return events.WithdrawEvent{}, types.ErrBondingCurveNotComplete
	case curve.PhaseWithdrawn:
		return events.WithdrawEvent{}, types.ErrCurveNotWithdrawable
	}
	if !hasAuthority(caller, g.WithdrawAuthority) {
		return events.WithdrawEvent{}, types.ErrInvalidWithdrawAuthority
	}

	curveAddr, err := curve.Address(mint)
	if err != nil {
		return events.WithdrawEvent{}, err
	}

	tokenBalance := e.ledger.BalanceOf(mint, curveAddr)
	solBalance := e.ledger.BalanceOf(ledger.Native, curveAddr)
	var solOut uint64
	if solBalance > constants.MinCurveLamports {
		solOut = solBalance - constants.MinCurveLamports
	}

	if err := e.ledger.Transfer(mint, curveAddr, g.WithdrawAuthority, tokenBalance); err != nil {
		return events.WithdrawEvent{}, fmt.Errorf("withdraw tokens: %w", err)
	}
	if err := e.ledger.Transfer(ledger.Native, curveAddr, g.WithdrawAuthority, solOut); err != nil {
		return events.WithdrawEvent{}, fmt.Errorf("withdraw sol: %w", err)
	}

	next := *bc
	next.RealSolReserves = 0
	next.Phase = curve.PhaseWithdrawn
	if err := e.putCurve(&next); err != nil {
		return events.WithdrawEvent{}, err
	}

	e.log.Info().
		Str("op", "withdraw").
		Str("mint", mint.String()).
		Uint64("sol_amount", solOut).
		Uint64("token_amount", tokenBalance).
		Msg("curve withdrawn")
	return events.NewWithdraw(&next, g.WithdrawAuthority, solOut, tokenBalance, e.now().Unix()), nil
}

// Global returns the current config singleton.
func (e *Engine) Global() (*curve.Global, error) {
	return e.loadGlobal()
}

// Curve returns the bonding curve record for a mint.
func (e *Engine) Curve(mint solana.PublicKey) (*curve.BondingCurve, error) {
	return e.loadCurve(mint)
}

// checkCreatorThrottle enforces the anti-bot cap on the curve creator: their
// tradable amount ramps back up over the throttle window since their previous
// trade on the mint. Other users trade unthrottled.
func (e *Engine) checkCreatorThrottle(bc *curve.BondingCurve, user solana.PublicKey, tokenAmount uint64, now int64) error {
	if !user.Equals(bc.Creator) {
		return nil
	}
	last, err := e.lastTransfer(user, bc.Mint)
	if err != nil {
		return err
	}
	if tokenAmount > amm.CreatorAllowance(bc.TokenTotalSupply, now-last) {
		return types.ErrCreatorTransferLimit
	}
	return nil
}

func (e *Engine) lastTransfer(user, mint solana.PublicKey) (int64, error) {
	data, err := e.store.Get(curve.TransferKey(user, mint))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load transfer record: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("malformed transfer record for %s/%s", user, mint)
	}
	return int64(binary.LittleEndian.Uint64(data)), nil
}

func (e *Engine) recordTransfer(user, mint solana.PublicKey, now int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(now))
	if err := e.store.Put(curve.TransferKey(user, mint), buf[:]); err != nil {
		return fmt.Errorf("store transfer record: %w", err)
	}
	return nil
}

func (e *Engine) lockCurve(mint solana.PublicKey) *sync.Mutex {
	v, _ := e.curveMu.LoadOrStore(mint, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

func (e *Engine) loadGlobal() (*curve.Global, error) {
	data, err := e.store.Get(curve.GlobalKey())
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("load global: %w", err)
	}
	g := new(curve.Global)
	if err := g.Unmarshal(data); err != nil {
		return nil, err
	}
	if !g.Initialized {
		return nil, types.ErrNotInitialized
	}
	return g, nil
}

func (e *Engine) putGlobal(g *curve.Global) error {
	data, err := g.Marshal()
	if err != nil {
		return err
	}
	if err := e.store.Put(curve.GlobalKey(), data); err != nil {
		return fmt.Errorf("store global: %w", err)
	}
	return nil
}

func (e *Engine) loadCurve(mint solana.PublicKey) (*curve.BondingCurve, error) {
	data, err := e.store.Get(curve.CurveKey(mint))
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.ErrCurveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load curve: %w", err)
	}
	bc := new(curve.BondingCurve)
	if err := bc.Unmarshal(data); err != nil {
		return nil, err
	}
	return bc, nil
}

func (e *Engine) putCurve(bc *curve.BondingCurve) error {
	data, err := bc.Marshal()
	if err != nil {
		return err
	}
	if err := e.store.Put(curve.CurveKey(bc.Mint), data); err != nil {
		return fmt.Errorf("store curve: %w", err)
	}
	return nil
}
