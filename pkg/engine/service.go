package engine

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ninja0404/curve-launchpad/pkg/curve"
	"github.com/ninja0404/curve-launchpad/pkg/events"
)

// Service fronts an Engine for a hosting environment: it throttles intake,
// applies a per-op deadline, and logs each operation. The engine itself
// stays synchronous and deterministic.
type Service struct {
	eng     *Engine
	limiter *rate.Limiter
	log     zerolog.Logger
	timeout time.Duration
}

// ServiceConfig controls intake behavior.
type ServiceConfig struct {
	// RPS limits accepted operations per second; 0 disables throttling.
	RPS float64
	// Burst is the throttle burst size; defaults to 2*RPS.
	Burst int
	// Timeout bounds each operation's wait for intake; 0 means no deadline.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewService wraps an engine with intake control.
func NewService(eng *Engine, cfg ServiceConfig) *Service {
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst == 0 {
			burst = int(cfg.RPS * 2)
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	log := cfg.Logger
	if log.GetLevel() == zerolog.NoLevel {
		log = zerolog.Nop()
	}
	return &Service{
		eng:     eng,
		limiter: limiter,
		log:     log,
		timeout: cfg.Timeout,
	}
}

// Engine exposes the wrapped engine.
func (s *Service) Engine() *Engine {
	return s.eng
}

func (s *Service) admit(ctx context.Context, op string) (context.CancelFunc, error) {
	cancel := func() {}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			cancel()
			s.log.Warn().Str("op", op).Err(err).Msg("intake rejected")
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, err
	}
	s.log.Debug().Str("op", op).Msg("op admitted")
	return cancel, nil
}

// Initialize creates the global config.
func (s *Service) Initialize(ctx context.Context, authority, feeRecipient, withdrawAuthority solana.PublicKey) (*curve.Global, error) {
	cancel, err := s.admit(ctx, "initialize")
	if err != nil {
		return nil, err
	}
	defer cancel()
	return s.eng.Initialize(authority, feeRecipient, withdrawAuthority)
}

// SetParams replaces the launch parameter template.
func (s *Service) SetParams(ctx context.Context, caller solana.PublicKey, initialVirtualTokenReserves, initialVirtualSolReserves, initialRealTokenReserves, initialTokenSupply, feeBasisPoints uint64) (events.SetParamsEvent, error) {
	cancel, err := s.admit(ctx, "set_params")
	if err != nil {
		return events.SetParamsEvent{}, err
	}
	defer cancel()
	return s.eng.SetParams(caller, initialVirtualTokenReserves, initialVirtualSolReserves, initialRealTokenReserves, initialTokenSupply, feeBasisPoints)
}

// Create launches a new token.
func (s *Service) Create(ctx context.Context, creator, mint solana.PublicKey, name, symbol, uri string) (*curve.BondingCurve, events.CreateEvent, error) {
	cancel, err := s.admit(ctx, "create")
	if err != nil {
		return nil, events.CreateEvent{}, err
	}
	defer cancel()
	return s.eng.Create(creator, mint, name, symbol, uri)
}

// Buy purchases tokens from a curve.
func (s *Service) Buy(ctx context.Context, user, mint solana.PublicKey, tokenAmount, maxSolCost uint64) (events.TradeEvent, *events.CompleteEvent, error) {
	cancel, err := s.admit(ctx, "buy")
	if err != nil {
		return events.TradeEvent{}, nil, err
	}
	defer cancel()
	return s.eng.Buy(user, mint, tokenAmount, maxSolCost)
}

// Sell sells tokens back to a curve.
func (s *Service) Sell(ctx context.Context, user, mint solana.PublicKey, tokenAmount, minSolOutput uint64) (events.TradeEvent, error) {
	cancel, err := s.admit(ctx, "sell")
	if err != nil {
		return events.TradeEvent{}, err
	}
	defer cancel()
	return s.eng.Sell(user, mint, tokenAmount, minSolOutput)
}

// Withdraw claims a completed curve's balances.
func (s *Service) Withdraw(ctx context.Context, caller, mint solana.PublicKey) (events.WithdrawEvent, error) {
	cancel, err := s.admit(ctx, "withdraw")
	if err != nil {
		return events.WithdrawEvent{}, err
	}
	defer cancel()
	return s.eng.Withdraw(caller, mint)
}
