// Package engine owns the scheduled tasks that drive the market store,
// the strategy detectors, and autonomous execution against the ledger.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"quantdesk/internal/config"
	"quantdesk/internal/journal"
	"quantdesk/internal/market"
	"quantdesk/internal/metrics"
	"quantdesk/internal/portfolio"
	"quantdesk/internal/risk"
	"quantdesk/internal/signal"
	"quantdesk/internal/strategy"
)

// Engine is the single context object wiring every component together. It is
// constructed once and passed by handle; there are no package-level
// singletons.
type Engine struct {
	cfg       *config.Config
	log       zerolog.Logger
	store     *market.Store
	quoter    market.Quoter
	registry  *signal.Registry
	book      *strategy.Book
	detectors []strategy.Detector
	evaluator risk.Evaluator
	ledger    *portfolio.Ledger
	recorder  journal.Recorder
	pricer    RoutePricer

	autoTrading atomic.Bool
	execMu      sync.Mutex // serializes settlements against the ledger

	lifeMu sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures Engine construction.
type Option func(*Engine)

// WithQuoter substitutes the market feed, letting tests drive deterministic
// snapshots.
func WithQuoter(q market.Quoter) Option {
	return func(e *Engine) { e.quoter = q }
}

// WithDetectors replaces the default detector set.
func WithDetectors(book *strategy.Book, detectors []strategy.Detector) Option {
	return func(e *Engine) {
		e.book = book
		e.detectors = detectors
	}
}

// WithRecorder attaches an execution journal.
func WithRecorder(r journal.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithRoutePricer substitutes the settlement-boundary collaborator.
func WithRoutePricer(p RoutePricer) Option {
	return func(e *Engine) { e.pricer = p }
}

// New builds an engine from cfg, seeding the market store with the configured
// symbols.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Engine {
	book, detectors := strategy.Defaults(time.Now().UnixNano())
	e := &Engine{
		cfg:       cfg,
		log:       log,
		store:     market.NewStore(log),
		quoter:    market.NewRandomWalk(time.Now().UnixNano()),
		registry:  signal.NewRegistry(cfg.Engine.RegistryDepth, log),
		book:      book,
		detectors: detectors,
		evaluator: risk.Evaluator{
			MinConfidence:        cfg.Risk.MinConfidence,
			MaxPositionFraction:  cfg.Risk.MaxPositionFraction,
			MaxDailyLossFraction: cfg.Risk.MaxDailyLossFraction,
		},
		ledger: portfolio.NewLedger(cfg.Portfolio.StartingCash, cfg.Analytics.RiskFreeRate),
		pricer: NopRoutePricer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.autoTrading.Store(cfg.Engine.AutoTrading)

	now := time.Now()
	for _, sym := range cfg.Market.Symbols {
		price, ok := cfg.Market.SeedPrices[sym]
		if !ok || price <= 0 {
			price = 100
		}
		if err := e.store.Update(market.Seed(sym, price, now)); err != nil {
			log.Error().Err(err).Str("sym", sym).Msg("seed snapshot rejected")
		}
	}
	return e
}

// Start launches the market-update and detection loops. It returns
// immediately; call Stop to tear the loops down deterministically.
func (e *Engine) Start(ctx context.Context) {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	if e.cancel != nil {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.marketLoop(ctx)
	go e.detectLoop(ctx)
	e.log.Info().
		Dur("update", e.cfg.Market.UpdateInterval()).
		Dur("detect", e.cfg.Market.DetectInterval()).
		Msg("engine started")
}

// Stop cancels the scheduled loops and waits for them to exit. In-flight
// settlements are never rolled back.
func (e *Engine) Stop() {
	e.lifeMu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.lifeMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	e.wg.Wait()
	e.log.Info().Msg("engine stopped")
}

func (e *Engine) marketLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.Market.UpdateInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.updateMarket(now)
		}
	}
}

func (e *Engine) updateMarket(now time.Time) {
	// with a live stream provider the store is fed externally and the tick
	// only marks the ledger
	if e.cfg.Market.Provider != "stream" {
		for _, snap := range e.store.All() {
			// one symbol's bad data must not stop the rest of the tick
			next := e.quoter.Quote(snap, now)
			if err := e.store.Update(next); err != nil {
				e.log.Warn().Err(err).Str("sym", snap.Symbol).Msg("market update skipped")
			}
		}
	}
	e.ledger.Mark(e.store.Prices(), now)
}

func (e *Engine) detectLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.Market.DetectInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runDetectors()
		}
	}
}

func (e *Engine) runDetectors() {
	snaps := e.store.All()
	for _, snap := range snaps {
		for _, det := range e.detectors {
			if !e.book.IsActive(det.Name()) {
				continue
			}
			sig := det.Detect(snap)
			if sig == nil {
				continue
			}
			e.registry.Append(*sig)
			metrics.SignalsTotal.WithLabelValues(sig.Strategy, sig.Symbol).Inc()
			res := e.ExecuteSignal(*sig)
			e.log.Debug().
				Str("id", sig.ID).
				Bool("executed", res.Executed).
				Str("reason", res.Reason).
				Msg("signal processed")
		}
	}
}

// Signals exposes the registry for external consumers.
func (e *Engine) Signals() *signal.Registry { return e.registry }

// Market exposes the snapshot store.
func (e *Engine) Market() *market.Store { return e.store }

// Portfolio returns the current ledger snapshot.
func (e *Engine) Portfolio() portfolio.Snapshot { return e.ledger.Snapshot() }

// SetStrategyActive toggles a detector; false means the name is unknown.
func (e *Engine) SetStrategyActive(name string, active bool) bool {
	ok := e.book.SetActive(name, active)
	if !ok {
		e.log.Warn().Str("strategy", name).Msg("unknown strategy")
	}
	return ok
}

// SetAutoTrading gates future signal executions. Toggling is idempotent and
// never rolls back in-flight settlements.
func (e *Engine) SetAutoTrading(enabled bool) bool {
	e.autoTrading.Store(enabled)
	e.log.Info().Bool("enabled", enabled).Msg("auto-trading toggled")
	return enabled
}

// AutoTrading reports whether autonomous execution is enabled.
func (e *Engine) AutoTrading() bool { return e.autoTrading.Load() }
