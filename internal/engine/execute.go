package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"quantdesk/internal/journal"
	"quantdesk/internal/metrics"
	"quantdesk/internal/portfolio"
	"quantdesk/internal/risk"
	"quantdesk/internal/signal"
)

// ReasonDisabled is returned for every signal while auto-trading is off.
const ReasonDisabled = "Auto-trading disabled"

// ReasonInsufficientFunds is returned when free cash cannot cover the sized
// position.
const ReasonInsufficientFunds = "insufficient funds"

// ExecutionResult reports the outcome of one signal's trip through the
// controller.
type ExecutionResult struct {
	Executed   bool    `json:"executed"`
	OrderID    string  `json:"orderId,omitempty"`
	SignalID   string  `json:"signalId"`
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	TotalValue float64 `json:"totalValue"`
	Reason     string  `json:"reason,omitempty"`
}

// RoutePricer is the settlement-boundary collaborator consulted when capital
// actually moves. The in-process stub only mints an order confirmation; real
// payment rails live behind this interface elsewhere.
type RoutePricer interface {
	Confirm(symbol string, quantity, price float64) (string, error)
}

// NopRoutePricer confirms every settlement with a fresh order id.
type NopRoutePricer struct{}

// Confirm implements RoutePricer.
func (NopRoutePricer) Confirm(string, float64, float64) (string, error) {
	return uuid.NewString(), nil
}

// ExecuteSignal runs one signal through the controller: the auto-trading
// gate, the risk check, sizing, and finally settlement. Concurrent calls are
// serialized so no two trades interleave their debit of cash.
func (e *Engine) ExecuteSignal(sig signal.Signal) ExecutionResult {
	if !e.autoTrading.Load() {
		return e.reject(sig, 0, ReasonDisabled)
	}

	e.execMu.Lock()
	defer e.execMu.Unlock()

	view := risk.PortfolioView{
		TotalValue: e.ledger.Equity(),
		DailyPnL:   e.ledger.DailyPnL(time.Now()),
	}
	decision := e.evaluator.Evaluate(sig, view)
	if !decision.Approved {
		return e.reject(sig, 0, decision.Reason)
	}

	price := sig.EntryPrice
	if snap, ok := e.store.Get(sig.Symbol); ok {
		price = snap.Price
	}
	if price <= 0 {
		return e.reject(sig, decision.SizeQuote, risk.ReasonRiskLimits)
	}
	if decision.SizeQuote > e.ledger.Cash() {
		return e.reject(sig, decision.SizeQuote, ReasonInsufficientFunds)
	}
	qty := decision.SizeQuote / price

	orderID, err := e.pricer.Confirm(sig.Symbol, qty, price)
	if err != nil {
		return e.reject(sig, decision.SizeQuote, err.Error())
	}
	if err := e.ledger.Settle(sig.Symbol, qty, price); err != nil {
		reason := err.Error()
		if errors.Is(err, portfolio.ErrInsufficientCash) {
			reason = ReasonInsufficientFunds
		}
		return e.reject(sig, decision.SizeQuote, reason)
	}

	e.book.RecordTrade(sig.Strategy, 0)
	metrics.TradesTotal.WithLabelValues(sig.Symbol).Inc()

	result := ExecutionResult{
		Executed:   true,
		OrderID:    orderID,
		SignalID:   sig.ID,
		Symbol:     sig.Symbol,
		Quantity:   qty,
		Price:      price,
		TotalValue: qty * price,
	}
	e.record(result, decision.SizeQuote)
	e.log.Info().
		Str("order", orderID).
		Str("sym", sig.Symbol).
		Float64("qty", qty).
		Float64("px", price).
		Msg("trade settled")
	return result
}

func (e *Engine) reject(sig signal.Signal, size float64, reason string) ExecutionResult {
	metrics.RejectionsTotal.WithLabelValues(reason).Inc()
	result := ExecutionResult{
		SignalID: sig.ID,
		Symbol:   sig.Symbol,
		Reason:   reason,
	}
	e.record(result, size)
	return result
}

func (e *Engine) record(res ExecutionResult, size float64) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(journal.Entry{
		OrderID:   res.OrderID,
		SignalID:  res.SignalID,
		Symbol:    res.Symbol,
		Quantity:  res.Quantity,
		Price:     res.Price,
		SizeQuote: size,
		Executed:  res.Executed,
		Reason:    res.Reason,
		Ts:        time.Now(),
	})
}
