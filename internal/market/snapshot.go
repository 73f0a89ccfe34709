// Package market maintains the latest snapshot per tracked symbol and the
// feeds that produce them.
package market

import (
	"fmt"
	"math"
	"time"
)

// Bollinger is the volatility envelope carried on every snapshot.
type Bollinger struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Snapshot models the per-symbol market state consumed by detectors.
type Snapshot struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume24h float64   `json:"volume24h"`
	High24h   float64   `json:"high24h"`
	Low24h    float64   `json:"low24h"`
	Change24h float64   `json:"change24h"` // percent
	MarketCap float64   `json:"marketCap"`
	RSI       float64   `json:"rsi"`
	MACD      float64   `json:"macd"`
	Bollinger Bollinger `json:"bollinger"`
	Ts        time.Time `json:"ts"`
}

// Validate rejects snapshots that would corrupt the store.
func (s Snapshot) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price <= 0 {
		return fmt.Errorf("invalid price %v", s.Price)
	}
	if s.Volume24h < 0 {
		return fmt.Errorf("negative volume %v", s.Volume24h)
	}
	if s.RSI < 0 || s.RSI > 100 || math.IsNaN(s.RSI) {
		return fmt.Errorf("rsi out of range: %v", s.RSI)
	}
	b := s.Bollinger
	if math.IsNaN(b.Upper) || math.IsNaN(b.Middle) || math.IsNaN(b.Lower) {
		return fmt.Errorf("bollinger bands contain NaN")
	}
	if !(b.Lower <= b.Middle && b.Middle <= b.Upper) {
		return fmt.Errorf("degenerate bollinger bands %v/%v/%v", b.Lower, b.Middle, b.Upper)
	}
	return nil
}

// Seed constructs the initial snapshot for a symbol at engine start.
func Seed(symbol string, price float64, now time.Time) Snapshot {
	return Snapshot{
		Symbol:    symbol,
		Price:     price,
		Volume24h: 2_500_000,
		High24h:   price,
		Low24h:    price,
		Change24h: 0,
		MarketCap: price * 10_000_000,
		RSI:       50,
		MACD:      0,
		Bollinger: bandsAround(price),
		Ts:        now,
	}
}

func bandsAround(price float64) Bollinger {
	return Bollinger{Upper: price * 1.05, Middle: price, Lower: price * 0.95}
}
