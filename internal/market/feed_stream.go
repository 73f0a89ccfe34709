package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// TradeStream folds live exchange trades from a combined websocket stream into
// market snapshots. It is the alternative to the simulated RandomWalk quoter;
// the engine core does not depend on it.
type TradeStream struct {
	baseURL string
	symbols []string
	log     zerolog.Logger
	last    map[string]Snapshot
}

type streamEnvelope struct {
	Stream string      `json:"stream"`
	Data   streamTrade `json:"data"`
}

type streamTrade struct {
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

// NewTradeStream builds a stream feed against baseURL (e.g. wss://stream.binance.com:9443).
func NewTradeStream(baseURL string, symbols []string, log zerolog.Logger) *TradeStream {
	return &TradeStream{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		symbols: symbols,
		log:     log,
		last:    make(map[string]Snapshot),
	}
}

// Run pushes snapshots onto out until the context is canceled, reconnecting
// with capped exponential backoff.
func (ts *TradeStream) Run(ctx context.Context, out chan<- Snapshot) error {
	if len(ts.symbols) == 0 {
		return fmt.Errorf("trade stream requires at least one symbol")
	}

	streams := make([]string, len(ts.symbols))
	for i, sym := range ts.symbols {
		streams[i] = strings.ToLower(sym) + "@trade"
	}
	url := fmt.Sprintf("%s/stream?streams=%s", ts.baseURL, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := ts.consume(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ts.log.Warn().Err(err).Msg("trade stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (ts *TradeStream) consume(ctx context.Context, url string, out chan<- Snapshot) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ts.log.Info().Strs("symbols", ts.symbols).Msg("connected trade stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					ts.log.Warn().Err(err).Msg("trade stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env streamEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			ts.log.Warn().Err(err).Msg("failed to decode stream message")
			continue
		}
		symbol := parseStreamSymbol(env.Stream)
		px, err := strconv.ParseFloat(env.Data.Price, 64)
		if err != nil || px <= 0 {
			ts.log.Warn().Str("price", env.Data.Price).Msg("invalid price on stream")
			continue
		}
		qty, _ := strconv.ParseFloat(env.Data.Quantity, 64)

		snap := ts.fold(symbol, px, qty, time.UnixMilli(env.Data.TradeTime))
		select {
		case out <- snap:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// fold merges one trade into the running snapshot for symbol.
func (ts *TradeStream) fold(symbol string, price, qty float64, at time.Time) Snapshot {
	prev, ok := ts.last[symbol]
	if !ok {
		prev = Seed(symbol, price, at)
		prev.Volume24h = 0
	}
	next := prev
	next.Price = price
	next.Volume24h = prev.Volume24h + price*qty
	next.High24h = math.Max(prev.High24h, price)
	next.Low24h = math.Min(prev.Low24h, price)
	if mid := prev.Bollinger.Middle; mid > 0 {
		next.Change24h = (price - mid) / mid * 100
	}
	next.Bollinger = bandsAround(price)
	next.Ts = at
	ts.last[symbol] = next
	return next
}

func parseStreamSymbol(stream string) string {
	if idx := strings.Index(stream, "@"); idx > 0 {
		return strings.ToUpper(stream[:idx])
	}
	return strings.ToUpper(stream)
}
