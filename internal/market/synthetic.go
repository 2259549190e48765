package market

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
)

// Synthetic walk tuning. Drift per candle stays within ±maxDriftBps of the
// previous close, wicks within ±wickBps of the candle body.
const (
	maxDriftBps = 150
	wickBps     = 50
	priceScale  = 2
)

// intervalDurations maps chart intervals to candle widths. Unknown
// intervals fall back to one minute.
var intervalDurations = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// SyntheticCandles generates a deterministic OHLCV series: the same
// (symbol, interval, limit, anchor) always yields the same candles.
// The walk starts at the anchor price, the last known real price for the
// symbol when one exists.
func SyntheticCandles(symbol, interval string, limit int, anchor decimal.Decimal) []domain.Candle {
	if limit <= 0 {
		return nil
	}

	width, ok := intervalDurations[interval]
	if !ok {
		width = time.Minute
	}

	rng := rand.New(rand.NewSource(seedFor(symbol, interval, anchor)))

	// Candle times are aligned to the interval grid so repeated calls
	// within one interval produce identical series.
	end := time.Now().UTC().Truncate(width)
	start := end.Add(-time.Duration(limit) * width)

	candles := make([]domain.Candle, 0, limit)
	prevClose, _ := anchor.Float64()
	if prevClose <= 0 {
		prevClose, _ = DefaultAnchorPrice.Float64()
	}

	for i := 0; i < limit; i++ {
		open := prevClose
		drift := (rng.Float64()*2 - 1) * float64(maxDriftBps) / 10_000
		close := open * (1 + drift)

		high := max(open, close) * (1 + rng.Float64()*float64(wickBps)/10_000)
		low := min(open, close) * (1 - rng.Float64()*float64(wickBps)/10_000)
		volume := 100 + rng.Float64()*900

		candles = append(candles, domain.Candle{
			Time:   start.Add(time.Duration(i) * width),
			Open:   decimal.NewFromFloat(open).Round(priceScale),
			High:   decimal.NewFromFloat(high).Round(priceScale),
			Low:    decimal.NewFromFloat(low).Round(priceScale),
			Close:  decimal.NewFromFloat(close).Round(priceScale),
			Volume: decimal.NewFromFloat(volume).Round(0),
		})
		prevClose = close
	}

	return candles
}

// seedFor derives a stable seed from the symbol, interval and anchor so
// the fallback series does not jump while the outage lasts.
func seedFor(symbol, interval string, anchor decimal.Decimal) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	h.Write([]byte{'|'})
	h.Write([]byte(interval))
	h.Write([]byte{'|'})
	h.Write([]byte(anchor.String()))
	return int64(h.Sum64())
}
