// Package market supplies OHLCV candle series. A remote HTTP source is
// the primary; when it is unavailable the composite source substitutes a
// deterministic synthetic series seeded from the last known price, so
// callers never observe the outage.
package market

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/metrics"
)

// DefaultAnchorPrice seeds the synthetic walk for symbols never fetched.
var DefaultAnchorPrice = decimal.NewFromInt(100)

const (
	cacheSize = 256
	cacheTTL  = 30 * time.Second
)

// Source supplies an ordered candle series for a symbol.
type Source interface {
	Candles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)
}

// CompositeSource fronts a primary source with an expirable cache and a
// synthetic fallback. It never returns domain.ErrExternalData.
type CompositeSource struct {
	primary Source

	cache *expirable.LRU[string, []domain.Candle]

	mu      sync.RWMutex
	anchors map[string]decimal.Decimal
}

// NewCompositeSource wires the fallback chain. primary may be nil, in
// which case every request is served synthetically.
func NewCompositeSource(primary Source) *CompositeSource {
	return &CompositeSource{
		primary: primary,
		cache:   expirable.NewLRU[string, []domain.Candle](cacheSize, nil, cacheTTL),
		anchors: make(map[string]decimal.Decimal),
	}
}

// Candles returns the series for (symbol, interval, limit), preferring
// cache, then the primary source, then the deterministic generator.
func (s *CompositeSource) Candles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	key := cacheKey(symbol, interval, limit)
	if candles, ok := s.cache.Get(key); ok {
		metrics.CandleFetches.WithLabelValues("cache").Inc()
		return candles, nil
	}

	if s.primary != nil {
		candles, err := s.primary.Candles(ctx, symbol, interval, limit)
		if err == nil && len(candles) > 0 {
			s.rememberAnchor(symbol, candles[len(candles)-1].Close)
			s.cache.Add(key, candles)
			metrics.CandleFetches.WithLabelValues("remote").Inc()
			return candles, nil
		}
		if err != nil {
			logger.FromContext(ctx).Warn("Price source unavailable, serving synthetic series",
				"symbol", symbol, "error", err)
		}
	}

	candles := SyntheticCandles(symbol, interval, limit, s.anchor(symbol))
	s.cache.Add(key, candles)
	metrics.CandleFetches.WithLabelValues("synthetic").Inc()
	return candles, nil
}

func (s *CompositeSource) anchor(symbol string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if anchor, ok := s.anchors[symbol]; ok {
		return anchor
	}
	return DefaultAnchorPrice
}

func (s *CompositeSource) rememberAnchor(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.anchors[symbol] = price
}

func cacheKey(symbol, interval string, limit int) string {
	return symbol + "|" + interval + "|" + strconv.Itoa(limit)
}
