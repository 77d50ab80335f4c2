// Package market implements the market-data projections of spec.md §4.5:
// last price, order-book depth, spread, 24h high/low/volume/opening, 24h
// change, and market cap. Grounded on
// original_source/exchange/app/services/public.py (get_last_price,
// get_order_book, get_price_stats_24h, get_volume_24h). Every projection
// here reads live from the store; none maintains its own cache.
package market

import (
	"time"

	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/store"
)

type Depth struct {
	Bids []store.DepthLevel
	Asks []store.DepthLevel
}

// OrderBook returns the top `depth` price levels on each side for ticker.
func OrderBook(tx *store.Tx, ticker string, depth int) (Depth, error) {
	bids, err := tx.Depth(ticker, domain.Buy, depth)
	if err != nil {
		return Depth{}, err
	}
	asks, err := tx.Depth(ticker, domain.Sell, depth)
	if err != nil {
		return Depth{}, err
	}
	return Depth{Bids: bids, Asks: asks}, nil
}

// Spread returns best_ask - best_bid, or nil if either side is empty.
func Spread(d Depth) *money.Money {
	if len(d.Bids) == 0 || len(d.Asks) == 0 {
		return nil
	}
	s := d.Asks[0].Price.Sub(d.Bids[0].Price)
	return &s
}

// Snapshot is the complete market-data view for one ticker (spec.md §4.5).
type Snapshot struct {
	Ticker     string
	LastPrice  *money.Money
	High24h    *money.Money
	Low24h     *money.Money
	Volume24h  int64
	Opening24h *money.Money
	Change24h  *money.Money
	MarketCap  *money.Money
	Depth      Depth
	Spread     *money.Money
}

// Build assembles the full Snapshot for ticker as of now.
func Build(tx *store.Tx, ticker string, now time.Time, depthLevels int) (Snapshot, error) {
	company, err := tx.GetCompany(ticker)
	if err != nil {
		return Snapshot{}, err
	}

	last, err := tx.LastPrice(ticker)
	if err != nil {
		return Snapshot{}, err
	}

	stats, err := tx.Stats24h(ticker, now)
	if err != nil {
		return Snapshot{}, err
	}

	depth, err := OrderBook(tx, ticker, depthLevels)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Ticker:     ticker,
		LastPrice:  last,
		High24h:    stats.High,
		Low24h:     stats.Low,
		Volume24h:  stats.Volume,
		Opening24h: stats.Opening,
		Depth:      depth,
		Spread:     Spread(depth),
	}

	if last != nil && stats.Opening != nil {
		change := last.Sub(*stats.Opening)
		snap.Change24h = &change
	}
	if last != nil {
		marketCap := money.Mul(*last, company.FloatShares)
		snap.MarketCap = &marketCap
	}
	return snap, nil
}

// RecentTrades returns up to limit most recent trades for ticker.
func RecentTrades(tx *store.Tx, ticker string, limit int) ([]domain.Trade, error) {
	return tx.RecentTrades(ticker, limit)
}
