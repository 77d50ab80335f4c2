package store

import (
	"sync"

	"github.com/tidwall/btree"

	"fenrir/internal/domain"
)

// BookIndex is an in-memory, per-ticker index of resting order ids by price
// level, adapted from the teacher's internal/engine/orderbook.go PriceLevels
// (tidwall/btree.BTreeG). It exists purely as a fast candidate-lookup
// accelerator for the matching engine: spec.md §4.5 forbids a separate
// cache for market-data projections, but says nothing about the matching
// engine's internal candidate search, which original_source's
// matching.py performs with a live SQL query every time. BookIndex mirrors
// that same ordering without re-querying and re-sorting the orders table on
// every step of a matching loop; the store transaction remains the
// authoritative source for every order's remaining/status, which is always
// re-read from SQL before a fill is applied.
type BookIndex struct {
	mu     sync.Mutex
	books  map[string]*tickerBook
}

type level struct {
	priceCents int64
	orderIDs   []string // FIFO within a price level
}

type tickerBook struct {
	bids *btree.BTreeG[*level] // descending price
	asks *btree.BTreeG[*level] // ascending price
}

func NewBookIndex() *BookIndex {
	return &BookIndex{books: make(map[string]*tickerBook)}
}

func (bi *BookIndex) bookFor(ticker string) *tickerBook {
	tb, ok := bi.books[ticker]
	if ok {
		return tb
	}
	tb = &tickerBook{
		bids: btree.NewBTreeG(func(a, b *level) bool { return a.priceCents > b.priceCents }),
		asks: btree.NewBTreeG(func(a, b *level) bool { return a.priceCents < b.priceCents }),
	}
	bi.books[ticker] = tb
	return tb
}

func sideLevels(tb *tickerBook, side domain.Side) *btree.BTreeG[*level] {
	if side == domain.Buy {
		return tb.bids
	}
	return tb.asks
}

// Add records a resting LIMIT order at priceCents on ticker/side. MARKET
// orders never rest (spec.md §4.3) and must never be added.
func (bi *BookIndex) Add(ticker string, side domain.Side, priceCents int64, orderID string) {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	levels := sideLevels(bi.bookFor(ticker), side)
	if lv, ok := levels.Get(&level{priceCents: priceCents}); ok {
		lv.orderIDs = append(lv.orderIDs, orderID)
		return
	}
	levels.Set(&level{priceCents: priceCents, orderIDs: []string{orderID}})
}

// Remove drops orderID from ticker/side/priceCents, e.g. on fill-to-zero or
// cancellation. Deletes the level entirely once it is empty.
func (bi *BookIndex) Remove(ticker string, side domain.Side, priceCents int64, orderID string) {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	tb, ok := bi.books[ticker]
	if !ok {
		return
	}
	levels := sideLevels(tb, side)
	lv, ok := levels.Get(&level{priceCents: priceCents})
	if !ok {
		return
	}
	for i, id := range lv.orderIDs {
		if id == orderID {
			lv.orderIDs = append(lv.orderIDs[:i], lv.orderIDs[i+1:]...)
			break
		}
	}
	if len(lv.orderIDs) == 0 {
		levels.Delete(lv)
	}
}

// Candidates returns resting order ids opposite takerSide on ticker, in
// price-time priority order, best price level first and FIFO within a
// level. The matching engine still re-fetches each order from the store
// before acting on it; this only decides the search order.
func (bi *BookIndex) Candidates(ticker string, takerSide domain.Side) []string {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	tb, ok := bi.books[ticker]
	if !ok {
		return nil
	}
	opposite := domain.Sell
	if takerSide == domain.Sell {
		opposite = domain.Buy
	}
	levels := sideLevels(tb, opposite)

	var out []string
	levels.Scan(func(lv *level) bool {
		out = append(out, lv.orderIDs...)
		return true
	})
	return out
}

// Rebuild clears and repopulates the index for ticker from the store's
// current OPEN/PARTIAL LIMIT orders, used on startup since the index does
// not survive a process restart.
func (bi *BookIndex) Rebuild(ticker string, bids, asks []domain.Order) {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	tb := &tickerBook{
		bids: btree.NewBTreeG(func(a, b *level) bool { return a.priceCents > b.priceCents }),
		asks: btree.NewBTreeG(func(a, b *level) bool { return a.priceCents < b.priceCents }),
	}
	bi.books[ticker] = tb
	load := func(levels *btree.BTreeG[*level], orders []domain.Order) {
		for _, o := range orders {
			if o.Type != domain.Limit || o.Price == nil {
				continue
			}
			cents := o.Price.Shift(2).Round(0).IntPart()
			if lv, ok := levels.Get(&level{priceCents: cents}); ok {
				lv.orderIDs = append(lv.orderIDs, o.ID)
			} else {
				levels.Set(&level{priceCents: cents, orderIDs: []string{o.ID}})
			}
		}
	}
	load(tb.bids, bids)
	load(tb.asks, asks)
}
