// Package engine is the price-time priority matching engine (spec.md §4.3),
// replacing the teacher's float64-priced, in-memory-only OrderBook.Match
// (formerly here and in orderbook.go). The resting-book selection and
// matching loop keep the teacher's shape — sweep while a candidate crosses,
// remove consumed levels from the index — but mutations now go through the
// store so that a matching pass commits as one transaction with settlement
// (spec.md §5). Candidate search walks the teacher's btree-backed
// store.BookIndex in price-time order; every id it yields is re-fetched from
// the store before being acted on, since the index only decides search
// order and the store row remains the authority on remaining/status.
package engine

import (
	"sync"
	"time"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/settlement"
	"fenrir/internal/store"
)

// IDGen mints identifiers for new trades. Kept injectable so tests can
// supply deterministic ids, the way the teacher's internal/tests builds
// orders with explicit fields rather than relying on global state.
type IDGen func() string

// Clock returns the current time. Injectable for deterministic tests.
type Clock func() time.Time

// Engine runs matching passes against a store, serializing writes per
// ticker (spec.md §5: "serialize writes to the order book so that each
// submission observes a consistent snapshot... and applies its matches
// against that snapshot atomically").
type Engine struct {
	index *store.BookIndex
	idGen IDGen
	clock Clock

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(index *store.BookIndex, idGen IDGen, clock Clock) *Engine {
	return &Engine{
		index: index,
		idGen: idGen,
		clock: clock,
		locks: make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockFor(ticker string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	l, ok := e.locks[ticker]
	if !ok {
		l = &sync.Mutex{}
		e.locks[ticker] = l
	}
	return l
}

// Lock acquires the per-ticker write serialization lock. Callers must call
// the returned func once their transaction (insert + match + settle +
// commit) is done.
func (e *Engine) Lock(ticker string) func() {
	l := e.lockFor(ticker)
	l.Lock()
	return l.Unlock
}

// NowForSubmission mints the submission timestamp for a newly accepted
// order, the monotonic tie-breaker within a price level (spec.md §3).
func (e *Engine) NowForSubmission() time.Time {
	return e.clock()
}

// RemoveFromIndex drops a cancelled resting LIMIT order from the book
// index. No-op for MARKET orders, which never rest.
func (e *Engine) RemoveFromIndex(o domain.Order) {
	if o.Type != domain.Limit || o.Price == nil {
		return
	}
	e.index.Remove(o.Ticker, o.Side, money.ToCents(*o.Price), o.ID)
}

// Match runs the matching loop for taker (already inserted OPEN in tx) and
// applies every fill via the settlement ledger. taker is mutated in place to
// reflect its final remaining/status. Returns the trades produced, in
// execution order.
func (e *Engine) Match(tx *store.Tx, taker *domain.Order) ([]domain.Trade, error) {
	var trades []domain.Trade

	for taker.Remaining > 0 {
		resting, err := e.selectCandidate(tx, taker)
		if err != nil {
			return trades, err
		}
		if resting == nil {
			break
		}

		execPrice := *resting.Price // price improvement: resting order's price always wins
		execQty := min64(taker.Remaining, resting.Remaining)

		buyerID, sellerID := partiesFor(taker, resting)

		// Step 4 of §4.3: abort (do not match further) if the buyer cannot
		// afford this fill. Can only trigger for MARKET BUY, since BUY LIMIT
		// acceptance already reserved sufficient free cash (§4.2 check 5).
		buyer, err := tx.GetAccount(buyerID)
		if err != nil {
			return trades, err
		}
		cost := money.Mul(execPrice, execQty)
		if buyer.CashBalance.LessThan(cost) {
			break
		}

		buyOrder, sellOrder := orderedByRole(taker, resting)
		executedAt := e.clock()
		tradeID := e.idGen()
		if err := settlement.Apply(tx, settlement.Fill{
			Ticker:     taker.Ticker,
			Price:      execPrice,
			Quantity:   execQty,
			BuyOrder:   buyOrder,
			SellOrder:  sellOrder,
			BuyerID:    buyerID,
			SellerID:   sellerID,
			ExecutedAt: executedAt,
			NewTradeID: tradeID,
		}); err != nil {
			return trades, err
		}

		trades = append(trades, domain.Trade{
			ID: tradeID, Ticker: taker.Ticker, Price: execPrice, Quantity: execQty,
			BuyerID: buyerID, SellerID: sellerID,
			BuyOrderID: buyOrder.ID, SellOrderID: sellOrder.ID, ExecutedAt: executedAt,
		})

		if resting.Remaining == 0 {
			e.index.Remove(taker.Ticker, resting.Side, money.ToCents(*resting.Price), resting.ID)
		}
	}

	// Step 6: MARKET IOC — unfilled remainder is cancelled, never rests.
	if taker.Type == domain.Market && taker.Remaining > 0 {
		taker.Status = domain.Cancelled
		if err := tx.UpdateOrderFill(taker.ID, taker.Remaining, domain.Cancelled); err != nil {
			return trades, err
		}
		return trades, nil
	}

	// A LIMIT order with remaining > 0 rests in the book.
	if taker.Type == domain.Limit && taker.Remaining > 0 {
		e.index.Add(taker.Ticker, taker.Side, money.ToCents(*taker.Price), taker.ID)
	}

	return trades, nil
}

// selectCandidate walks store.BookIndex's id list for the opposite side of
// ticker, in price-time order, and returns the first one that is still
// resting, belongs to a different account (self-trade prevention, spec.md
// §4.3) and satisfies the taker's LIMIT price bound. Every id is re-fetched
// from tx before being considered: the index only orders the search, the
// store row decides whether the order still exists and what it contains.
// Stale ids (already filled or cancelled elsewhere) are evicted from the
// index as they're found.
func (e *Engine) selectCandidate(tx *store.Tx, taker *domain.Order) (*domain.Order, error) {
	ids := e.index.Candidates(taker.Ticker, taker.Side)
	for _, id := range ids {
		o, err := tx.GetOrder(id)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				continue
			}
			return nil, err
		}
		if !o.Resting() {
			if o.Price != nil {
				e.index.Remove(taker.Ticker, o.Side, money.ToCents(*o.Price), o.ID)
			}
			continue
		}
		if o.AccountID == taker.AccountID {
			continue
		}
		if taker.Type == domain.Limit {
			if taker.Side == domain.Buy && o.Price.GreaterThan(*taker.Price) {
				continue
			}
			if taker.Side == domain.Sell && o.Price.LessThan(*taker.Price) {
				continue
			}
		}
		return &o, nil
	}
	return nil, nil
}

func partiesFor(taker, resting *domain.Order) (buyerID, sellerID string) {
	if taker.Side == domain.Buy {
		return taker.AccountID, resting.AccountID
	}
	return resting.AccountID, taker.AccountID
}

func orderedByRole(taker, resting *domain.Order) (buyOrder, sellOrder *domain.Order) {
	if taker.Side == domain.Buy {
		return taker, resting
	}
	return resting, taker
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
