// Package bootstrap rebuilds the in-memory book index at startup, since
// store.BookIndex does not survive a process restart. Adapted from the
// teacher's internal/worker.go WorkerPool (a tomb-supervised fixed pool of
// goroutines draining a task channel); here the "tasks" are tickers to
// warm up, and the pool replaces what was a connection-handling pool with
// a one-shot concurrent rebuild across every listed company.
package bootstrap

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"fenrir/internal/domain"
	"fenrir/internal/store"
)

const defaultWorkers = 8

// WarmBookIndex rebuilds idx for every company in s, spreading the work
// across a small fixed pool of goroutines the way WorkerPool.Setup fanned
// connection handling out across workers.
func WarmBookIndex(ctx context.Context, s *store.Store, idx *store.BookIndex, log zerolog.Logger) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	companies, err := tx.ListCompanies()
	if err != nil {
		return err
	}

	tasks := make(chan string, len(companies))
	for _, c := range companies {
		tasks <- c.Ticker
	}
	close(tasks)

	workers := defaultWorkers
	if len(companies) < workers {
		workers = len(companies)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range tasks {
				if err := warmOne(tx, idx, ticker); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					log.Error().Err(err).Str("ticker", ticker).Msg("book index warmup failed")
				}
			}
		}()
	}
	wg.Wait()

	return firstErr
}

func warmOne(tx *store.Tx, idx *store.BookIndex, ticker string) error {
	all, err := tx.RestingOrders(ticker)
	if err != nil {
		return err
	}

	var buys, sells []domain.Order
	for _, o := range all {
		if o.Side == domain.Buy {
			buys = append(buys, o)
		} else {
			sells = append(sells, o)
		}
	}
	idx.Rebuild(ticker, buys, sells)
	return nil
}
