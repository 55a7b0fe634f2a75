package services

import (
	"context"
	"strings"
	"sync"
	"time"
)

const forexCacheTTL = 5 * time.Minute

type rateEntry struct {
	rate      float64
	fetchedAt time.Time
}

// Converter normalizes values across currencies. Rates come from the quote
// collaborator through a TTL cache; a pair that cannot be quoted converts at
// a neutral rate of 1 so aggregate totals stay computable.
type Converter struct {
	quotes PriceFetcher

	mu    sync.Mutex
	cache map[string]rateEntry

	now func() time.Time
}

func NewConverter(quotes PriceFetcher) *Converter {
	return &Converter{
		quotes: quotes,
		cache:  make(map[string]rateEntry),
		now:    time.Now,
	}
}

// Lookup resolves the from/to rate, reporting whether it came from the
// cache. Stale cache entries count as absent. Errors surface to callers that
// need to distinguish "unquotable" from a real rate; most callers want Rate.
func (c *Converter) Lookup(ctx context.Context, from, to string) (rate float64, cached bool, err error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1, false, nil
	}

	key := from + "_" + to

	c.mu.Lock()
	entry, ok := c.cache[key]
	fresh := ok && c.now().Sub(entry.fetchedAt) < forexCacheTTL
	c.mu.Unlock()
	if fresh {
		return entry.rate, true, nil
	}

	rate, err = c.quotes.Price(ctx, from+to+"=X")
	if err != nil {
		return 0, false, err
	}

	c.mu.Lock()
	c.cache[key] = rateEntry{rate: rate, fetchedAt: c.now()}
	c.mu.Unlock()

	return rate, false, nil
}

// Rate never fails: an unquotable pair degrades to 1 instead of breaking the
// caller's aggregation.
func (c *Converter) Rate(ctx context.Context, from, to string) float64 {
	rate, _, err := c.Lookup(ctx, from, to)
	if err != nil {
		return 1
	}
	return rate
}

func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) float64 {
	return amount * c.Rate(ctx, from, to)
}
