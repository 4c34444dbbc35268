package service

import (
	"context"
	"errors"
	"time"

	"despensa/internal/client/menorpreco"
	"despensa/internal/models"
	"despensa/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	markets  []models.Market
	products []models.Product
	prices   []models.PriceRecord
	locks    map[string]time.Time

	marketsErr  error
	productsErr error
	latestErr   error
	insertErr   error

	nextID uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{locks: map[string]time.Time{}}
}

func (s *stubRepo) ListMatchableMarkets(ctx context.Context) ([]models.Market, error) {
	if s.marketsErr != nil {
		return nil, s.marketsErr
	}
	out := make([]models.Market, 0, len(s.markets))
	for _, m := range s.markets {
		if m.Matchable() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubRepo) ListSyncableProducts(ctx context.Context) ([]models.Product, error) {
	if s.productsErr != nil {
		return nil, s.productsErr
	}
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Syncable() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) LatestPriceSince(ctx context.Context, productID, marketID uint64, since time.Time) (*models.PriceRecord, error) {
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	var latest *models.PriceRecord
	for i := range s.prices {
		record := &s.prices[i]
		if record.ProductID != productID || record.MarketID != marketID {
			continue
		}
		if record.RecordDate.Before(since) {
			continue
		}
		if latest == nil || record.RecordDate.After(latest.RecordDate) {
			latest = record
		}
	}
	return latest, nil
}

func (s *stubRepo) InsertPriceRecord(ctx context.Context, item *models.PriceRecord) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	item.ID = s.nextID
	s.prices = append(s.prices, *item)
	return nil
}

func (s *stubRepo) AcquireSyncLock(ctx context.Context, name string, now time.Time, ttl time.Duration) (bool, error) {
	if lockedAt, held := s.locks[name]; held {
		if ttl <= 0 || now.Sub(lockedAt) < ttl {
			return false, nil
		}
	}
	s.locks[name] = now
	return true, nil
}

func (s *stubRepo) ReleaseSyncLock(ctx context.Context, name string) error {
	delete(s.locks, name)
	return nil
}

func (s *stubRepo) ListMarkets(ctx context.Context, params repository.ListParams) ([]models.Market, error) {
	return s.markets, nil
}

func (s *stubRepo) ListProducts(ctx context.Context, params repository.ListParams) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubRepo) ListPriceRecords(ctx context.Context, params repository.ListPricesParams) ([]models.PriceRecord, error) {
	return s.prices, nil
}

// stubSearcher serves canned offers per category and records the categories
// queried, in order.
type stubSearcher struct {
	offersByCategory map[int][]menorpreco.Offer
	errByCategory    map[int]error
	calls            []int
}

func (s *stubSearcher) Search(ctx context.Context, q menorpreco.Query) ([]menorpreco.Offer, error) {
	s.calls = append(s.calls, q.Category)
	if err, ok := s.errByCategory[q.Category]; ok {
		return nil, err
	}
	return s.offersByCategory[q.Category], nil
}

var errStoreDown = errors.New("store unavailable")
