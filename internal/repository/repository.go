package repository

import (
	"context"
	"time"

	"despensa/internal/models"
)

// Repository is the store boundary consumed by the price sync pipeline and
// the read-only catalog handlers.
type Repository interface {
	// Sync eligibility loads. Both filter out entities the pipeline can
	// never use: markets without a registered legal name and products
	// without a barcode.
	ListMatchableMarkets(ctx context.Context) ([]models.Market, error)
	ListSyncableProducts(ctx context.Context) ([]models.Product, error)

	// Price observations. LatestPriceSince returns the most recent record
	// for the pair dated at or after since, or nil when none exists.
	LatestPriceSince(ctx context.Context, productID, marketID uint64, since time.Time) (*models.PriceRecord, error)
	InsertPriceRecord(ctx context.Context, item *models.PriceRecord) error

	// Run lock. AcquireSyncLock reports whether the caller now holds the
	// named lock; a held lock older than ttl is taken over.
	AcquireSyncLock(ctx context.Context, name string, now time.Time, ttl time.Duration) (bool, error)
	ReleaseSyncLock(ctx context.Context, name string) error

	// Catalog reads for the HTTP surface.
	ListMarkets(ctx context.Context, params ListParams) ([]models.Market, error)
	ListProducts(ctx context.Context, params ListParams) ([]models.Product, error)
	ListPriceRecords(ctx context.Context, params ListPricesParams) ([]models.PriceRecord, error)
}

type ListParams struct {
	Limit  int
	Offset int
}

type ListPricesParams struct {
	ProductID *uint64
	MarketID  *uint64
	Since     *time.Time
	Limit     int
	Offset    int
}
