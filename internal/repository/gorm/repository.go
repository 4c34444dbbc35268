package gormrepository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"despensa/internal/models"
	"despensa/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListMatchableMarkets(ctx context.Context) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Market
	err := s.db.WithContext(ctx).
		Where("legal_name IS NOT NULL").
		Where("legal_name <> ''").
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListSyncableProducts(ctx context.Context) ([]models.Product, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Product
	err := s.db.WithContext(ctx).
		Where("barcode IS NOT NULL").
		Where("barcode <> ''").
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestPriceSince(ctx context.Context, productID, marketID uint64, since time.Time) (*models.PriceRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PriceRecord
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("market_id = ?", marketID).
		Where("record_date >= ?", since).
		Order("record_date DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertPriceRecord(ctx context.Context, item *models.PriceRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) AcquireSyncLock(ctx context.Context, name string, now time.Time, ttl time.Duration) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SyncLock{Name: name, LockedAt: now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if ttl <= 0 {
		return false, nil
	}
	// Lock row exists: take it over only when the holder looks abandoned.
	res = s.db.WithContext(ctx).
		Model(&models.SyncLock{}).
		Where("name = ?", name).
		Where("locked_at < ?", now.Add(-ttl)).
		Update("locked_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ReleaseSyncLock(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("name = ?", name).
		Delete(&models.SyncLock{}).Error
}

func (s *Store) ListMarkets(ctx context.Context, params repository.ListParams) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Market
	err := s.db.WithContext(ctx).
		Order("id").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListProducts(ctx context.Context, params repository.ListParams) ([]models.Product, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Product
	err := s.db.WithContext(ctx).
		Order("id").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListPriceRecords(ctx context.Context, params repository.ListPricesParams) ([]models.PriceRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.PriceRecord{})
	if params.ProductID != nil {
		query = query.Where("product_id = ?", *params.ProductID)
	}
	if params.MarketID != nil {
		query = query.Where("market_id = ?", *params.MarketID)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("record_date >= ?", *params.Since)
	}
	var items []models.PriceRecord
	err := query.
		Order("record_date DESC").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
