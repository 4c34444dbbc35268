package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"despensa/internal/client/menorpreco"
	"despensa/internal/matcher"
	"despensa/internal/models"
	"despensa/internal/ratelimit"
	"despensa/internal/repository"
)

const syncLockName = "price_sync"

// priceEpsilon is the materiality threshold for intraday price changes: a
// new observation inside the dedup window is recorded only when it differs
// from the latest one by more than this.
var priceEpsilon = decimal.RequireFromString("0.01")

// Searcher is the slice of the external client the pipeline consumes.
type Searcher interface {
	Search(ctx context.Context, q menorpreco.Query) ([]menorpreco.Offer, error)
}

// Settings are the per-deployment knobs of one sync pass.
type Settings struct {
	Local       string
	Radius      int
	Period      int
	Order       string
	Categories  []int
	DedupWindow time.Duration
	LockTTL     time.Duration
	SourceNote  string
}

// PriceSyncService drives one full synchronization pass: load eligible
// markets and products, search the price-transparency API per product,
// resolve establishments to markets, dedup and persist observations.
type PriceSyncService struct {
	Store    repository.Repository
	Client   Searcher
	Matcher  matcher.Matcher
	Limiter  *ratelimit.Limiter
	Logger   *zap.Logger
	Settings Settings
}

// Report is the outcome of one run, serialized verbatim to the caller.
type Report struct {
	Success           bool           `json:"success"`
	MarketsProcessed  int            `json:"mercadosProcessados"`
	ProductsProcessed int            `json:"produtosProcessados"`
	PricesRecorded    int            `json:"precosRegistrados"`
	Errors            []string       `json:"erros"`
	Details           []MarketDetail `json:"detalhes"`

	// Debug counters: per-category and per-offer failures are isolated and
	// not part of the public error list, but they are worth logging.
	SearchFailures int `json:"-"`
	OfferFailures  int `json:"-"`
}

type MarketDetail struct {
	Market   string `json:"mercado"`
	Products int    `json:"produtos"`
	Prices   int    `json:"precos"`
}

// runState accumulates the per-market buckets during one pass.
type runState struct {
	report           Report
	detailIndex      map[uint64]int
	productsByMarket map[uint64]map[uint64]struct{}
}

func newRunState() *runState {
	return &runState{
		report: Report{
			Success: true,
			Errors:  []string{},
			Details: []MarketDetail{},
		},
		detailIndex:      map[uint64]int{},
		productsByMarket: map[uint64]map[uint64]struct{}{},
	}
}

func (st *runState) fail(msg string) Report {
	st.report.Success = false
	st.report.Errors = append(st.report.Errors, msg)
	return st.report
}

// recordWrite updates the aggregate counters and the per-market bucket,
// creating the bucket on the first write for that market.
func (st *runState) recordWrite(market *models.Market, productID uint64) {
	st.report.PricesRecorded++
	idx, ok := st.detailIndex[market.ID]
	if !ok {
		st.report.Details = append(st.report.Details, MarketDetail{Market: market.Name})
		idx = len(st.report.Details) - 1
		st.detailIndex[market.ID] = idx
		st.productsByMarket[market.ID] = map[uint64]struct{}{}
	}
	st.report.Details[idx].Prices++
	if _, seen := st.productsByMarket[market.ID][productID]; !seen {
		st.productsByMarket[market.ID][productID] = struct{}{}
		st.report.Details[idx].Products++
	}
}

// Run executes one synchronization pass. Partial failures (a category search
// that errors, a malformed offer) never abort the pass; only store-level
// failures while loading the work set do. Exactly one run may be active at a
// time, enforced by a lock row in the store.
func (s *PriceSyncService) Run(ctx context.Context) Report {
	st := newRunState()
	now := time.Now().UTC()

	acquired, err := s.Store.AcquireSyncLock(ctx, syncLockName, now, s.Settings.LockTTL)
	if err != nil {
		return st.fail(fmt.Sprintf("falha ao adquirir trava de sincronização: %v", err))
	}
	if !acquired {
		return st.fail("sincronização de preços já em execução")
	}
	defer func() {
		if err := s.Store.ReleaseSyncLock(context.WithoutCancel(ctx), syncLockName); err != nil && s.Logger != nil {
			s.Logger.Warn("sync lock release failed", zap.Error(err))
		}
	}()

	markets, err := s.Store.ListMatchableMarkets(ctx)
	if err != nil {
		return st.fail(fmt.Sprintf("falha ao carregar mercados: %v", err))
	}
	if len(markets) == 0 {
		st.report.Errors = append(st.report.Errors, "nenhum mercado com razão social cadastrada")
		return st.report
	}

	products, err := s.Store.ListSyncableProducts(ctx)
	if err != nil {
		return st.fail(fmt.Sprintf("falha ao carregar produtos: %v", err))
	}
	if len(products) == 0 {
		st.report.Errors = append(st.report.Errors, "nenhum produto com código de barras cadastrado")
		return st.report
	}

	st.report.MarketsProcessed = len(markets)
	st.report.ProductsProcessed = len(products)

	for i := range products {
		product := &products[i]
		offers := s.searchProduct(ctx, *product.Barcode, st)
		for _, offer := range offers {
			if err := s.processOffer(ctx, product, offer, markets, st); err != nil {
				st.report.OfferFailures++
				if s.Logger != nil {
					s.Logger.Warn("offer processing failed",
						zap.Uint64("product_id", product.ID),
						zap.Error(err))
				}
			}
		}
		if i < len(products)-1 {
			if err := s.Limiter.Wait(ctx); err != nil {
				return st.fail(fmt.Sprintf("sincronização interrompida: %v", err))
			}
		}
	}

	if s.Logger != nil {
		s.Logger.Info("price sync finished",
			zap.Int("markets", st.report.MarketsProcessed),
			zap.Int("products", st.report.ProductsProcessed),
			zap.Int("prices_recorded", st.report.PricesRecorded),
			zap.Int("search_failures", st.report.SearchFailures),
			zap.Int("offer_failures", st.report.OfferFailures))
	}
	return st.report
}

// searchProduct walks the configured category list in order and stops at the
// first category returning any offers. This is deliberate first-match-wins:
// it bounds external calls per product, accepting that offers filed under a
// later category are missed.
func (s *PriceSyncService) searchProduct(ctx context.Context, barcode string, st *runState) []menorpreco.Offer {
	for _, category := range s.Settings.Categories {
		offers, err := s.Client.Search(ctx, menorpreco.Query{
			Local:    s.Settings.Local,
			Term:     barcode,
			GTIN:     barcode,
			Category: category,
			Radius:   s.Settings.Radius,
			Period:   s.Settings.Period,
			Order:    s.Settings.Order,
		})
		if err != nil {
			st.report.SearchFailures++
			if s.Logger != nil {
				s.Logger.Debug("category search failed",
					zap.String("barcode", barcode),
					zap.Int("category", category),
					zap.Error(err))
			}
			continue
		}
		if len(offers) > 0 {
			return offers
		}
	}
	return nil
}

func (s *PriceSyncService) processOffer(ctx context.Context, product *models.Product, offer menorpreco.Offer, markets []models.Market, st *runState) error {
	market := s.Matcher.Resolve(offer, markets)
	if market == nil {
		// No candidate passed both stages; not a failure.
		return nil
	}

	price := offer.ListPrice.Sub(offer.Discount)
	now := time.Now().UTC()
	ok, err := s.shouldRecord(ctx, product.ID, market.ID, price, now)
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}
	if !ok {
		return nil
	}

	observedAt := offer.ObservedAt.Time()
	if observedAt.IsZero() {
		observedAt = now
	}
	raw, _ := json.Marshal(offer)
	record := &models.PriceRecord{
		ProductID:  product.ID,
		MarketID:   market.ID,
		Price:      price.Round(2),
		RecordDate: observedAt,
		Notes:      s.sourceNote(offer),
		RawJSON:    datatypes.JSON(raw),
	}
	if err := s.Store.InsertPriceRecord(ctx, record); err != nil {
		return fmt.Errorf("insert price record: %w", err)
	}
	st.recordWrite(market, product.ID)
	return nil
}

// shouldRecord applies the dedup policy: non-positive computed prices are
// malformed data, and inside the trailing window a price is re-recorded only
// when it moved by more than priceEpsilon.
func (s *PriceSyncService) shouldRecord(ctx context.Context, productID, marketID uint64, price decimal.Decimal, now time.Time) (bool, error) {
	if !price.IsPositive() {
		return false, nil
	}
	window := s.Settings.DedupWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	latest, err := s.Store.LatestPriceSince(ctx, productID, marketID, now.Add(-window))
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return latest.Price.Sub(price).Abs().GreaterThan(priceEpsilon), nil
}

func (s *PriceSyncService) sourceNote(offer menorpreco.Offer) string {
	note := s.Settings.SourceNote
	if note == "" {
		note = "menor-preco"
	}
	if offer.Recency != "" {
		return note + " (" + offer.Recency + ")"
	}
	return note
}
