package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/product"
	"kardex/pkg/logger"
)

// LotOrder selects the read path ordering for derived lots.
type LotOrder int

const (
	// OrderReceived sorts by received timestamp ascending (FIFO reads).
	OrderReceived LotOrder = iota
	// OrderExpiry sorts by expiry ascending, lots without expiry last (FEFO reads).
	OrderExpiry
)

// ProductCatalog is the read-only slice of the product catalog the ledger
// needs for tracking validation.
type ProductCatalog interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// AvailabilityInvalidator drops cached on-hand quantities after a commit.
// The cache is a read-path convenience; invariant checks never consult it.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, productID, warehouseID id.ID)
}

// Service is the stock ledger: it appends movements and derives balances.
type Service struct {
	repo        Repository
	products    ProductCatalog
	txManager   tx.Manager
	invalidator AvailabilityInvalidator
}

// NewService creates a stock ledger service. invalidator may be nil.
func NewService(repo Repository, products ProductCatalog, txManager tx.Manager, invalidator AvailabilityInvalidator) *Service {
	return &Service{
		repo:        repo,
		products:    products,
		txManager:   txManager,
		invalidator: invalidator,
	}
}

// RecordMovement appends a single movement. The negative-stock check folds
// all committed movements for the lot key under the per-key write lock, so
// two concurrent outbound writers cannot both pass on stale reads.
func (s *Service) RecordMovement(ctx context.Context, m Movement) (id.ID, error) {
	if id.IsNil(m.LineID) {
		m.LineID = id.New()
	}
	if err := s.RecordMovements(ctx, []Movement{m}); err != nil {
		return id.Nil(), err
	}
	return m.LineID, nil
}

// RecordMovements appends a batch atomically: either every movement commits
// or none does.
func (s *Service) RecordMovements(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}

	for i := range movements {
		if err := s.validateShape(ctx, &movements[i]); err != nil {
			return err
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.lockKeys(ctx, movements); err != nil {
			return err
		}

		for i := range movements {
			m := &movements[i]
			if err := s.checkBalance(ctx, m); err != nil {
				return err
			}
			if err := s.repo.Append(ctx, []Movement{*m}); err != nil {
				return fmt.Errorf("append movement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, movements)

	logger.Info(ctx, "recorded stock movements",
		"count", len(movements),
		"source_id", movements[0].Source.ID,
	)
	return nil
}

// validateShape checks movement invariants that need no ledger state.
func (s *Service) validateShape(ctx context.Context, m *Movement) error {
	if !m.Kind.Valid() {
		return apperror.NewValidation("unknown movement kind").
			WithDetail("kind", string(m.Kind))
	}
	if !m.Quantity.IsPositive() {
		return apperror.NewValidation("movement quantity must be positive")
	}
	if id.IsNil(m.ProductID) || id.IsNil(m.WarehouseID) {
		return apperror.NewValidation("product and warehouse are required")
	}
	if id.IsNil(m.LineID) {
		m.LineID = id.New()
	}
	if m.Period.IsZero() {
		m.Period = time.Now().UTC()
	}

	p, err := s.products.GetByID(ctx, m.ProductID)
	if err != nil {
		return err
	}

	if p.TracksLots() && m.LotCode == nil {
		return apperror.NewInvalidLotState("lot code is required for lot-tracked product").
			WithDetail("product_id", m.ProductID.String())
	}
	if p.RequiresExpiry && m.Kind.Inbound() && m.Expiry == nil {
		return apperror.NewInvalidLotState("expiry date is required for this product").
			WithDetail("product_id", m.ProductID.String()).
			WithDetail("lot_code", lotKeyOf(m.LotCode))
	}

	return nil
}

// checkBalance folds prior movements for the lot key and rejects outbound
// movements that would drive the remaining quantity negative. Runs inside
// the locked transaction, so the fold sees the latest committed state plus
// earlier appends of the same batch.
func (s *Service) checkBalance(ctx context.Context, m *Movement) error {
	if m.Kind.Inbound() {
		return nil
	}

	history, err := s.repo.MovementsForKey(ctx, m.ProductID, m.WarehouseID)
	if err != nil {
		return fmt.Errorf("fold key history: %w", err)
	}

	var available types.Quantity
	key := lotKeyOf(m.LotCode)
	for _, lot := range FoldLots(history) {
		if lotKeyOf(lot.LotCode) == key {
			available = lot.Remaining
			break
		}
	}

	if m.Quantity > available {
		shortfall := m.Quantity - available
		if m.Kind.Corrective() {
			return apperror.NewInvalidLotState("corrective movement would drive lot negative").
				WithDetail("lot_code", key).
				WithDetail("available", available.String()).
				WithDetail("requested", m.Quantity.String())
		}
		return apperror.NewInsufficientStock(
			m.ProductID.String(), m.WarehouseID.String(),
			m.Quantity, available, shortfall,
		)
	}

	return nil
}

// lockKeys locks every distinct (product, warehouse) key in sorted order to
// keep concurrent batches deadlock-free.
func (s *Service) lockKeys(ctx context.Context, movements []Movement) error {
	type key struct{ p, w id.ID }
	seen := make(map[key]struct{})
	keys := make([]key, 0, len(movements))
	for i := range movements {
		k := key{movements[i].ProductID, movements[i].WarehouseID}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a := keys[i].p.String() + keys[i].w.String()
		b := keys[j].p.String() + keys[j].w.String()
		return strings.Compare(a, b) < 0
	})

	for _, k := range keys {
		if err := s.repo.LockKey(ctx, k.p, k.w); err != nil {
			return fmt.Errorf("lock key: %w", err)
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, movements []Movement) {
	if s.invalidator == nil {
		return
	}
	type key struct{ p, w id.ID }
	seen := make(map[key]struct{})
	for i := range movements {
		k := key{movements[i].ProductID, movements[i].WarehouseID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		s.invalidator.Invalidate(ctx, k.p, k.w)
	}
}

// QuantityOnHand returns the signed sum of all movements for the key.
func (s *Service) QuantityOnHand(ctx context.Context, productID, warehouseID id.ID) (types.Quantity, error) {
	movements, err := s.repo.MovementsForKey(ctx, productID, warehouseID)
	if err != nil {
		return 0, fmt.Errorf("key history: %w", err)
	}
	return FoldQuantity(movements), nil
}

// Lots reconstructs remaining-quantity per lot, ordered for the given read
// path. Exhausted lots (remaining zero) are dropped. Ties keep insertion
// order; the sort is stable.
func (s *Service) Lots(ctx context.Context, productID, warehouseID id.ID, order LotOrder) ([]LotStock, error) {
	movements, err := s.repo.MovementsForKey(ctx, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("key history: %w", err)
	}

	all := FoldLots(movements)
	lots := all[:0]
	for _, lot := range all {
		if lot.Remaining.IsPositive() {
			lots = append(lots, lot)
		}
	}

	switch order {
	case OrderExpiry:
		sort.SliceStable(lots, func(i, j int) bool {
			li, lj := lots[i].Expiry, lots[j].Expiry
			if li == nil {
				return false
			}
			if lj == nil {
				return true
			}
			return li.Before(*lj)
		})
	default:
		sort.SliceStable(lots, func(i, j int) bool {
			return lots[i].ReceivedAt.Before(lots[j].ReceivedAt)
		})
	}

	return lots, nil
}

// ConsumedQuantity sums outbound-sale quantities for a product across the
// trailing window. Missing history is zero demand, not an error.
func (s *Service) ConsumedQuantity(ctx context.Context, productID id.ID, from, to time.Time) (types.Quantity, error) {
	kind := KindOutboundSale
	movements, err := s.repo.MovementsForProduct(ctx, productID, HistoryFilter{
		Kind:     &kind,
		FromDate: &from,
		ToDate:   &to,
	})
	if err != nil {
		return 0, fmt.Errorf("product history: %w", err)
	}

	var total types.Quantity
	for i := range movements {
		total += movements[i].Quantity
	}
	return total, nil
}

// TotalOnHand sums a product's stock across all warehouses.
func (s *Service) TotalOnHand(ctx context.Context, productID id.ID) (types.Quantity, error) {
	movements, err := s.repo.MovementsForProduct(ctx, productID, HistoryFilter{})
	if err != nil {
		return 0, fmt.Errorf("product history: %w", err)
	}
	return FoldQuantity(movements), nil
}

// Turnover computes opening balance, receipts, expenses and closing balance
// for a key over [from, to).
func (s *Service) Turnover(ctx context.Context, productID, warehouseID id.ID, from, to time.Time) (Turnover, error) {
	movements, err := s.repo.MovementsForKey(ctx, productID, warehouseID)
	if err != nil {
		return Turnover{}, fmt.Errorf("key history: %w", err)
	}

	var t Turnover
	for i := range movements {
		m := &movements[i]
		switch {
		case m.Period.Before(from):
			t.OpeningBalance += m.SignedQuantity()
		case m.Period.Before(to):
			if m.Kind.Inbound() {
				t.Receipts += m.Quantity
			} else {
				t.Expenses += m.Quantity
			}
		}
	}
	t.ClosingBalance = t.OpeningBalance + t.Receipts - t.Expenses
	return t, nil
}

// Reverse appends compensating movements for everything recorded under a
// source event. Committed movements are never deleted; cancellation after
// commit is a reversal.
func (s *Service) Reverse(ctx context.Context, sourceID id.ID, reversalSource SourceRef) ([]Movement, error) {
	originals, err := s.repo.MovementsBySource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("source movements: %w", err)
	}
	if len(originals) == 0 {
		return nil, apperror.NewNotFound("movements for source", sourceID)
	}

	reversals := make([]Movement, 0, len(originals))
	for i := range originals {
		o := &originals[i]
		kind := KindInboundAdjustment
		if o.Kind.Inbound() {
			kind = KindOutboundAdjustment
		}
		rev := NewMovement(o.ProductID, o.WarehouseID, o.LotCode, kind, o.Quantity, o.UnitCost, time.Now().UTC(), reversalSource)
		rev.Expiry = o.Expiry
		reversals = append(reversals, rev)
	}

	if err := s.RecordMovements(ctx, reversals); err != nil {
		return nil, err
	}
	return reversals, nil
}
