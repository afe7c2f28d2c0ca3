// Package store provides an in-memory LedgerStore implementation
// (for testing/dev).
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements inventory.TxLedgerStore. WithTx gives real rollback
// semantics by snapshotting state before the closure runs.
type Memory struct {
	mu sync.RWMutex
	memView

	// FailRecord, when set, makes every audit append fail with it.
	// Used to test that engines degrade audit faults to warnings.
	FailRecord error
}

type pairKey struct {
	Product  inventory.ProductID
	Location inventory.LocationID
}

type memView struct {
	quants       map[pairKey]inventory.StockQuant
	reservations map[inventory.ReservationID]inventory.PendingReservation
	changes      []inventory.ChangeLogEntry
	parent       *Memory
}

func NewMemory() *Memory {
	m := &Memory{}
	m.memView = memView{
		quants:       make(map[pairKey]inventory.StockQuant),
		reservations: make(map[inventory.ReservationID]inventory.PendingReservation),
		parent:       m,
	}
	return m
}

// WithTx snapshots state, runs fn against the live view, and restores
// the snapshot if fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(inventory.LedgerStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.memView.clone()
	if err := fn(&m.memView); err != nil {
		m.memView = saved
		m.memView.parent = m
		return err
	}
	return nil
}

func (v memView) clone() memView {
	c := memView{
		quants:       make(map[pairKey]inventory.StockQuant, len(v.quants)),
		reservations: make(map[inventory.ReservationID]inventory.PendingReservation, len(v.reservations)),
		changes:      make([]inventory.ChangeLogEntry, len(v.changes)),
		parent:       v.parent,
	}
	for k, q := range v.quants {
		c.quants[k] = q
	}
	for k, r := range v.reservations {
		c.reservations[k] = r
	}
	copy(c.changes, v.changes)
	return c
}

// =============================================================================
// LEDGER
// =============================================================================

func (v *memView) Get(_ context.Context, product inventory.ProductID, subtree []inventory.LocationID) (decimal.Decimal, decimal.Decimal, error) {
	onHand, available := decimal.Zero, decimal.Zero
	for _, loc := range subtree {
		if q, ok := v.quants[pairKey{product, loc}]; ok {
			onHand = onHand.Add(q.OnHand)
			available = available.Add(q.Available())
		}
	}
	return onHand, available, nil
}

func (v *memView) GetExact(_ context.Context, product inventory.ProductID, location inventory.LocationID) (*inventory.StockQuant, error) {
	if q, ok := v.quants[pairKey{product, location}]; ok {
		copied := q
		return &copied, nil
	}
	return nil, nil
}

func (v *memView) QuantsIn(_ context.Context, product inventory.ProductID, subtree []inventory.LocationID) ([]inventory.StockQuant, error) {
	var result []inventory.StockQuant
	for _, loc := range subtree {
		if q, ok := v.quants[pairKey{product, loc}]; ok {
			result = append(result, q)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LocationID < result[j].LocationID
	})
	return result, nil
}

func (v *memView) SetOnHand(ctx context.Context, product inventory.ProductID, location inventory.LocationID, value decimal.Decimal) error {
	q := v.upsert(product, location)
	q.OnHand = value
	q.UpdatedAt = time.Now().UTC()
	v.quants[pairKey{product, location}] = *q
	return nil
}

func (v *memView) SetReserved(ctx context.Context, product inventory.ProductID, location inventory.LocationID, value decimal.Decimal) error {
	q := v.upsert(product, location)
	q.Reserved = value
	q.UpdatedAt = time.Now().UTC()
	v.quants[pairKey{product, location}] = *q
	return nil
}

func (v *memView) SetCounted(ctx context.Context, product inventory.ProductID, location inventory.LocationID, value decimal.Decimal) error {
	q := v.upsert(product, location)
	q.Counted = value
	q.CountedSet = true
	q.UpdatedAt = time.Now().UTC()
	v.quants[pairKey{product, location}] = *q
	return nil
}

func (v *memView) upsert(product inventory.ProductID, location inventory.LocationID) *inventory.StockQuant {
	k := pairKey{product, location}
	if q, ok := v.quants[k]; ok {
		return &q
	}
	now := time.Now().UTC()
	return &inventory.StockQuant{
		ID:         inventory.QuantID(uuid.NewString()),
		ProductID:  product,
		LocationID: location,
		OnHand:     decimal.Zero,
		Reserved:   decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// =============================================================================
// RESERVATION BOOK
// =============================================================================

func (v *memView) Reservations(_ context.Context, product inventory.ProductID, location inventory.LocationID) ([]inventory.PendingReservation, error) {
	var result []inventory.PendingReservation
	for _, r := range v.reservations {
		if r.ProductID == product && r.LocationID == location {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (v *memView) CreateReservation(_ context.Context, r inventory.PendingReservation) error {
	if r.ID == "" {
		r.ID = inventory.ReservationID(uuid.NewString())
	}
	v.reservations[r.ID] = r
	return nil
}

func (v *memView) ReduceReservation(_ context.Context, id inventory.ReservationID, by decimal.Decimal) error {
	r, ok := v.reservations[id]
	if !ok {
		return errors.New("reservation not found")
	}
	r.Quantity = r.Quantity.Sub(by)
	if r.Quantity.IsPositive() {
		v.reservations[id] = r
	} else {
		delete(v.reservations, id)
	}
	return nil
}

func (v *memView) ReleaseReservation(_ context.Context, id inventory.ReservationID) error {
	if _, ok := v.reservations[id]; !ok {
		return errors.New("reservation not found")
	}
	delete(v.reservations, id)
	return nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (v *memView) Record(_ context.Context, entry inventory.ChangeLogEntry) (inventory.ChangeEntryID, error) {
	if v.parent != nil && v.parent.FailRecord != nil {
		return "", v.parent.FailRecord
	}
	if entry.ID == "" {
		entry.ID = inventory.ChangeEntryID(uuid.NewString())
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	v.changes = append(v.changes, entry)
	return entry.ID, nil
}

func (v *memView) Changes(_ context.Context, filter inventory.ChangeFilter) ([]inventory.ChangeLogEntry, error) {
	var result []inventory.ChangeLogEntry
	for i := len(v.changes) - 1; i >= 0; i-- { // newest first
		e := v.changes[i]
		if filter.QuantID != "" && e.QuantID != filter.QuantID {
			continue
		}
		if filter.ProductID != "" && e.ProductID != filter.ProductID {
			continue
		}
		if filter.LocationID != "" && e.LocationID != filter.LocationID {
			continue
		}
		result = append(result, e)
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}
