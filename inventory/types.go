/*
Package inventory is the core warehouse stock engine.

PURPOSE:
  This package contains the domain types and algorithms for multi-location
  stock management: the quantity ledger (on-hand / reserved / counted per
  product per location), the reservation reconciler that keeps available
  quantity consistent across transfers, the transfer and adjustment engines,
  and the append-only change audit log.

KEY CONCEPTS IN THIS FILE (types.go):
  - StockQuant: the ledger row for one (product, location) pair
  - PendingReservation: quantity earmarked by a pending move
  - Snapshot: an (on-hand, available) pair captured around a mutation
  - TransferResult / AdjustResult: outcomes returned to callers

DESIGN PRINCIPLES:
  1. Precision: quantities are decimal.Decimal, never float64
  2. Type safety: strong typing for product/location/actor identifiers
  3. Derived values stay derived: available = on-hand - reserved, always
     computed, never stored as free-standing truth
  4. Auditability: every mutation produces a ChangeLogEntry (changelog.go)

SEE ALSO:
  - ledger.go:     Persistence interfaces (Ledger, ReservationBook)
  - reconciler.go: Available-quantity protection during transfers
  - transfer.go:   Two-location stock moves
  - adjust.go:     Counted-quantity corrections
  - changelog.go:  Append-only audit log
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type LocationID string
type WarehouseID string
type QuantID string
type ReservationID string
type ChangeEntryID string
type UserID string

// =============================================================================
// STOCK QUANT - Ledger row for one (product, location) pair
// =============================================================================

// StockQuant is the authoritative record of stock at one location.
//
// INVARIANTS:
//   - OnHand is never persisted negative (the reconciler repairs rather
//     than allowing it).
//   - Available() = OnHand - Reserved may be observed negative mid-repair
//     but is never persisted negative.
//   - Counted is staged: it does not affect OnHand or Available until an
//     explicit apply step outside this engine.
type StockQuant struct {
	ID         QuantID
	ProductID  ProductID
	LocationID LocationID

	// OnHand is the physically present quantity.
	OnHand decimal.Decimal

	// Reserved is the quantity earmarked by pending reservations.
	Reserved decimal.Decimal

	// Counted is the staged physical-count value. CountedSet distinguishes
	// "counted as zero" from "never counted".
	Counted    decimal.Decimal
	CountedSet bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available returns on-hand minus reserved.
func (q *StockQuant) Available() decimal.Decimal {
	return q.OnHand.Sub(q.Reserved)
}

// =============================================================================
// PENDING RESERVATION - Quantity earmarked at a location
// =============================================================================

// ReservationOrigin records why a reservation exists.
type ReservationOrigin string

const (
	// OriginMove marks a reservation backing a pending stock move.
	OriginMove ReservationOrigin = "move"

	// OriginOvercommit marks a synthetic reservation created by the
	// reconciler to absorb transfer quantity beyond what was free.
	OriginOvercommit ReservationOrigin = "overcommit"
)

// PendingReservation earmarks an amount of a product at a location.
// The reconciler reduces or releases these to keep available quantity
// non-negative; it creates synthetic ones to represent overcommitment.
type PendingReservation struct {
	ID         ReservationID
	ProductID  ProductID
	LocationID LocationID
	Quantity   decimal.Decimal
	Origin     ReservationOrigin
	Ref        string
	CreatedAt  time.Time
}

// =============================================================================
// SNAPSHOTS - Captured state around a mutation
// =============================================================================

// Snapshot is the (on-hand, available) pair at one location at one moment.
type Snapshot struct {
	OnHand    decimal.Decimal
	Available decimal.Decimal
}

// LocationState pairs before/after snapshots for one location.
type LocationState struct {
	LocationID   LocationID
	LocationName string
	Before       Snapshot
	After        Snapshot
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// TransferSplit is the reconciler's decision for a transfer quantity:
// how much moved against free stock and how much was overcommitted.
type TransferSplit struct {
	Requested decimal.Decimal

	// AvailableToTransfer = min(available, requested): the portion moved
	// without creating an over-commitment.
	AvailableToTransfer decimal.Decimal

	// AdditionalOvercommit = max(0, requested - available): the portion
	// represented as synthetic reservations on both sides.
	AdditionalOvercommit decimal.Decimal
}

// SplitFor computes the transfer split from the source's available
// quantity before the move. Available below zero counts as zero.
func SplitFor(available, requested decimal.Decimal) TransferSplit {
	if available.IsNegative() {
		available = decimal.Zero
	}
	free := decimal.Min(available, requested)
	return TransferSplit{
		Requested:            requested,
		AvailableToTransfer:  free,
		AdditionalOvercommit: requested.Sub(free),
	}
}

// TransferResult is returned by the Transfer Engine on success.
type TransferResult struct {
	Ref         string
	Product     ProductInfo
	Quantity    decimal.Decimal
	Split       TransferSplit
	Source      LocationState
	Destination LocationState
}

// AdjustOperation selects how an adjustment computes its target.
type AdjustOperation string

const (
	OpSet      AdjustOperation = "set"
	OpAdd      AdjustOperation = "add"
	OpSubtract AdjustOperation = "subtract"
)

// ValidOperation reports whether op is a recognized adjustment operation.
func ValidOperation(op AdjustOperation) bool {
	switch op {
	case OpSet, OpAdd, OpSubtract:
		return true
	}
	return false
}

// AdjustResult is returned by the Adjustment Engine on success.
// Counted quantity is staged: on-hand and available are untouched.
type AdjustResult struct {
	Product         ProductInfo
	LocationID      LocationID
	LocationName    string
	Operation       AdjustOperation
	PreviousCounted decimal.Decimal
	NewCounted      decimal.Decimal
}

// ProductInfo identifies the product (variant) an operation acted on.
type ProductInfo struct {
	ID      ProductID
	Name    string
	Barcode string
}
