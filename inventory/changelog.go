/*
changelog.go - Append-only change audit log

PURPOSE:
  Every mutation (transfer or adjustment) records one ChangeLogEntry per
  affected location: before/after snapshots, a direction classification,
  free-text reference and note, and the acting user. Entries are written
  exactly once and never mutated.

DERIVED FIELDS:
  DeltaOnHand, DeltaAvailable, and Direction are pure functions of the
  stored before/after snapshots. Re-deriving them from a stored entry
  always reproduces the same values - they are computed, not persisted
  as free-standing truth.

FAILURE POLICY:
  An audit append must never fail the operation it describes. Engines
  record through recordChange(), which degrades an append failure to a
  warning: callers must not lose a completed stock mutation to an
  audit-log fault.

SEE ALSO:
  - transfer.go, adjust.go: The two writers
  - store/sqlite/sqlite.go: Persistence (ordered newest first)
*/
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// CHANGE LOG ENTRY - Immutable audit record
// =============================================================================

// ChangeType classifies the mutation that produced an entry.
type ChangeType string

const (
	ChangeTransfer       ChangeType = "transfer"
	ChangeAdjustSet      ChangeType = "adjust_set"
	ChangeAdjustAdd      ChangeType = "adjust_add"
	ChangeAdjustSubtract ChangeType = "adjust_subtract"
	ChangeOther          ChangeType = "other"
)

// Direction classifies an entry by the sign of its deltas.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionNeutral  Direction = "neutral"
)

// ChangeLogEntry is one immutable audit record for one location.
type ChangeLogEntry struct {
	ID ChangeEntryID

	// QuantID references the ledger row at time of writing. Optional:
	// entries survive even if the row is later superseded.
	QuantID QuantID

	ProductID  ProductID
	LocationID LocationID

	// FromLocation/ToLocation are set for transfers only.
	FromLocation LocationID
	ToLocation   LocationID

	ChangeType ChangeType

	OnHandBefore    decimal.Decimal
	OnHandAfter     decimal.Decimal
	AvailableBefore decimal.Decimal
	AvailableAfter  decimal.Decimal

	Ref  string
	Note string

	ActorID   UserID
	CreatedAt time.Time
}

// DeltaOnHand returns after minus before for on-hand.
func (e *ChangeLogEntry) DeltaOnHand() decimal.Decimal {
	return e.OnHandAfter.Sub(e.OnHandBefore)
}

// DeltaAvailable returns after minus before for available.
func (e *ChangeLogEntry) DeltaAvailable() decimal.Decimal {
	return e.AvailableAfter.Sub(e.AvailableBefore)
}

// Direction classifies the entry: increase if either delta is strictly
// positive (checked first), decrease if either is strictly negative,
// else neutral.
func (e *ChangeLogEntry) Direction() Direction {
	if e.DeltaOnHand().IsPositive() || e.DeltaAvailable().IsPositive() {
		return DirectionIncrease
	}
	if e.DeltaOnHand().IsNegative() || e.DeltaAvailable().IsNegative() {
		return DirectionDecrease
	}
	return DirectionNeutral
}

// =============================================================================
// AUDIT LOG - Append-only store
// =============================================================================

// ChangeFilter selects entries on the read path. Exactly one of QuantID
// or the ProductID+LocationID pair should be set.
type ChangeFilter struct {
	QuantID    QuantID
	ProductID  ProductID
	LocationID LocationID
	Limit      int
}

// AuditLog stores change entries. Append-only; results are ordered by
// creation time descending (most recent first).
type AuditLog interface {
	Record(ctx context.Context, entry ChangeLogEntry) (ChangeEntryID, error)
	Changes(ctx context.Context, filter ChangeFilter) ([]ChangeLogEntry, error)
}

// recordChange appends an entry and degrades failure to a warning. The
// stock mutation the entry describes has already been applied; losing
// the operation over an audit fault is worse than losing the entry.
func recordChange(ctx context.Context, log AuditLog, zlog *zap.Logger, entry ChangeLogEntry) {
	if _, err := log.Record(ctx, entry); err != nil {
		zlog.Warn("change audit append failed",
			zap.Error(err),
			zap.String("change_type", string(entry.ChangeType)),
			zap.String("product_id", string(entry.ProductID)),
			zap.String("location_id", string(entry.LocationID)),
			zap.String("ref", entry.Ref),
		)
	}
}
