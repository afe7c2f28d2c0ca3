/*
reconciler.go - Available-quantity protection during transfers

PURPOSE:
  A transfer may request more than the source currently has free
  (on-hand minus reserved). The reconciler decides the split between the
  immediately-available portion and the overcommitted portion, moves the
  full quantity anyway, and guarantees that no row's available quantity
  is ever persisted negative.

THE SPLIT:
  availableToTransfer  = min(available, requested)
  additionalOvercommit = max(0, requested - available)

  The overcommitted portion still leaves the source and arrives at the
  destination, but is represented as synthetic reservations on both
  sides so available only moves by availableToTransfer.

REPAIR TIERS (source side, per row whose available went negative):
  1. Reduce existing pending reservations, largest first, until
     available reaches zero or reservations are exhausted.
  2. If a reduce fails, escalate: release the reservation entirely.
  3. If reservations are exhausted and available is still negative,
     floor-fallback: raise on-hand by the residual so available is
     exactly zero. This is a correctness safety valve, not a business
     operation - it means the quant ledger disagreed with the
     reservation book, and it is logged distinctly so operators can
     investigate.

DETERMINISM:
  Rows are walked in location-ID order (QuantsIn guarantees it) and a
  row's on-hand is never driven below zero: subtraction stops when a
  row is exhausted and continues to the next.

SEE ALSO:
  - transfer.go: The only caller; validates sufficiency first
  - ledger.go:   QuantsIn ordering contract
*/
package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reconciler implements the source/destination quantity movement for
// the Transfer Engine.
type Reconciler struct {
	Log *zap.Logger
}

func (r *Reconciler) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// =============================================================================
// SOURCE SIDE
// =============================================================================

// WithdrawSource removes quantity from the source subtree and repairs
// every row whose available quantity would otherwise go negative.
// The caller has already verified that subtree on-hand >= quantity.
func (r *Reconciler) WithdrawSource(ctx context.Context, s LedgerStore, product ProductID, subtree []LocationID, quantity decimal.Decimal, ref string) (TransferSplit, error) {
	quants, err := s.QuantsIn(ctx, product, subtree)
	if err != nil {
		return TransferSplit{}, err
	}

	available := decimal.Zero
	for i := range quants {
		available = available.Add(quants[i].Available())
	}
	split := SplitFor(available, quantity)

	// Subtract across rows in stable location order. A row's on-hand
	// never goes below zero: exhaust it and continue to the next.
	remaining := quantity
	for i := range quants {
		if !remaining.IsPositive() {
			break
		}
		q := &quants[i]
		take := decimal.Min(q.OnHand, remaining)
		if !take.IsPositive() {
			continue
		}
		q.OnHand = q.OnHand.Sub(take)
		remaining = remaining.Sub(take)
		if err := s.SetOnHand(ctx, product, q.LocationID, q.OnHand); err != nil {
			return split, err
		}
	}
	if remaining.IsPositive() {
		// Sufficiency was validated before the withdrawal started.
		return split, fmt.Errorf("%w: source rows sum below requested quantity (short %s)", ErrInternal, remaining)
	}

	// Repair rows whose available went negative.
	for i := range quants {
		q := &quants[i]
		if q.Available().IsNegative() {
			if err := r.repairRow(ctx, s, q); err != nil {
				return split, err
			}
		}
	}

	// Over-committed transfer: whatever is still free at the source was
	// moved beyond it, so reserve the remainder down to exactly zero.
	if split.AdditionalOvercommit.IsPositive() {
		for i := range quants {
			q := &quants[i]
			free := q.Available()
			if !free.IsPositive() {
				continue
			}
			if err := r.reserve(ctx, s, q, free, ref); err != nil {
				return split, err
			}
		}
	}

	return split, nil
}

// repairRow brings one row's available quantity back to zero or above,
// walking the repair tiers in order.
func (r *Reconciler) repairRow(ctx context.Context, s LedgerStore, q *StockQuant) error {
	deficit := q.Reserved.Sub(q.OnHand)

	reservations, err := s.Reservations(ctx, q.ProductID, q.LocationID)
	if err != nil {
		return err
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].Quantity.GreaterThan(reservations[j].Quantity)
	})

	for _, res := range reservations {
		if !deficit.IsPositive() {
			break
		}
		cut := decimal.Min(res.Quantity, deficit)
		if reduceErr := s.ReduceReservation(ctx, res.ID, cut); reduceErr != nil {
			// Tier 2: the targeted reduce failed, cancel outright.
			if releaseErr := s.ReleaseReservation(ctx, res.ID); releaseErr != nil {
				r.logger().Warn("reservation repair skipped an unreleasable reservation",
					zap.Error(releaseErr),
					zap.String("reservation_id", string(res.ID)),
					zap.String("product_id", string(q.ProductID)),
					zap.String("location_id", string(q.LocationID)),
				)
				continue
			}
			cut = res.Quantity
		}
		q.Reserved = decimal.Max(decimal.Zero, q.Reserved.Sub(cut))
		deficit = q.Reserved.Sub(q.OnHand)
	}

	if deficit.IsPositive() {
		// Tier 3: the quant ledger claims more reserved than the
		// reservation book can account for. Floor available at zero by
		// raising on-hand; this is a data-consistency event.
		q.OnHand = q.OnHand.Add(deficit)
		r.logger().Warn("available-quantity repair fell back to on-hand floor",
			zap.String("product_id", string(q.ProductID)),
			zap.String("location_id", string(q.LocationID)),
			zap.String("residual", deficit.String()),
		)
		if err := s.SetOnHand(ctx, q.ProductID, q.LocationID, q.OnHand); err != nil {
			return err
		}
	}

	return s.SetReserved(ctx, q.ProductID, q.LocationID, q.Reserved)
}

// =============================================================================
// DESTINATION SIDE
// =============================================================================

// DepositDestination adds the full quantity to the destination row and,
// when the transfer was overcommitted, reserves the overcommitted
// portion so destination available only rises by what was free.
func (r *Reconciler) DepositDestination(ctx context.Context, s LedgerStore, product ProductID, dest LocationID, quantity, overcommit decimal.Decimal, ref string) error {
	q, err := s.GetExact(ctx, product, dest)
	if err != nil {
		return err
	}
	if q == nil {
		q = &StockQuant{ProductID: product, LocationID: dest}
	}

	q.OnHand = q.OnHand.Add(quantity)
	if err := s.SetOnHand(ctx, product, dest, q.OnHand); err != nil {
		return err
	}

	if overcommit.IsPositive() {
		if err := r.reserve(ctx, s, q, overcommit, ref); err != nil {
			return err
		}
	}
	return nil
}

// reserve creates a synthetic reservation and keeps the row's reserved
// quantity in step with the reservation book.
func (r *Reconciler) reserve(ctx context.Context, s LedgerStore, q *StockQuant, amount decimal.Decimal, ref string) error {
	res := PendingReservation{
		ID:         ReservationID(uuid.NewString()),
		ProductID:  q.ProductID,
		LocationID: q.LocationID,
		Quantity:   amount,
		Origin:     OriginOvercommit,
		Ref:        ref,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.CreateReservation(ctx, res); err != nil {
		return err
	}
	q.Reserved = q.Reserved.Add(amount)
	return s.SetReserved(ctx, q.ProductID, q.LocationID, q.Reserved)
}
