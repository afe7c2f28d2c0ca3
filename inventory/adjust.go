/*
adjust.go - Counted-quantity corrections

PURPOSE:
  Applies set/add/subtract corrections to the counted quantity at one
  location. Counted quantity is staged: it does not change on-hand or
  available until a separate apply-inventory step outside this engine,
  which is why the audit entry's before/after snapshots are identical.

CURRENT-COUNTED RESOLUTION:
  1. Exact row exists with a counted value set -> that value
  2. Exact row exists without one            -> its on-hand
  3. No row                                  -> on-hand summed across
                                                the location subtree

TARGETS:
  set      -> quantity
  add      -> current + quantity
  subtract -> current - quantity, rejected when the result would be
              negative (InsufficientStock, no mutation)

SEE ALSO:
  - transfer.go: The on-hand mutating counterpart
  - changelog.go: adjust_set / adjust_add / adjust_subtract entries
*/
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdjustInput is a counted-quantity correction request.
type AdjustInput struct {
	Barcode   string
	Warehouse WarehouseID
	Operation AdjustOperation
	Quantity  decimal.Decimal
}

// AdjustmentEngine stages counted-quantity corrections.
type AdjustmentEngine struct {
	Store     TxLedgerStore
	Catalog   Catalog
	Locations Locations
	Actors    Actors
	Log       *zap.Logger
}

func (e *AdjustmentEngine) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Adjust stages one counted-quantity correction and records a single
// audit entry. On-hand and available are never touched.
func (e *AdjustmentEngine) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if err := validateAdjustInput(in); err != nil {
		return nil, err
	}

	variant, err := e.Catalog.FindProductByBarcode(ctx, in.Barcode)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, &NotFoundError{Kind: "product", Ref: in.Barcode}
	}

	location, err := e.Locations.ResolveWarehouseStockLocation(ctx, in.Warehouse)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, &NotFoundError{Kind: "warehouse", Ref: string(in.Warehouse)}
	}

	subtree, err := e.Locations.LocationSubtree(ctx, location.ID)
	if err != nil {
		return nil, err
	}

	actor := e.Actors.CurrentUser(ctx)

	result := &AdjustResult{
		Product:      ProductInfo{ID: variant.ID, Name: variant.Name, Barcode: variant.Barcode},
		LocationID:   location.ID,
		LocationName: location.Name,
		Operation:    in.Operation,
	}

	err = e.Store.WithTx(ctx, func(s LedgerStore) error {
		current, quantID, err := currentCounted(ctx, s, variant.ID, location.ID, subtree)
		if err != nil {
			return err
		}

		var target decimal.Decimal
		switch in.Operation {
		case OpSet:
			target = in.Quantity
		case OpAdd:
			target = current.Add(in.Quantity)
		case OpSubtract:
			target = current.Sub(in.Quantity)
			if target.IsNegative() {
				return &InsufficientStockError{
					ProductID:  variant.ID,
					LocationID: location.ID,
					Requested:  in.Quantity,
					Current:    current,
				}
			}
		}

		if err := s.SetCounted(ctx, variant.ID, location.ID, target); err != nil {
			return err
		}
		result.PreviousCounted = current
		result.NewCounted = target

		// Counted is staged, not applied: the stock snapshot is the same
		// before and after by construction.
		snap, snapQuantID, err := exactSnapshot(ctx, s, variant.ID, location.ID)
		if err != nil {
			return err
		}
		if quantID == "" {
			quantID = snapQuantID
		}

		recordChange(ctx, s, e.logger(), ChangeLogEntry{
			QuantID:         quantID,
			ProductID:       variant.ID,
			LocationID:      location.ID,
			ChangeType:      changeTypeFor(in.Operation),
			OnHandBefore:    snap.OnHand,
			OnHandAfter:     snap.OnHand,
			AvailableBefore: snap.Available,
			AvailableAfter:  snap.Available,
			Ref:             in.Barcode,
			Note:            fmt.Sprintf("counted %s -> %s (%s %s)", current, target, in.Operation, in.Quantity),
			ActorID:         actor,
			CreatedAt:       time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger().Info("counted quantity staged",
		zap.String("product_id", string(variant.ID)),
		zap.String("location_id", string(location.ID)),
		zap.String("operation", string(in.Operation)),
		zap.String("previous", result.PreviousCounted.String()),
		zap.String("new", result.NewCounted.String()),
	)
	return result, nil
}

// currentCounted resolves the baseline the operation applies to.
func currentCounted(ctx context.Context, s Ledger, product ProductID, location LocationID, subtree []LocationID) (decimal.Decimal, QuantID, error) {
	q, err := s.GetExact(ctx, product, location)
	if err != nil {
		return decimal.Zero, "", err
	}
	if q != nil {
		if q.CountedSet {
			return q.Counted, q.ID, nil
		}
		return q.OnHand, q.ID, nil
	}
	// Legacy/no-row case: fall back to the subtree on-hand sum.
	onHand, _, err := s.Get(ctx, product, subtree)
	if err != nil {
		return decimal.Zero, "", err
	}
	return onHand, "", nil
}

func validateAdjustInput(in AdjustInput) error {
	if in.Barcode == "" {
		return &ValidationError{Field: "barcode", Message: "barcode is required"}
	}
	if in.Warehouse == "" {
		return &ValidationError{Field: "warehouse_id", Message: "warehouse_id is required"}
	}
	if !ValidOperation(in.Operation) {
		return &ValidationError{Field: "operation", Message: `operation must be "set", "add", or "subtract"`}
	}
	if in.Quantity.IsNegative() {
		return &ValidationError{Field: "quantity", Message: "quantity must not be negative"}
	}
	return nil
}

func changeTypeFor(op AdjustOperation) ChangeType {
	switch op {
	case OpSet:
		return ChangeAdjustSet
	case OpAdd:
		return ChangeAdjustAdd
	case OpSubtract:
		return ChangeAdjustSubtract
	}
	return ChangeOther
}
