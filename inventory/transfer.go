/*
transfer.go - Two-location stock moves

PURPOSE:
  Orchestrates a transfer: validates the request, checks sufficiency at
  the source, delegates quantity movement to the reconciler, and records
  one audit entry per affected location with before/after snapshots.

PRECONDITIONS (fail fast, no mutation):
  - quantity > 0
  - source warehouse != destination location
  - product resolvable by barcode
  - both locations resolvable
  - source on-hand > 0        (NoStock)
  - source on-hand >= quantity (InsufficientStock)

ATOMICITY:
  The whole read-modify-write sequence runs inside one store
  transaction. The source side is always touched before the destination
  side, so concurrent opposite-direction transfers acquire row locks in
  a stable order.

SEE ALSO:
  - reconciler.go: Quantity movement and available protection
  - changelog.go:  Audit entries (best-effort inside the transaction)
*/
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferInput is a transfer request: move quantity of the product
// identified by barcode from a warehouse to a destination location.
type TransferInput struct {
	Barcode             string
	SourceWarehouse     WarehouseID
	DestinationLocation LocationID
	Quantity            decimal.Decimal
}

// TransferEngine moves stock between two locations.
type TransferEngine struct {
	Store      TxLedgerStore
	Catalog    Catalog
	Locations  Locations
	Actors     Actors
	Reconciler *Reconciler
	Log        *zap.Logger
}

func (e *TransferEngine) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Transfer executes one stock move. On any precondition failure nothing
// is mutated; on success both ledger rows are updated and two audit
// entries are written.
func (e *TransferEngine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if err := validateTransferInput(in); err != nil {
		return nil, err
	}

	variant, err := e.Catalog.FindProductByBarcode(ctx, in.Barcode)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, &NotFoundError{Kind: "product", Ref: in.Barcode}
	}

	source, err := e.Locations.ResolveWarehouseStockLocation(ctx, in.SourceWarehouse)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, &NotFoundError{Kind: "warehouse", Ref: string(in.SourceWarehouse)}
	}

	dest, err := e.Locations.ResolveLocation(ctx, in.DestinationLocation)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, &NotFoundError{Kind: "location", Ref: string(in.DestinationLocation)}
	}

	if source.ID == dest.ID {
		return nil, &ConflictError{Message: fmt.Sprintf("source and destination are the same location: %s", source.ID)}
	}

	subtree, err := e.Locations.LocationSubtree(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	ref := newTransferRef()
	actor := e.Actors.CurrentUser(ctx)

	result := &TransferResult{
		Ref:      ref,
		Product:  ProductInfo{ID: variant.ID, Name: variant.Name, Barcode: variant.Barcode},
		Quantity: in.Quantity,
		Source:   LocationState{LocationID: source.ID, LocationName: source.Name},
		Destination: LocationState{
			LocationID:   dest.ID,
			LocationName: dest.Name,
		},
	}

	err = e.Store.WithTx(ctx, func(s LedgerStore) error {
		onHand, available, err := s.Get(ctx, variant.ID, subtree)
		if err != nil {
			return err
		}
		if !onHand.IsPositive() {
			return fmt.Errorf("%w: product %s at %s", ErrNoStock, variant.ID, source.ID)
		}
		if onHand.LessThan(in.Quantity) {
			return &InsufficientStockError{
				ProductID:  variant.ID,
				LocationID: source.ID,
				Requested:  in.Quantity,
				Current:    onHand,
			}
		}

		result.Source.Before = Snapshot{OnHand: onHand, Available: available}

		destBefore, destQuantID, err := exactSnapshot(ctx, s, variant.ID, dest.ID)
		if err != nil {
			return err
		}
		result.Destination.Before = destBefore

		// Source before destination: stable lock order under concurrent
		// opposite-direction transfers.
		split, err := e.Reconciler.WithdrawSource(ctx, s, variant.ID, subtree, in.Quantity, ref)
		if err != nil {
			return err
		}
		result.Split = split

		if err := e.Reconciler.DepositDestination(ctx, s, variant.ID, dest.ID, in.Quantity, split.AdditionalOvercommit, ref); err != nil {
			return err
		}

		srcOnHand, srcAvailable, err := s.Get(ctx, variant.ID, subtree)
		if err != nil {
			return err
		}
		result.Source.After = Snapshot{OnHand: srcOnHand, Available: srcAvailable}

		destAfter, destQuantIDAfter, err := exactSnapshot(ctx, s, variant.ID, dest.ID)
		if err != nil {
			return err
		}
		result.Destination.After = destAfter
		if destQuantID == "" {
			destQuantID = destQuantIDAfter
		}

		srcQuantID := QuantID("")
		if srcQuant, err := s.GetExact(ctx, variant.ID, source.ID); err == nil && srcQuant != nil {
			srcQuantID = srcQuant.ID
		}

		note := fmt.Sprintf("moved %s from available, %s overcommitted",
			split.AvailableToTransfer, split.AdditionalOvercommit)
		now := time.Now().UTC()

		recordChange(ctx, s, e.logger(), ChangeLogEntry{
			QuantID:         srcQuantID,
			ProductID:       variant.ID,
			LocationID:      source.ID,
			FromLocation:    source.ID,
			ToLocation:      dest.ID,
			ChangeType:      ChangeTransfer,
			OnHandBefore:    result.Source.Before.OnHand,
			OnHandAfter:     result.Source.After.OnHand,
			AvailableBefore: result.Source.Before.Available,
			AvailableAfter:  result.Source.After.Available,
			Ref:             ref,
			Note:            note,
			ActorID:         actor,
			CreatedAt:       now,
		})
		recordChange(ctx, s, e.logger(), ChangeLogEntry{
			QuantID:         destQuantID,
			ProductID:       variant.ID,
			LocationID:      dest.ID,
			FromLocation:    source.ID,
			ToLocation:      dest.ID,
			ChangeType:      ChangeTransfer,
			OnHandBefore:    result.Destination.Before.OnHand,
			OnHandAfter:     result.Destination.After.OnHand,
			AvailableBefore: result.Destination.Before.Available,
			AvailableAfter:  result.Destination.After.Available,
			Ref:             ref,
			Note:            note,
			ActorID:         actor,
			CreatedAt:       now,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger().Info("stock transferred",
		zap.String("ref", ref),
		zap.String("product_id", string(variant.ID)),
		zap.String("source", string(source.ID)),
		zap.String("destination", string(dest.ID)),
		zap.String("quantity", in.Quantity.String()),
		zap.String("overcommit", result.Split.AdditionalOvercommit.String()),
	)
	return result, nil
}

func validateTransferInput(in TransferInput) error {
	if in.Barcode == "" {
		return &ValidationError{Field: "barcode", Message: "barcode is required"}
	}
	if in.SourceWarehouse == "" {
		return &ValidationError{Field: "source_warehouse_id", Message: "source_warehouse_id is required"}
	}
	if in.DestinationLocation == "" {
		return &ValidationError{Field: "destination_store_id", Message: "destination_store_id is required"}
	}
	if !in.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Message: "quantity must be greater than 0"}
	}
	return nil
}

// exactSnapshot captures the (on-hand, available) state of the single
// row at an exact location, zero when no row exists yet.
func exactSnapshot(ctx context.Context, s Ledger, product ProductID, location LocationID) (Snapshot, QuantID, error) {
	q, err := s.GetExact(ctx, product, location)
	if err != nil {
		return Snapshot{}, "", err
	}
	if q == nil {
		return Snapshot{OnHand: decimal.Zero, Available: decimal.Zero}, "", nil
	}
	return Snapshot{OnHand: q.OnHand, Available: q.Available()}, q.ID, nil
}

func newTransferRef() string {
	return "TR-" + strings.ToUpper(uuid.NewString()[:8])
}
