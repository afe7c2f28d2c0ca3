package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/inventory/store"
)

// =============================================================================
// PRECONDITION TESTS (fail fast, no mutation)
// =============================================================================

func TestTransfer_Validation(t *testing.T) {
	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()

	cases := []struct {
		name  string
		input inventory.TransferInput
		field string
	}{
		{"missing barcode", inventory.TransferInput{
			SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("1"),
		}, "barcode"},
		{"missing source", inventory.TransferInput{
			Barcode: barcodeSmall, DestinationLocation: locShop, Quantity: dec("1"),
		}, "source_warehouse_id"},
		{"missing destination", inventory.TransferInput{
			Barcode: barcodeSmall, SourceWarehouse: whMain, Quantity: dec("1"),
		}, "destination_store_id"},
		{"zero quantity", inventory.TransferInput{
			Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop,
		}, "quantity"},
		{"negative quantity", inventory.TransferInput{
			Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("-3"),
		}, "quantity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Transfer(ctx, tc.input)
			var ve *inventory.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.ErrorIs(t, err, inventory.ErrValidation)
		})
	}
}

func TestTransfer_UnknownRefs(t *testing.T) {
	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()

	_, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: "no-such-barcode", SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("1"),
	})
	assert.True(t, inventory.IsNotFound(err), "unknown barcode: %v", err)

	_, err = engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: "wh-ghost", DestinationLocation: locShop, Quantity: dec("1"),
	})
	assert.True(t, inventory.IsNotFound(err), "unknown warehouse: %v", err)

	_, err = engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: "loc-ghost", Quantity: dec("1"),
	})
	assert.True(t, inventory.IsNotFound(err), "unknown destination: %v", err)
}

func TestTransfer_SameLocation_Conflict(t *testing.T) {
	// GIVEN: The warehouse root location used as the destination
	// WHEN: Transferring
	// THEN: Conflict, nothing moves

	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()

	_, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locStock, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, inventory.ErrConflict)
}

func TestTransfer_NoStock(t *testing.T) {
	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()

	_, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, inventory.ErrNoStock)
}

func TestTransfer_InsufficientStock_NoMutation(t *testing.T) {
	// GIVEN: 3 on-hand
	// WHEN: Transferring 5
	// THEN: InsufficientStock with requested/current amounts, the ledger
	//       untouched, no audit entries written

	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "3"))

	_, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("5"),
	})

	var ise *inventory.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.True(t, dec("5").Equal(ise.Requested))
	assert.True(t, dec("3").Equal(ise.Current))

	q, err := m.GetExact(ctx, variantSmall, locBinA)
	require.NoError(t, err)
	assert.True(t, dec("3").Equal(q.OnHand), "source untouched after failed transfer")

	dest, err := m.GetExact(ctx, variantSmall, locShop)
	require.NoError(t, err)
	assert.Nil(t, dest, "destination untouched after failed transfer")

	changes, err := m.Changes(ctx, inventory.ChangeFilter{ProductID: variantSmall})
	require.NoError(t, err)
	assert.Empty(t, changes, "failed transfer must not be audited")
}

// =============================================================================
// HAPPY PATH TESTS
// =============================================================================

func TestTransfer_FullyAvailable(t *testing.T) {
	// GIVEN: 10 on-hand, nothing reserved
	// WHEN: Transferring 4 to the shop
	// THEN: Source 6/6, destination 4/4, no overcommit

	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "10"))

	result, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("4"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Ref)
	assert.True(t, dec("4").Equal(result.Split.AvailableToTransfer))
	assert.True(t, result.Split.AdditionalOvercommit.IsZero())

	assert.True(t, dec("10").Equal(result.Source.Before.OnHand))
	assert.True(t, dec("6").Equal(result.Source.After.OnHand))
	assert.True(t, dec("6").Equal(result.Source.After.Available))

	assert.True(t, result.Destination.Before.OnHand.IsZero())
	assert.True(t, dec("4").Equal(result.Destination.After.OnHand))
	assert.True(t, dec("4").Equal(result.Destination.After.Available))
}

func TestTransfer_Overcommitted(t *testing.T) {
	// GIVEN: 10 on-hand but 7 reserved (3 free)
	// WHEN: Transferring 5
	// THEN: The full 5 moves; 3 against free stock, 2 overcommitted.
	//       Source available lands on zero (reservation reduced), and
	//       destination available rises only by the free portion.

	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "10"))
	require.NoError(t, seedReserved(ctx, m, variantSmall, locBinA, "7"))

	result, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("5"),
	})
	require.NoError(t, err)

	assert.True(t, dec("3").Equal(result.Split.AvailableToTransfer))
	assert.True(t, dec("2").Equal(result.Split.AdditionalOvercommit))

	assert.True(t, dec("5").Equal(result.Source.After.OnHand))
	assert.True(t, result.Source.After.Available.IsZero(), "source available floors at zero")

	assert.True(t, dec("5").Equal(result.Destination.After.OnHand))
	assert.True(t, dec("3").Equal(result.Destination.After.Available),
		"destination available rises only by the free portion")

	// The overcommitted portion is held as a synthetic reservation at
	// the destination.
	reservations, err := m.Reservations(ctx, variantSmall, locShop)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, inventory.OriginOvercommit, reservations[0].Origin)
	assert.True(t, dec("2").Equal(reservations[0].Quantity))
	assert.Equal(t, result.Ref, reservations[0].Ref)
}

func TestTransfer_DrainsMultipleRows(t *testing.T) {
	// GIVEN: Stock spread over two bins under the warehouse root
	// WHEN: Transferring more than any single bin holds
	// THEN: Rows drain in location order, none below zero

	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "3"))
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinB, "4"))

	result, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("6"),
	})
	require.NoError(t, err)

	assert.True(t, dec("7").Equal(result.Source.Before.OnHand))
	assert.True(t, dec("1").Equal(result.Source.After.OnHand))

	a, err := m.GetExact(ctx, variantSmall, locBinA)
	require.NoError(t, err)
	assert.True(t, a.OnHand.IsZero())

	b, err := m.GetExact(ctx, variantSmall, locBinB)
	require.NoError(t, err)
	assert.True(t, dec("1").Equal(b.OnHand))
}

// =============================================================================
// AUDIT TESTS
// =============================================================================

func TestTransfer_WritesTwoAuditEntries(t *testing.T) {
	// GIVEN: A successful transfer
	// THEN: One entry per affected location, sharing the transfer ref,
	//       decrease at the source and increase at the destination

	m := store.NewMemory()
	engine := newTransferEngine(m)
	ctx := inventory.WithActor(context.Background(), "user-7")
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "10"))

	result, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("4"),
	})
	require.NoError(t, err)

	changes, err := m.Changes(ctx, inventory.ChangeFilter{ProductID: variantSmall})
	require.NoError(t, err)
	require.Len(t, changes, 2)

	byLocation := map[inventory.LocationID]inventory.ChangeLogEntry{}
	for _, e := range changes {
		byLocation[e.LocationID] = e
		assert.Equal(t, result.Ref, e.Ref)
		assert.Equal(t, inventory.ChangeTransfer, e.ChangeType)
		assert.Equal(t, inventory.UserID("user-7"), e.ActorID)
		assert.Equal(t, locStock, e.FromLocation)
		assert.Equal(t, locShop, e.ToLocation)
	}

	source := byLocation[locStock]
	assert.Equal(t, inventory.DirectionDecrease, source.Direction())
	assert.True(t, dec("-4").Equal(source.DeltaOnHand()))

	dest := byLocation[locShop]
	assert.Equal(t, inventory.DirectionIncrease, dest.Direction())
	assert.True(t, dec("4").Equal(dest.DeltaOnHand()))
}

func TestTransfer_AuditFailure_DoesNotFailTransfer(t *testing.T) {
	// GIVEN: The audit log rejects every append
	// WHEN: Transferring
	// THEN: The stock mutation still succeeds

	m := store.NewMemory()
	m.FailRecord = errors.New("audit log down")
	engine := newTransferEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "10"))

	result, err := engine.Transfer(ctx, inventory.TransferInput{
		Barcode: barcodeSmall, SourceWarehouse: whMain, DestinationLocation: locShop, Quantity: dec("4"),
	})
	require.NoError(t, err, "audit faults must not fail the operation")
	assert.True(t, dec("6").Equal(result.Source.After.OnHand))

	q, err := m.GetExact(ctx, variantSmall, locShop)
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(q.OnHand))
}
