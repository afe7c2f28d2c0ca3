package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/inventory/store"
)

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestAdjust_Validation(t *testing.T) {
	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()

	cases := []struct {
		name  string
		input inventory.AdjustInput
		field string
	}{
		{"missing barcode", inventory.AdjustInput{
			Warehouse: whMain, Operation: inventory.OpSet, Quantity: dec("1"),
		}, "barcode"},
		{"missing warehouse", inventory.AdjustInput{
			Barcode: barcodeSmall, Operation: inventory.OpSet, Quantity: dec("1"),
		}, "warehouse_id"},
		{"unknown operation", inventory.AdjustInput{
			Barcode: barcodeSmall, Warehouse: whMain, Operation: "increment", Quantity: dec("1"),
		}, "operation"},
		{"negative quantity", inventory.AdjustInput{
			Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpAdd, Quantity: dec("-2"),
		}, "quantity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Adjust(ctx, tc.input)
			var ve *inventory.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestAdjust_UnknownRefs(t *testing.T) {
	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()

	_, err := engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: "no-such-barcode", Warehouse: whMain, Operation: inventory.OpSet, Quantity: dec("1"),
	})
	assert.True(t, inventory.IsNotFound(err))

	_, err = engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: "wh-ghost", Operation: inventory.OpSet, Quantity: dec("1"),
	})
	assert.True(t, inventory.IsNotFound(err))
}

// =============================================================================
// CURRENT-COUNTED RESOLUTION TESTS
// =============================================================================

func TestAdjust_Add_UsesStagedCountedWhenSet(t *testing.T) {
	// GIVEN: A row with counted already staged at 8 (on-hand is 20)
	// WHEN: Adding 2
	// THEN: The add applies to the staged 8, not the on-hand 20

	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locStock, "20"))
	require.NoError(t, m.WithTx(ctx, func(s inventory.LedgerStore) error {
		return s.SetCounted(ctx, variantSmall, locStock, dec("8"))
	}))

	result, err := engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpAdd, Quantity: dec("2"),
	})
	require.NoError(t, err)

	assert.True(t, dec("8").Equal(result.PreviousCounted))
	assert.True(t, dec("10").Equal(result.NewCounted))
}

func TestAdjust_Add_FallsBackToRowOnHand(t *testing.T) {
	// GIVEN: A row at the exact location with no counted value yet
	// WHEN: Adding 3
	// THEN: The row's on-hand is the baseline

	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locStock, "5"))

	result, err := engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpAdd, Quantity: dec("3"),
	})
	require.NoError(t, err)

	assert.True(t, dec("5").Equal(result.PreviousCounted))
	assert.True(t, dec("8").Equal(result.NewCounted))
}

func TestAdjust_Add_FallsBackToSubtreeSum(t *testing.T) {
	// GIVEN: No row at the warehouse root, stock only in child bins
	// WHEN: Adding 1
	// THEN: The subtree on-hand sum is the baseline

	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "3"))
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinB, "4"))

	result, err := engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpAdd, Quantity: dec("1"),
	})
	require.NoError(t, err)

	assert.True(t, dec("7").Equal(result.PreviousCounted))
	assert.True(t, dec("8").Equal(result.NewCounted))
}

// =============================================================================
// OPERATION TESTS
// =============================================================================

func TestAdjust_Set(t *testing.T) {
	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locStock, "20"))

	result, err := engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpSet, Quantity: dec("12"),
	})
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(result.NewCounted))

	// Setting counted to zero is a real count, distinct from "never
	// counted".
	result, err = engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpSet, Quantity: dec("0"),
	})
	require.NoError(t, err)
	assert.True(t, result.NewCounted.IsZero())
	assert.True(t, dec("12").Equal(result.PreviousCounted))
}

func TestAdjust_Subtract_BelowZero_Rejected(t *testing.T) {
	// GIVEN: Counted baseline of 5
	// WHEN: Subtracting 8
	// THEN: InsufficientStock, the staged value unchanged

	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locStock, "5"))

	_, err := engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpSubtract, Quantity: dec("8"),
	})

	var ise *inventory.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.True(t, dec("8").Equal(ise.Requested))
	assert.True(t, dec("5").Equal(ise.Current))

	q, err := m.GetExact(ctx, variantSmall, locStock)
	require.NoError(t, err)
	assert.False(t, q.CountedSet, "failed subtract must not stage anything")
}

func TestAdjust_DoesNotTouchOnHandOrAvailable(t *testing.T) {
	// GIVEN: 20 on-hand, 5 reserved
	// WHEN: Staging any correction
	// THEN: On-hand and available are untouched; the audit entry's
	//       before/after snapshots are identical (neutral direction)

	m := store.NewMemory()
	engine := newAdjustmentEngine(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locStock, "20"))
	require.NoError(t, seedReserved(ctx, m, variantSmall, locStock, "5"))

	_, err := engine.Adjust(ctx, inventory.AdjustInput{
		Barcode: barcodeSmall, Warehouse: whMain, Operation: inventory.OpSet, Quantity: dec("17"),
	})
	require.NoError(t, err)

	q, err := m.GetExact(ctx, variantSmall, locStock)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(q.OnHand))
	assert.True(t, dec("15").Equal(q.Available()))
	assert.True(t, dec("17").Equal(q.Counted))

	changes, err := m.Changes(ctx, inventory.ChangeFilter{ProductID: variantSmall})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	entry := changes[0]
	assert.Equal(t, inventory.ChangeAdjustSet, entry.ChangeType)
	assert.True(t, entry.OnHandBefore.Equal(entry.OnHandAfter))
	assert.True(t, entry.AvailableBefore.Equal(entry.AvailableAfter))
	assert.Equal(t, inventory.DirectionNeutral, entry.Direction())
}
