package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/inventory/store"
)

func newStockQuery(m *store.Memory) *inventory.StockQuery {
	return &inventory.StockQuery{
		Ledger:    m,
		Catalog:   newFixtureCatalog(),
		Locations: newFixtureLocations(),
	}
}

func TestBySKU_Validation(t *testing.T) {
	q := newStockQuery(store.NewMemory())
	ctx := context.Background()

	_, err := q.BySKU(ctx, inventory.BySKUInput{Warehouse: whMain})
	assert.ErrorIs(t, err, inventory.ErrValidation, "sku is required")

	_, err = q.BySKU(ctx, inventory.BySKUInput{SKU: skuShirt})
	assert.ErrorIs(t, err, inventory.ErrValidation, "warehouse or store is required")
}

func TestBySKU_UnknownRefs(t *testing.T) {
	q := newStockQuery(store.NewMemory())
	ctx := context.Background()

	_, err := q.BySKU(ctx, inventory.BySKUInput{SKU: "NOPE", Warehouse: whMain})
	assert.True(t, inventory.IsNotFound(err))

	_, err = q.BySKU(ctx, inventory.BySKUInput{SKU: skuShirt, Warehouse: "wh-ghost"})
	assert.True(t, inventory.IsNotFound(err))

	_, err = q.BySKU(ctx, inventory.BySKUInput{SKU: skuShirt, Store: "loc-ghost"})
	assert.True(t, inventory.IsNotFound(err))
}

func TestBySKU_SumsSubtreePerVariant(t *testing.T) {
	// GIVEN: The small variant spread over two bins (3 + 4, 2 reserved),
	//        the large variant only in bin B
	// WHEN: Querying the SKU at the warehouse
	// THEN: Every variant is reported with subtree sums and its
	//       size/color attributes

	m := store.NewMemory()
	q := newStockQuery(m)
	ctx := context.Background()

	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinA, "3"))
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locBinB, "4"))
	require.NoError(t, seedReserved(ctx, m, variantSmall, locBinA, "2"))
	require.NoError(t, seedOnHand(ctx, m, variantLarge, locBinB, "10"))

	result, err := q.BySKU(ctx, inventory.BySKUInput{SKU: skuShirt, Warehouse: whMain})
	require.NoError(t, err)

	assert.Equal(t, skuShirt, result.SKU)
	assert.Equal(t, "Classic T-Shirt", result.ProductName)
	assert.Equal(t, locStock, result.LocationID)
	require.Len(t, result.Variants, 2)

	byID := map[inventory.ProductID]inventory.VariantStock{}
	for _, v := range result.Variants {
		byID[v.VariantID] = v
	}

	small := byID[variantSmall]
	assert.True(t, dec("7").Equal(small.Quantity))
	assert.True(t, dec("5").Equal(small.Available))
	assert.Equal(t, "S", small.Size)
	assert.Equal(t, "Black", small.Color)
	assert.Equal(t, barcodeSmall, small.Barcode)

	large := byID[variantLarge]
	assert.True(t, dec("10").Equal(large.Quantity))
	assert.True(t, dec("10").Equal(large.Available))
	assert.Equal(t, "L", large.Size)
}

func TestBySKU_StoreLocation_NoSubtreeFixture(t *testing.T) {
	// A plain store location with no children reports only its own row.
	m := store.NewMemory()
	q := newStockQuery(m)
	ctx := context.Background()
	require.NoError(t, seedOnHand(ctx, m, variantSmall, locShop, "6"))

	result, err := q.BySKU(ctx, inventory.BySKUInput{SKU: skuShirt, Store: locShop})
	require.NoError(t, err)
	assert.Equal(t, locShop, result.LocationID)

	for _, v := range result.Variants {
		if v.VariantID == variantSmall {
			assert.True(t, dec("6").Equal(v.Quantity))
		} else {
			assert.True(t, v.Quantity.IsZero())
		}
	}
}
