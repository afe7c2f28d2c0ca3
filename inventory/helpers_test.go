package inventory_test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/inventory/store"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// The standard fixture: one warehouse whose stock location has two
// child bins, plus a separate store location as transfer destination.
const (
	whMain   = inventory.WarehouseID("wh-main")
	locStock = inventory.LocationID("loc-stock")
	locBinA  = inventory.LocationID("loc-stock-a")
	locBinB  = inventory.LocationID("loc-stock-b")
	locShop  = inventory.LocationID("loc-shop")

	skuShirt     = "TSHIRT-CLASSIC"
	barcodeSmall = "1000000000017"
	barcodeLarge = "1000000000024"

	variantSmall = inventory.ProductID("var-shirt-s")
	variantLarge = inventory.ProductID("var-shirt-l")
)

type stubCatalog struct {
	products map[string]*inventory.Product
	variants map[string]inventory.Variant
	attrs    map[inventory.ProductID]inventory.VariantAttributes
}

func (c *stubCatalog) FindProductBySKU(_ context.Context, sku string) (*inventory.Product, error) {
	return c.products[sku], nil
}

func (c *stubCatalog) FindProductByBarcode(_ context.Context, barcode string) (*inventory.Variant, error) {
	if v, ok := c.variants[barcode]; ok {
		copied := v
		return &copied, nil
	}
	return nil, nil
}

func (c *stubCatalog) VariantAttributes(_ context.Context, variant inventory.ProductID) (inventory.VariantAttributes, error) {
	return c.attrs[variant], nil
}

type stubLocations struct {
	warehouses map[inventory.WarehouseID]inventory.LocationID
	locations  map[inventory.LocationID]inventory.Location
	subtrees   map[inventory.LocationID][]inventory.LocationID
}

func (l *stubLocations) ResolveWarehouseStockLocation(ctx context.Context, warehouse inventory.WarehouseID) (*inventory.Location, error) {
	root, ok := l.warehouses[warehouse]
	if !ok {
		return nil, nil
	}
	return l.ResolveLocation(ctx, root)
}

func (l *stubLocations) ResolveLocation(_ context.Context, location inventory.LocationID) (*inventory.Location, error) {
	if loc, ok := l.locations[location]; ok {
		copied := loc
		return &copied, nil
	}
	return nil, nil
}

func (l *stubLocations) LocationSubtree(_ context.Context, root inventory.LocationID) ([]inventory.LocationID, error) {
	if subtree, ok := l.subtrees[root]; ok {
		return subtree, nil
	}
	return []inventory.LocationID{root}, nil
}

func newFixtureCatalog() *stubCatalog {
	small := inventory.Variant{ID: variantSmall, Barcode: barcodeSmall, Name: "Classic T-Shirt (S)"}
	large := inventory.Variant{ID: variantLarge, Barcode: barcodeLarge, Name: "Classic T-Shirt (L)"}
	return &stubCatalog{
		products: map[string]*inventory.Product{
			skuShirt: {
				ID:       "prod-shirt",
				SKU:      skuShirt,
				Name:     "Classic T-Shirt",
				Variants: []inventory.Variant{small, large},
			},
		},
		variants: map[string]inventory.Variant{
			barcodeSmall: small,
			barcodeLarge: large,
		},
		attrs: map[inventory.ProductID]inventory.VariantAttributes{
			variantSmall: {Size: "S", Color: "Black"},
			variantLarge: {Size: "L", Color: "Black"},
		},
	}
}

func newFixtureLocations() *stubLocations {
	return &stubLocations{
		warehouses: map[inventory.WarehouseID]inventory.LocationID{
			whMain: locStock,
		},
		locations: map[inventory.LocationID]inventory.Location{
			locStock: {ID: locStock, Name: "Main Warehouse Stock"},
			locBinA:  {ID: locBinA, Name: "Bin A", ParentID: locStock},
			locBinB:  {ID: locBinB, Name: "Bin B", ParentID: locStock},
			locShop:  {ID: locShop, Name: "Downtown Shop"},
		},
		subtrees: map[inventory.LocationID][]inventory.LocationID{
			locStock: {locStock, locBinA, locBinB},
		},
	}
}

func newTransferEngine(m *store.Memory) *inventory.TransferEngine {
	return &inventory.TransferEngine{
		Store:      m,
		Catalog:    newFixtureCatalog(),
		Locations:  newFixtureLocations(),
		Actors:     inventory.ContextActors{},
		Reconciler: &inventory.Reconciler{},
	}
}

func newAdjustmentEngine(m *store.Memory) *inventory.AdjustmentEngine {
	return &inventory.AdjustmentEngine{
		Store:     m,
		Catalog:   newFixtureCatalog(),
		Locations: newFixtureLocations(),
		Actors:    inventory.ContextActors{},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedOnHand writes an on-hand quantity directly, outside any engine.
func seedOnHand(ctx context.Context, m *store.Memory, product inventory.ProductID, location inventory.LocationID, value string) error {
	return m.WithTx(ctx, func(s inventory.LedgerStore) error {
		return s.SetOnHand(ctx, product, location, dec(value))
	})
}

// seedReserved writes a reserved quantity plus a matching reservation.
func seedReserved(ctx context.Context, m *store.Memory, product inventory.ProductID, location inventory.LocationID, value string) error {
	return m.WithTx(ctx, func(s inventory.LedgerStore) error {
		if err := s.SetReserved(ctx, product, location, dec(value)); err != nil {
			return err
		}
		return s.CreateReservation(ctx, inventory.PendingReservation{
			ProductID:  product,
			LocationID: location,
			Quantity:   dec(value),
			Origin:     inventory.OriginMove,
		})
	})
}
