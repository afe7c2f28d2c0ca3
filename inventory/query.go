/*
query.go - By-SKU stock query

PURPOSE:
  Read-only view for callers: given a SKU and a warehouse (or store
  location), list every variant of the product with its barcode,
  best-effort size/color attributes, and the on-hand / available sums
  across the location subtree.

This path never mutates and needs no transaction: it reads committed
ledger state through the plain Ledger interface.
*/
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// VariantStock is one variant's stock at the queried location.
type VariantStock struct {
	VariantID   ProductID
	VariantName string
	Barcode     string
	Size        string
	Color       string
	Quantity    decimal.Decimal
	Available   decimal.Decimal
}

// StockBySKU is the result of a by-SKU query.
type StockBySKU struct {
	SKU          string
	ProductName  string
	LocationID   LocationID
	LocationName string
	Variants     []VariantStock
}

// StockQuery answers by-SKU stock questions.
type StockQuery struct {
	Ledger    Ledger
	Catalog   Catalog
	Locations Locations
}

// BySKUInput addresses the query: exactly one of Warehouse or Store
// must be set (a warehouse resolves to its root stock location).
type BySKUInput struct {
	SKU       string
	Warehouse WarehouseID
	Store     LocationID
}

// BySKU resolves the product and location, then reports per-variant
// stock summed over the location subtree.
func (q *StockQuery) BySKU(ctx context.Context, in BySKUInput) (*StockBySKU, error) {
	if in.SKU == "" {
		return nil, &ValidationError{Field: "sku", Message: "sku parameter is required"}
	}
	if in.Warehouse == "" && in.Store == "" {
		return nil, &ValidationError{Field: "warehouse_id", Message: "warehouse_id or store_id is required"}
	}

	product, err := q.Catalog.FindProductBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Kind: "product", Ref: in.SKU}
	}

	var location *Location
	if in.Warehouse != "" {
		location, err = q.Locations.ResolveWarehouseStockLocation(ctx, in.Warehouse)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, &NotFoundError{Kind: "warehouse", Ref: string(in.Warehouse)}
		}
	} else {
		location, err = q.Locations.ResolveLocation(ctx, in.Store)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, &NotFoundError{Kind: "location", Ref: string(in.Store)}
		}
	}

	subtree, err := q.Locations.LocationSubtree(ctx, location.ID)
	if err != nil {
		return nil, err
	}

	result := &StockBySKU{
		SKU:          product.SKU,
		ProductName:  product.Name,
		LocationID:   location.ID,
		LocationName: location.Name,
		Variants:     make([]VariantStock, 0, len(product.Variants)),
	}

	for _, v := range product.Variants {
		attrs, err := q.Catalog.VariantAttributes(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		onHand, available, err := q.Ledger.Get(ctx, v.ID, subtree)
		if err != nil {
			return nil, err
		}
		result.Variants = append(result.Variants, VariantStock{
			VariantID:   v.ID,
			VariantName: v.Name,
			Barcode:     v.Barcode,
			Size:        attrs.Size,
			Color:       attrs.Color,
			Quantity:    onHand,
			Available:   available,
		})
	}

	return result, nil
}
