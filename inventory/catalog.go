/*
catalog.go - Read-only collaborator boundaries

PURPOSE:
  The engines resolve products, locations, and the acting user through
  these interfaces. They are consumed boundaries: the engine never
  mutates catalog state and never inspects credentials.

COLLABORATORS:
  Catalog   - product/variant lookup by SKU or barcode, plus best-effort
              size/color attribute extraction
  Locations - warehouse root-location resolution and subtree expansion
  Actors    - identity of the acting user, attached to audit entries

ACTOR IDENTITY:
  Authentication happens outside this engine. ContextActors reads an
  actor previously attached to the request context (by HTTP middleware
  or a caller), falling back to "system".

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite-backed Catalog and Locations
  - query.go: The by-SKU stock query consuming all three
*/
package inventory

import "context"

// =============================================================================
// PRODUCT CATALOG
// =============================================================================

// Product is a catalog product: one SKU with one or more sellable
// variants. Stock is tracked per variant.
type Product struct {
	ID       ProductID
	SKU      string
	Name     string
	Variants []Variant
}

// Variant is a sellable unit of a product, addressed by barcode.
// Its ID is the ProductID stock quants are keyed by.
type Variant struct {
	ID      ProductID
	Barcode string
	Name    string
}

// VariantAttributes is the best-effort size/color extraction from a
// variant's attribute values. Absent attributes are empty strings.
type VariantAttributes struct {
	Size  string
	Color string
}

// Catalog resolves products and variants. Lookups return nil, not an
// error, when nothing matches.
type Catalog interface {
	FindProductBySKU(ctx context.Context, sku string) (*Product, error)
	FindProductByBarcode(ctx context.Context, barcode string) (*Variant, error)
	VariantAttributes(ctx context.Context, variant ProductID) (VariantAttributes, error)
}

// =============================================================================
// LOCATION TREE
// =============================================================================

// Location is a node in the stock location tree.
type Location struct {
	ID       LocationID
	Name     string
	ParentID LocationID
}

// Locations resolves warehouses and locations. A warehouse maps to a
// single root stock location; subtree expansion includes the root.
type Locations interface {
	ResolveWarehouseStockLocation(ctx context.Context, warehouse WarehouseID) (*Location, error)
	ResolveLocation(ctx context.Context, location LocationID) (*Location, error)
	LocationSubtree(ctx context.Context, root LocationID) ([]LocationID, error)
}

// =============================================================================
// ACTOR IDENTITY
// =============================================================================

// Actors supplies the acting user for audit entries.
type Actors interface {
	CurrentUser(ctx context.Context) UserID
}

type actorContextKey struct{}

// WithActor attaches an acting user to the context.
func WithActor(ctx context.Context, id UserID) context.Context {
	return context.WithValue(ctx, actorContextKey{}, id)
}

// ContextActors resolves the actor from the request context.
type ContextActors struct{}

func (ContextActors) CurrentUser(ctx context.Context) UserID {
	if id, ok := ctx.Value(actorContextKey{}).(UserID); ok && id != "" {
		return id
	}
	return "system"
}
