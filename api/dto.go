/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Stock query:
    StockBySKUDTO, VariantStockDTO

  Transfer:
    TransferRequest, TransferResponseDTO, LocationStateDTO, SnapshotDTO

  Adjustment:
    AdjustRequest, AdjustResponseDTO

  Change log:
    ChangeEntryDTO

QUANTITIES:
  Request quantities arrive as JSON numbers and are converted to
  decimals before touching domain logic. Response quantities go out as
  strings to keep exact decimal values on the wire.

SEE ALSO:
  - handlers.go: Uses these types
  - inventory/types.go: Domain counterparts
*/
package api

import (
	"time"

	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// VariantStockDTO is one variant's stock in a by-SKU response.
type VariantStockDTO struct {
	VariantID   string `json:"variant_id"`
	VariantName string `json:"variant_name"`
	Barcode     string `json:"barcode,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Quantity    string `json:"quantity"`
	Available   string `json:"available"`
}

// StockBySKUDTO is the by-SKU query response.
type StockBySKUDTO struct {
	SKU          string            `json:"sku"`
	ProductName  string            `json:"product_name"`
	LocationID   string            `json:"location_id"`
	LocationName string            `json:"location_name"`
	Variants     []VariantStockDTO `json:"variants"`
}

// TransferRequest is the request to move stock between locations.
type TransferRequest struct {
	Barcode            string  `json:"barcode"`
	SourceWarehouseID  string  `json:"source_warehouse_id"`
	DestinationStoreID string  `json:"destination_store_id"`
	Quantity           float64 `json:"quantity"`
}

// SnapshotDTO is an (on-hand, available) pair at one point in time.
type SnapshotDTO struct {
	OnHand    string `json:"on_hand"`
	Available string `json:"available"`
}

// LocationStateDTO is one location's before/after state in a transfer.
type LocationStateDTO struct {
	LocationID   string      `json:"location_id"`
	LocationName string      `json:"location_name"`
	Before       SnapshotDTO `json:"before"`
	After        SnapshotDTO `json:"after"`
}

// TransferResponseDTO is the result of a successful transfer.
type TransferResponseDTO struct {
	Ref                  string           `json:"ref"`
	ProductID            string           `json:"product_id"`
	ProductName          string           `json:"product_name"`
	Barcode              string           `json:"barcode,omitempty"`
	Quantity             string           `json:"quantity"`
	AvailableToTransfer  string           `json:"available_to_transfer"`
	AdditionalOvercommit string           `json:"additional_overcommit"`
	Source               LocationStateDTO `json:"source"`
	Destination          LocationStateDTO `json:"destination"`
}

// AdjustRequest is the request to stage a counted-quantity correction.
type AdjustRequest struct {
	Barcode     string  `json:"barcode"`
	WarehouseID string  `json:"warehouse_id"`
	Operation   string  `json:"operation"`
	Quantity    float64 `json:"quantity"`
}

// AdjustResponseDTO is the result of a staged correction.
type AdjustResponseDTO struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Barcode         string `json:"barcode,omitempty"`
	LocationID      string `json:"location_id"`
	LocationName    string `json:"location_name"`
	Operation       string `json:"operation"`
	PreviousCounted string `json:"previous_counted"`
	NewCounted      string `json:"new_counted"`
}

// ChangeEntryDTO is one audit log entry.
type ChangeEntryDTO struct {
	ID              string `json:"id"`
	QuantID         string `json:"quant_id,omitempty"`
	ProductID       string `json:"product_id"`
	LocationID      string `json:"location_id"`
	FromLocationID  string `json:"from_location_id,omitempty"`
	ToLocationID    string `json:"to_location_id,omitempty"`
	ChangeType      string `json:"change_type"`
	Direction       string `json:"direction"`
	OnHandBefore    string `json:"on_hand_before"`
	OnHandAfter     string `json:"on_hand_after"`
	AvailableBefore string `json:"available_before"`
	AvailableAfter  string `json:"available_after"`
	DeltaOnHand     string `json:"delta_on_hand"`
	DeltaAvailable  string `json:"delta_available"`
	Ref             string `json:"ref,omitempty"`
	Note            string `json:"note,omitempty"`
	ActorID         string `json:"actor_id,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// SaveProductRequest seeds a product and its variants.
type SaveProductRequest struct {
	ID       string               `json:"id"`
	SKU      string               `json:"sku"`
	Name     string               `json:"name"`
	Variants []SaveVariantRequest `json:"variants"`
}

// SaveVariantRequest is one variant in a product seed request.
type SaveVariantRequest struct {
	ID         string            `json:"id"`
	Barcode    string            `json:"barcode,omitempty"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// SaveLocationRequest seeds a location node.
type SaveLocationRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// SaveWarehouseRequest seeds a warehouse record.
type SaveWarehouseRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StockLocationID string `json:"stock_location_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toStockBySKUDTO(s *inventory.StockBySKU) StockBySKUDTO {
	dto := StockBySKUDTO{
		SKU:          s.SKU,
		ProductName:  s.ProductName,
		LocationID:   string(s.LocationID),
		LocationName: s.LocationName,
		Variants:     make([]VariantStockDTO, len(s.Variants)),
	}
	for i, v := range s.Variants {
		dto.Variants[i] = VariantStockDTO{
			VariantID:   string(v.VariantID),
			VariantName: v.VariantName,
			Barcode:     v.Barcode,
			Size:        v.Size,
			Color:       v.Color,
			Quantity:    v.Quantity.String(),
			Available:   v.Available.String(),
		}
	}
	return dto
}

func toLocationStateDTO(s inventory.LocationState) LocationStateDTO {
	return LocationStateDTO{
		LocationID:   string(s.LocationID),
		LocationName: s.LocationName,
		Before:       SnapshotDTO{OnHand: s.Before.OnHand.String(), Available: s.Before.Available.String()},
		After:        SnapshotDTO{OnHand: s.After.OnHand.String(), Available: s.After.Available.String()},
	}
}

func toTransferResponseDTO(r *inventory.TransferResult) TransferResponseDTO {
	return TransferResponseDTO{
		Ref:                  r.Ref,
		ProductID:            string(r.Product.ID),
		ProductName:          r.Product.Name,
		Barcode:              r.Product.Barcode,
		Quantity:             r.Quantity.String(),
		AvailableToTransfer:  r.Split.AvailableToTransfer.String(),
		AdditionalOvercommit: r.Split.AdditionalOvercommit.String(),
		Source:               toLocationStateDTO(r.Source),
		Destination:          toLocationStateDTO(r.Destination),
	}
}

func toAdjustResponseDTO(r *inventory.AdjustResult) AdjustResponseDTO {
	return AdjustResponseDTO{
		ProductID:       string(r.Product.ID),
		ProductName:     r.Product.Name,
		Barcode:         r.Product.Barcode,
		LocationID:      string(r.LocationID),
		LocationName:    r.LocationName,
		Operation:       string(r.Operation),
		PreviousCounted: r.PreviousCounted.String(),
		NewCounted:      r.NewCounted.String(),
	}
}

func toChangeEntryDTO(e inventory.ChangeLogEntry) ChangeEntryDTO {
	return ChangeEntryDTO{
		ID:              string(e.ID),
		QuantID:         string(e.QuantID),
		ProductID:       string(e.ProductID),
		LocationID:      string(e.LocationID),
		FromLocationID:  string(e.FromLocation),
		ToLocationID:    string(e.ToLocation),
		ChangeType:      string(e.ChangeType),
		Direction:       string(e.Direction()),
		OnHandBefore:    e.OnHandBefore.String(),
		OnHandAfter:     e.OnHandAfter.String(),
		AvailableBefore: e.AvailableBefore.String(),
		AvailableAfter:  e.AvailableAfter.String(),
		DeltaOnHand:     e.DeltaOnHand().String(),
		DeltaAvailable:  e.DeltaAvailable().String(),
		Ref:             e.Ref,
		Note:            e.Note,
		ActorID:         string(e.ActorID),
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
}

func toChangeEntryDTOs(entries []inventory.ChangeLogEntry) []ChangeEntryDTO {
	dtos := make([]ChangeEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toChangeEntryDTO(e)
	}
	return dtos
}
