/*
handlers.go - HTTP API handlers for the inventory engine

PURPOSE:
  Exposes the inventory engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Inventory:
    GET    /api/inventory/by-sku    Per-variant stock for a SKU
    POST   /api/inventory/transfer  Move stock between locations
    POST   /api/inventory/adjust    Stage a counted-quantity correction
    GET    /api/inventory/changes   Audit log, newest first

  Admin (seeding, dev only):
    POST   /api/admin/products      Upsert a product with variants
    POST   /api/admin/locations     Upsert a location node
    POST   /api/admin/warehouses    Upsert a warehouse
    POST   /api/reset               Database reset

REQUEST FLOW:
  1. Parse HTTP request
  2. Convert to domain input (JSON numbers become decimals here)
  3. Call domain logic (engines, query, audit log)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Domain errors map to HTTP status by type:
  - 400: Validation errors, insufficient stock, no stock
  - 404: Product / warehouse / location not found
  - 409: Conflict (same source and destination)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. The actor recorded in
  audit entries comes from the X-User-ID header and defaults to
  "system". Front an auth proxy in production.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Transfers   *inventory.TransferEngine
	Adjustments *inventory.AdjustmentEngine
	Query       *inventory.StockQuery
	Changes     inventory.AuditLog

	// Admin enables the seeding and reset endpoints when set.
	Admin *sqlite.Store

	Log *zap.Logger
}

// NewHandler wires the engines on top of a SQLite store.
func NewHandler(store *sqlite.Store, log *zap.Logger) *Handler {
	actors := inventory.ContextActors{}
	return &Handler{
		Transfers: &inventory.TransferEngine{
			Store:      store,
			Catalog:    store,
			Locations:  store,
			Actors:     actors,
			Reconciler: &inventory.Reconciler{Log: log},
			Log:        log,
		},
		Adjustments: &inventory.AdjustmentEngine{
			Store:     store,
			Catalog:   store,
			Locations: store,
			Actors:    actors,
			Log:       log,
		},
		Query: &inventory.StockQuery{
			Ledger:    store,
			Catalog:   store,
			Locations: store,
		},
		Changes: store,
		Admin:   store,
		Log:     log,
	}
}

// =============================================================================
// INVENTORY HANDLERS
// =============================================================================

// GetStockBySKU returns per-variant stock for a SKU at a warehouse or
// store location.
func (h *Handler) GetStockBySKU(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.Query.BySKU(r.Context(), inventory.BySKUInput{
		SKU:       q.Get("sku"),
		Warehouse: inventory.WarehouseID(q.Get("warehouse_id")),
		Store:     inventory.LocationID(q.Get("store_id")),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockBySKUDTO(result))
}

// Transfer moves stock from a warehouse to a destination location.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Transfers.Transfer(r.Context(), inventory.TransferInput{
		Barcode:             req.Barcode,
		SourceWarehouse:     inventory.WarehouseID(req.SourceWarehouseID),
		DestinationLocation: inventory.LocationID(req.DestinationStoreID),
		Quantity:            decimal.NewFromFloat(req.Quantity),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransferResponseDTO(result))
}

// Adjust stages a counted-quantity correction.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Adjustments.Adjust(r.Context(), inventory.AdjustInput{
		Barcode:   req.Barcode,
		Warehouse: inventory.WarehouseID(req.WarehouseID),
		Operation: inventory.AdjustOperation(req.Operation),
		Quantity:  decimal.NewFromFloat(req.Quantity),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdjustResponseDTO(result))
}

// ListChanges returns audit log entries, newest first.
func (h *Handler) ListChanges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	entries, err := h.Changes.Changes(r.Context(), inventory.ChangeFilter{
		QuantID:    inventory.QuantID(q.Get("quant_id")),
		ProductID:  inventory.ProductID(q.Get("product_id")),
		LocationID: inventory.LocationID(q.Get("location_id")),
		Limit:      limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list changes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": toChangeEntryDTOs(entries)})
}

// =============================================================================
// ADMIN HANDLERS (seeding, dev only)
// =============================================================================

// SaveProduct upserts a product with its variants and attributes.
func (h *Handler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		writeError(w, http.StatusNotFound, "Admin endpoints disabled", nil)
		return
	}

	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.SKU == "" {
		writeError(w, http.StatusBadRequest, "id and sku are required", nil)
		return
	}

	product := inventory.Product{
		ID:   inventory.ProductID(req.ID),
		SKU:  req.SKU,
		Name: req.Name,
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, inventory.Variant{
			ID:      inventory.ProductID(v.ID),
			Barcode: v.Barcode,
			Name:    v.Name,
		})
	}

	if err := h.Admin.SaveProduct(r.Context(), product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save product", err)
		return
	}
	for _, v := range req.Variants {
		for name, value := range v.Attributes {
			if err := h.Admin.SetVariantAttribute(r.Context(), inventory.ProductID(v.ID), name, value); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save variant attribute", err)
				return
			}
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID})
}

// SaveLocation upserts a location node.
func (h *Handler) SaveLocation(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		writeError(w, http.StatusNotFound, "Admin endpoints disabled", nil)
		return
	}

	var req SaveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}

	err := h.Admin.SaveLocation(r.Context(), inventory.Location{
		ID:       inventory.LocationID(req.ID),
		Name:     req.Name,
		ParentID: inventory.LocationID(req.ParentID),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save location", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID})
}

// SaveWarehouse upserts a warehouse record.
func (h *Handler) SaveWarehouse(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		writeError(w, http.StatusNotFound, "Admin endpoints disabled", nil)
		return
	}

	var req SaveWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.StockLocationID == "" {
		writeError(w, http.StatusBadRequest, "id and stock_location_id are required", nil)
		return
	}

	err := h.Admin.SaveWarehouse(r.Context(), sqlite.Warehouse{
		ID:            inventory.WarehouseID(req.ID),
		Name:          req.Name,
		StockLocation: inventory.LocationID(req.StockLocationID),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save warehouse", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID})
}

// ResetDatabase clears all data (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		writeError(w, http.StatusNotFound, "Admin endpoints disabled", nil)
		return
	}
	if err := h.Admin.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain error types to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrValidation):
		writeErrorCode(w, http.StatusBadRequest, "validation_error", err)
	case inventory.IsNotFound(err):
		writeErrorCode(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, inventory.ErrInsufficientStock):
		writeErrorCode(w, http.StatusBadRequest, "insufficient_stock", err)
	case errors.Is(err, inventory.ErrNoStock):
		writeErrorCode(w, http.StatusBadRequest, "no_stock", err)
	case errors.Is(err, inventory.ErrConflict):
		writeErrorCode(w, http.StatusConflict, "conflict", err)
	default:
		writeErrorCode(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
