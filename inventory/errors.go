/*
errors.go - Centralized error types for the inventory engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every error carries a stable kind, a human-readable message, and the
  context values involved (ids/quantities) - never a stack trace.

ERROR CATEGORIES:
  1. Validation errors - missing/malformed input
  2. Not-found errors  - product/location/warehouse unresolved
  3. Stock errors      - insufficient or zero stock
  4. Conflict errors   - e.g. source equals destination
  5. Internal errors   - unexpected faults in the reconciliation chain

PROPAGATION:
  Validation, not-found, stock, and conflict errors are all detected
  before any ledger mutation - an operation that returns one of these
  has changed nothing.

USAGE:
  if errors.Is(err, inventory.ErrInsufficientStock) { ... }

  var nf *inventory.NotFoundError
  if errors.As(err, &nf) { ... }

SEE ALSO:
  - transfer.go, adjust.go: Where these are raised
  - api/handlers.go: Mapping to HTTP statuses
*/
package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input-validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a product, location, or warehouse
	// cannot be resolved.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a transfer exceeds on-hand
	// stock or a subtract adjustment would take counted below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNoStock is returned when a transfer source has no stock at all.
	ErrNoStock = errors.New("no stock at source")

	// ErrConflict is returned for contradictory input, e.g. a transfer
	// whose source and destination are the same location.
	ErrConflict = errors.New("conflicting request")

	// ErrInternal is returned for unexpected faults, e.g. the reconciler
	// failing past all repair tiers.
	ErrInternal = errors.New("internal failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports an unresolvable reference.
type NotFoundError struct {
	Kind string // "product", "location", "warehouse"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Ref)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError reports a quantity shortage.
type InsufficientStockError struct {
	ProductID  ProductID
	LocationID LocationID
	Requested  decimal.Decimal
	Current    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s at %s: requested %s, current %s",
		e.ProductID, e.LocationID, e.Requested, e.Current)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConflictError reports contradictory input values.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than an engine fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrNoStock) ||
		errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates an unresolvable reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
