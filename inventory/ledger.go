/*
ledger.go - Persistence interfaces for the quantity ledger

PURPOSE:
  Defines the interface between the engines and the database. The Ledger
  is the authoritative store of (product, location) -> {on-hand, reserved,
  counted} state; the ReservationBook holds the pending reservations the
  reconciler reduces, releases, and synthesizes.

UPSERT CONTRACT:
  Every Set* operation upserts: if no row exists for the (product,
  location) pair, one is created with zero quantities first. Rows are
  never deleted by the engines.

SUBTREE READS:
  Get and QuantsIn operate on a location subtree (a warehouse maps to a
  single root stock location whose descendants are included) and sum or
  list every ledger row whose location falls within it. Historically a
  pair may have accumulated multiple rows; subtree reads aggregate them
  by summation.

ATOMICITY:
  Each Transfer/Adjustment executes its full read-modify-write sequence
  inside WithTx. Implementations must give the closure a consistent,
  isolated view: either all of its writes commit or none do. The engines
  touch at most two locations per operation and walk rows in a stable
  location order, so per-row locking cannot deadlock.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:    Production SQLite
  - inventory/store/memory.go: In-memory for testing

SEE ALSO:
  - reconciler.go: The only writer of Reserved and reservations
  - changelog.go:  AuditLog, the third store interface
*/
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER - Quantity state per (product, location)
// =============================================================================

// Ledger reads and writes stock quant rows.
type Ledger interface {
	// Get sums on-hand and available across every ledger row whose
	// location is in subtree.
	Get(ctx context.Context, product ProductID, subtree []LocationID) (onHand, available decimal.Decimal, err error)

	// GetExact fetches the single current row for an exact location.
	// Returns nil when no row exists.
	GetExact(ctx context.Context, product ProductID, location LocationID) (*StockQuant, error)

	// QuantsIn lists every row in subtree, ordered by location ID.
	// The stable order is what makes the reconciler's row allocation
	// deterministic.
	QuantsIn(ctx context.Context, product ProductID, subtree []LocationID) ([]StockQuant, error)

	// SetOnHand upserts the row and sets its on-hand quantity.
	SetOnHand(ctx context.Context, product ProductID, location LocationID, value decimal.Decimal) error

	// SetReserved upserts the row and sets its reserved quantity.
	SetReserved(ctx context.Context, product ProductID, location LocationID, value decimal.Decimal) error

	// SetCounted upserts the row and stages its counted quantity.
	// On-hand and available are not touched.
	SetCounted(ctx context.Context, product ProductID, location LocationID, value decimal.Decimal) error
}

// =============================================================================
// RESERVATION BOOK - Pending reservations per (product, location)
// =============================================================================

// ReservationBook persists pending reservations. Only the reconciler
// writes through this interface.
type ReservationBook interface {
	// Reservations lists pending reservations for the pair. No ordering
	// is guaranteed; the reconciler sorts largest-first itself.
	Reservations(ctx context.Context, product ProductID, location LocationID) ([]PendingReservation, error)

	// CreateReservation persists a new reservation.
	CreateReservation(ctx context.Context, r PendingReservation) error

	// ReduceReservation shrinks a reservation by the given amount,
	// removing it entirely when nothing remains.
	ReduceReservation(ctx context.Context, id ReservationID, by decimal.Decimal) error

	// ReleaseReservation cancels a reservation entirely.
	ReleaseReservation(ctx context.Context, id ReservationID) error
}

// =============================================================================
// TRANSACTIONAL STORE - One atomic scope per operation
// =============================================================================

// LedgerStore bundles everything an engine touches during one operation.
type LedgerStore interface {
	Ledger
	ReservationBook
	AuditLog
}

// TxLedgerStore adds the transactional scope required by the engines.
type TxLedgerStore interface {
	LedgerStore

	// WithTx executes fn within a transaction. If fn returns an error,
	// every write made through its LedgerStore is rolled back.
	WithTx(ctx context.Context, fn func(LedgerStore) error) error
}
