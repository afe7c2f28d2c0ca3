/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence interface of the inventory engine
  (Ledger, ReservationBook, AuditLog, Catalog, Locations) using SQLite.
  In production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  stock_quants:       One row per (product, location): on-hand,
                      reserved, staged counted quantity
  stock_reservations: Pending reservations the reconciler reduces,
                      releases, and synthesizes
  stock_changes:      Append-only audit log, read newest first
  products /
  product_variants /
  variant_attributes: Read-only catalog (SKU, barcode, size/color)
  stock_locations /
  warehouses:         Location tree; a warehouse points at its root
                      stock location

TRANSACTIONS:
  WithTx runs the closure against a *sql.Tx so that every read and
  write inside one Transfer/Adjustment shares a single atomic scope. A
  store-wide mutex serializes writers on top of SQLite's WAL
  single-writer model, which is what gives the engines their
  read-modify-write isolation.

QUANTITIES:
  Stored as decimal strings, never floats, and summed in Go with
  shopspring/decimal.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - inventory/ledger.go:       Interface contracts
  - inventory/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// querier is the common surface of *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
	session
}

// session runs the actual SQL against either the DB handle or an open
// transaction. inventory.LedgerStore is implemented here so WithTx can
// hand the engines a transactional view.
type session struct {
	q querier
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One pooled connection: SQLite allows a single writer anyway, and
	// :memory: databases exist per connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, session: session{q: db}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Quantity ledger: one current row per (product, location)
	CREATE TABLE IF NOT EXISTS stock_quants (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		on_hand TEXT NOT NULL DEFAULT '0',
		reserved TEXT NOT NULL DEFAULT '0',
		counted TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(product_id, location_id)
	);

	CREATE INDEX IF NOT EXISTS idx_quants_product_location
		ON stock_quants(product_id, location_id);
	CREATE INDEX IF NOT EXISTS idx_quants_location
		ON stock_quants(location_id);

	-- Pending reservations (reconciler bookkeeping)
	CREATE TABLE IF NOT EXISTS stock_reservations (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		quantity TEXT NOT NULL,
		origin TEXT NOT NULL,
		ref TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_product_location
		ON stock_reservations(product_id, location_id);

	-- Change audit log (append-only, read newest first)
	CREATE TABLE IF NOT EXISTS stock_changes (
		id TEXT PRIMARY KEY,
		quant_id TEXT,
		product_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		location_from TEXT,
		location_to TEXT,
		change_type TEXT NOT NULL,
		on_hand_before TEXT NOT NULL,
		on_hand_after TEXT NOT NULL,
		available_before TEXT NOT NULL,
		available_after TEXT NOT NULL,
		ref TEXT,
		note TEXT,
		actor_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_changes_product_location
		ON stock_changes(product_id, location_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_changes_quant
		ON stock_changes(quant_id) WHERE quant_id IS NOT NULL;

	-- Catalog
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		sku TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS product_variants (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		barcode TEXT UNIQUE,
		name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_variants_product
		ON product_variants(product_id);

	CREATE TABLE IF NOT EXISTS variant_attributes (
		variant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		UNIQUE(variant_id, name)
	);

	-- Location tree
	CREATE TABLE IF NOT EXISTS stock_locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_locations_parent
		ON stock_locations(parent_id);

	CREATE TABLE IF NOT EXISTS warehouses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		stock_location_id TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (inventory.TxLedgerStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The mutex
// serializes writers so each operation sees a stable ledger view.
func (s *Store) WithTx(ctx context.Context, fn func(inventory.LedgerStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&session{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// QUANTITY LEDGER (inventory.Ledger interface)
// =============================================================================

// Get sums on-hand and available across the subtree.
func (s *session) Get(ctx context.Context, product inventory.ProductID, subtree []inventory.LocationID) (decimal.Decimal, decimal.Decimal, error) {
	onHand, available := decimal.Zero, decimal.Zero
	if len(subtree) == 0 {
		return onHand, available, nil
	}

	query := `
		SELECT on_hand, reserved FROM stock_quants
		WHERE product_id = ? AND location_id IN (` + placeholders(len(subtree)) + `)
	`
	rows, err := s.q.QueryContext(ctx, query, inArgs(product, subtree)...)
	if err != nil {
		return onHand, available, fmt.Errorf("failed to query quants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var onHandStr, reservedStr string
		if err := rows.Scan(&onHandStr, &reservedStr); err != nil {
			return onHand, available, err
		}
		oh, rv := mustDecimal(onHandStr), mustDecimal(reservedStr)
		onHand = onHand.Add(oh)
		available = available.Add(oh.Sub(rv))
	}
	return onHand, available, rows.Err()
}

// GetExact fetches the single row for an exact location, nil if absent.
func (s *session) GetExact(ctx context.Context, product inventory.ProductID, location inventory.LocationID) (*inventory.StockQuant, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, product_id, location_id, on_hand, reserved, counted, created_at, updated_at
		FROM stock_quants
		WHERE product_id = ? AND location_id = ?
	`, product, location)

	q, err := scanQuant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// QuantsIn lists every row in the subtree, ordered by location ID.
func (s *session) QuantsIn(ctx context.Context, product inventory.ProductID, subtree []inventory.LocationID) ([]inventory.StockQuant, error) {
	if len(subtree) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, product_id, location_id, on_hand, reserved, counted, created_at, updated_at
		FROM stock_quants
		WHERE product_id = ? AND location_id IN (` + placeholders(len(subtree)) + `)
		ORDER BY location_id ASC
	`
	rows, err := s.q.QueryContext(ctx, query, inArgs(product, subtree)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quants: %w", err)
	}
	defer rows.Close()

	var quants []inventory.StockQuant
	for rows.Next() {
		q, err := scanQuant(rows)
		if err != nil {
			return nil, err
		}
		quants = append(quants, *q)
	}
	return quants, rows.Err()
}

// SetOnHand upserts the row and sets its on-hand quantity.
func (s *session) SetOnHand(ctx context.Context, product inventory.ProductID, location inventory.LocationID, value decimal.Decimal) error {
	return s.upsertQuant(ctx, product, location, "on_hand", value.String())
}

// SetReserved upserts the row and sets its reserved quantity.
func (s *session) SetReserved(ctx context.Context, product inventory.ProductID, location inventory.LocationID, value decimal.Decimal) error {
	return s.upsertQuant(ctx, product, location, "reserved", value.String())
}

// SetCounted upserts the row and stages its counted quantity.
func (s *session) SetCounted(ctx context.Context, product inventory.ProductID, location inventory.LocationID, value decimal.Decimal) error {
	return s.upsertQuant(ctx, product, location, "counted", value.String())
}

// upsertQuant creates the row with zero quantities when absent, then
// sets the one column the caller changed. The column name comes from a
// fixed set above, never from input.
func (s *session) upsertQuant(ctx context.Context, product inventory.ProductID, location inventory.LocationID, column, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `
		INSERT INTO stock_quants (id, product_id, location_id, on_hand, reserved, counted, created_at, updated_at)
		VALUES (?, ?, ?, '0', '0', NULL, ?, ?)
		ON CONFLICT(product_id, location_id) DO NOTHING
	`
	if _, err := s.q.ExecContext(ctx, query, uuid.NewString(), product, location, now, now); err != nil {
		return fmt.Errorf("failed to upsert quant: %w", err)
	}

	update := fmt.Sprintf(`
		UPDATE stock_quants SET %s = ?, updated_at = ?
		WHERE product_id = ? AND location_id = ?
	`, column)
	if _, err := s.q.ExecContext(ctx, update, value, now, product, location); err != nil {
		return fmt.Errorf("failed to update quant %s: %w", column, err)
	}
	return nil
}

func scanQuant(row interface{ Scan(...any) error }) (*inventory.StockQuant, error) {
	var (
		q                    inventory.StockQuant
		onHand, reserved     string
		counted              sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&q.ID, &q.ProductID, &q.LocationID, &onHand, &reserved, &counted, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	q.OnHand = mustDecimal(onHand)
	q.Reserved = mustDecimal(reserved)
	if counted.Valid {
		q.Counted = mustDecimal(counted.String)
		q.CountedSet = true
	}
	q.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	q.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &q, nil
}

// =============================================================================
// RESERVATION BOOK (inventory.ReservationBook interface)
// =============================================================================

// Reservations lists pending reservations for the pair.
func (s *session) Reservations(ctx context.Context, product inventory.ProductID, location inventory.LocationID) ([]inventory.PendingReservation, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, product_id, location_id, quantity, origin, ref, created_at
		FROM stock_reservations
		WHERE product_id = ? AND location_id = ?
		ORDER BY created_at ASC
	`, product, location)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []inventory.PendingReservation
	for rows.Next() {
		var (
			r         inventory.PendingReservation
			quantity  string
			ref       sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.ProductID, &r.LocationID, &quantity, &r.Origin, &ref, &createdAt); err != nil {
			return nil, err
		}
		r.Quantity = mustDecimal(quantity)
		r.Ref = ref.String
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// CreateReservation persists a new reservation.
func (s *session) CreateReservation(ctx context.Context, r inventory.PendingReservation) error {
	if r.ID == "" {
		r.ID = inventory.ReservationID(uuid.NewString())
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO stock_reservations (id, product_id, location_id, quantity, origin, ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ProductID, r.LocationID, r.Quantity.String(), r.Origin, nullString(r.Ref),
		r.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// ReduceReservation shrinks a reservation, removing it when drained.
func (s *session) ReduceReservation(ctx context.Context, id inventory.ReservationID, by decimal.Decimal) error {
	var quantity string
	err := s.q.QueryRowContext(ctx,
		"SELECT quantity FROM stock_reservations WHERE id = ?", id,
	).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reservation not found: %s", id)
	}
	if err != nil {
		return err
	}

	remaining := mustDecimal(quantity).Sub(by)
	if remaining.IsPositive() {
		_, err = s.q.ExecContext(ctx,
			"UPDATE stock_reservations SET quantity = ? WHERE id = ?", remaining.String(), id)
	} else {
		_, err = s.q.ExecContext(ctx,
			"DELETE FROM stock_reservations WHERE id = ?", id)
	}
	return err
}

// ReleaseReservation cancels a reservation entirely.
func (s *session) ReleaseReservation(ctx context.Context, id inventory.ReservationID) error {
	result, err := s.q.ExecContext(ctx, "DELETE FROM stock_reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}
	return nil
}

// =============================================================================
// CHANGE AUDIT LOG (inventory.AuditLog interface)
// =============================================================================

// Record appends one change entry. Append-only: no update or delete
// statements exist for stock_changes.
func (s *session) Record(ctx context.Context, entry inventory.ChangeLogEntry) (inventory.ChangeEntryID, error) {
	if entry.ID == "" {
		entry.ID = inventory.ChangeEntryID(uuid.NewString())
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO stock_changes
		(id, quant_id, product_id, location_id, location_from, location_to, change_type,
		 on_hand_before, on_hand_after, available_before, available_after,
		 ref, note, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		nullString(string(entry.QuantID)),
		entry.ProductID,
		entry.LocationID,
		nullString(string(entry.FromLocation)),
		nullString(string(entry.ToLocation)),
		entry.ChangeType,
		entry.OnHandBefore.String(),
		entry.OnHandAfter.String(),
		entry.AvailableBefore.String(),
		entry.AvailableAfter.String(),
		nullString(entry.Ref),
		nullString(entry.Note),
		nullString(string(entry.ActorID)),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to append change entry: %w", err)
	}
	return entry.ID, nil
}

// Changes lists entries newest first.
func (s *session) Changes(ctx context.Context, filter inventory.ChangeFilter) ([]inventory.ChangeLogEntry, error) {
	query := `
		SELECT id, quant_id, product_id, location_id, location_from, location_to, change_type,
		       on_hand_before, on_hand_after, available_before, available_after,
		       ref, note, actor_id, created_at
		FROM stock_changes
	`
	var conds []string
	var args []any
	if filter.QuantID != "" {
		conds = append(conds, "quant_id = ?")
		args = append(args, filter.QuantID)
	}
	if filter.ProductID != "" {
		conds = append(conds, "product_id = ?")
		args = append(args, filter.ProductID)
	}
	if filter.LocationID != "" {
		conds = append(conds, "location_id = ?")
		args = append(args, filter.LocationID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var entries []inventory.ChangeLogEntry
	for rows.Next() {
		var (
			e                                  inventory.ChangeLogEntry
			quantID, from, to, ref, note, actor sql.NullString
			ohB, ohA, avB, avA                 string
			createdAt                          string
		)
		if err := rows.Scan(&e.ID, &quantID, &e.ProductID, &e.LocationID, &from, &to, &e.ChangeType,
			&ohB, &ohA, &avB, &avA, &ref, &note, &actor, &createdAt); err != nil {
			return nil, err
		}
		e.QuantID = inventory.QuantID(quantID.String)
		e.FromLocation = inventory.LocationID(from.String)
		e.ToLocation = inventory.LocationID(to.String)
		e.OnHandBefore = mustDecimal(ohB)
		e.OnHandAfter = mustDecimal(ohA)
		e.AvailableBefore = mustDecimal(avB)
		e.AvailableAfter = mustDecimal(avA)
		e.Ref = ref.String
		e.Note = note.String
		e.ActorID = inventory.UserID(actor.String)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// PRODUCT CATALOG (inventory.Catalog interface)
// =============================================================================

// FindProductBySKU resolves a product and its variants by SKU.
func (s *session) FindProductBySKU(ctx context.Context, sku string) (*inventory.Product, error) {
	var p inventory.Product
	err := s.q.QueryRowContext(ctx,
		"SELECT id, sku, name FROM products WHERE sku = ?", sku,
	).Scan(&p.ID, &p.SKU, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, barcode, name FROM product_variants
		WHERE product_id = ?
		ORDER BY barcode ASC
	`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v inventory.Variant
		var barcode sql.NullString
		if err := rows.Scan(&v.ID, &barcode, &v.Name); err != nil {
			return nil, err
		}
		v.Barcode = barcode.String
		p.Variants = append(p.Variants, v)
	}
	return &p, rows.Err()
}

// FindProductByBarcode resolves a single variant by barcode.
func (s *session) FindProductByBarcode(ctx context.Context, barcode string) (*inventory.Variant, error) {
	var v inventory.Variant
	err := s.q.QueryRowContext(ctx,
		"SELECT id, barcode, name FROM product_variants WHERE barcode = ?", barcode,
	).Scan(&v.ID, &v.Barcode, &v.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VariantAttributes extracts size and color best-effort: attribute
// names are matched case-insensitively ("size", "color"/"colour"),
// absent attributes stay empty.
func (s *session) VariantAttributes(ctx context.Context, variant inventory.ProductID) (inventory.VariantAttributes, error) {
	var attrs inventory.VariantAttributes

	rows, err := s.q.QueryContext(ctx,
		"SELECT name, value FROM variant_attributes WHERE variant_id = ?", variant)
	if err != nil {
		return attrs, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return attrs, err
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "size") && attrs.Size == "" {
			attrs.Size = value
		}
		if (strings.Contains(lower, "color") || strings.Contains(lower, "colour")) && attrs.Color == "" {
			attrs.Color = value
		}
	}
	return attrs, rows.Err()
}

// =============================================================================
// LOCATION TREE (inventory.Locations interface)
// =============================================================================

// ResolveWarehouseStockLocation maps a warehouse to its root stock
// location, nil when the warehouse is unknown.
func (s *session) ResolveWarehouseStockLocation(ctx context.Context, warehouse inventory.WarehouseID) (*inventory.Location, error) {
	var locationID inventory.LocationID
	err := s.q.QueryRowContext(ctx,
		"SELECT stock_location_id FROM warehouses WHERE id = ?", warehouse,
	).Scan(&locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.ResolveLocation(ctx, locationID)
}

// ResolveLocation fetches one location, nil when unknown.
func (s *session) ResolveLocation(ctx context.Context, location inventory.LocationID) (*inventory.Location, error) {
	var l inventory.Location
	var parent sql.NullString
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, parent_id FROM stock_locations WHERE id = ?", location,
	).Scan(&l.ID, &l.Name, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.ParentID = inventory.LocationID(parent.String)
	return &l, nil
}

// LocationSubtree expands a root into itself plus all descendants.
func (s *session) LocationSubtree(ctx context.Context, root inventory.LocationID) ([]inventory.LocationID, error) {
	rows, err := s.q.QueryContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM stock_locations WHERE id = ?
			UNION ALL
			SELECT l.id FROM stock_locations l
			JOIN subtree st ON l.parent_id = st.id
		)
		SELECT id FROM subtree ORDER BY id ASC
	`, root)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []inventory.LocationID
	for rows.Next() {
		var id inventory.LocationID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// CATALOG / LOCATION WRITES (seeding and admin, not used by engines)
// =============================================================================

// Warehouse is a stored warehouse record.
type Warehouse struct {
	ID            inventory.WarehouseID
	Name          string
	StockLocation inventory.LocationID
}

// SaveProduct upserts a product and its variants.
func (s *Store) SaveProduct(ctx context.Context, p inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET sku = excluded.sku, name = excluded.name
	`, p.ID, p.SKU, p.Name)
	if err != nil {
		return err
	}

	for _, v := range p.Variants {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO product_variants (id, product_id, barcode, name) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET barcode = excluded.barcode, name = excluded.name
		`, v.ID, p.ID, nullString(v.Barcode), v.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

// SetVariantAttribute upserts one attribute value for a variant.
func (s *Store) SetVariantAttribute(ctx context.Context, variant inventory.ProductID, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO variant_attributes (variant_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT(variant_id, name) DO UPDATE SET value = excluded.value
	`, variant, name, value)
	return err
}

// SaveLocation upserts a location node.
func (s *Store) SaveLocation(ctx context.Context, l inventory.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_locations (id, name, parent_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, parent_id = excluded.parent_id
	`, l.ID, l.Name, nullString(string(l.ParentID)))
	return err
}

// SaveWarehouse upserts a warehouse record.
func (s *Store) SaveWarehouse(ctx context.Context, w Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warehouses (id, name, stock_location_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, stock_location_id = excluded.stock_location_id
	`, w.ID, w.Name, w.StockLocation)
	return err
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"stock_changes", "stock_reservations", "stock_quants",
		"variant_attributes", "product_variants", "products",
		"warehouses", "stock_locations",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func inArgs(product inventory.ProductID, subtree []inventory.LocationID) []any {
	args := make([]any, 0, len(subtree)+1)
	args = append(args, product)
	for _, loc := range subtree {
		args = append(args, loc)
	}
	return args
}
