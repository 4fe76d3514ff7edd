// Package sqlite provides the SQLite-backed handoff.Store.
//
// WAL mode is enabled on Open so that order lookups never block the
// checkout path writing new orders.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/menulink/ordercore/internal/handoff"
	"github.com/menulink/ordercore/internal/order"
	"github.com/shopspring/decimal"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps Alpine-based container builds simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
// Money columns are TEXT holding exact decimal strings — storing REAL
// would reintroduce the float drift the pricing engine avoids.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id              TEXT PRIMARY KEY,
    business        TEXT    NOT NULL,
    customer_name   TEXT    NOT NULL,
    customer_phone  TEXT    NOT NULL,
    notes           TEXT    NOT NULL DEFAULT '',
    grand_total     TEXT    NOT NULL,

    -- RFC3339 stored as TEXT, SQLite idiom.
    created_at      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS order_lines (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id    TEXT    NOT NULL REFERENCES orders(id),

    -- Preserves the cart's display order across the round trip.
    position    INTEGER NOT NULL,

    item_id     TEXT    NOT NULL,
    name        TEXT    NOT NULL,
    unit_price  TEXT    NOT NULL,
    quantity    INTEGER NOT NULL,
    line_total  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines(order_id, position);
`

// Repository is the SQLite implementation of handoff.Store.
type Repository struct {
	db *sql.DB
}

var _ handoff.Store = (*Repository)(nil)

// Open opens (or creates) the SQLite database at the given path and
// applies the schema.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver takes _pragma query parameters. WAL enables
	// concurrent readers; busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Driver name is "sqlite", not "sqlite3", for modernc.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts the order and its lines in one transaction.
func (r *Repository) Save(ctx context.Context, o *order.ComposedOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save order %q: %w", o.ID, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after a successful commit

	const insertOrder = `
		INSERT INTO orders
			(id, business, customer_name, customer_phone, notes, grand_total, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insertOrder,
		o.ID,
		o.BusinessName,
		o.CustomerName,
		o.CustomerPhone,
		o.Notes,
		o.GrandTotal.String(),
		o.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	); err != nil {
		return fmt.Errorf("sqlite: save order %q: %w", o.ID, err)
	}

	const insertLine = `
		INSERT INTO order_lines
			(order_id, position, item_id, name, unit_price, quantity, line_total)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	for pos, line := range o.Lines {
		if _, err := tx.ExecContext(ctx, insertLine,
			o.ID,
			pos,
			line.ItemID,
			line.Name,
			line.UnitPrice.String(),
			line.Quantity,
			line.LineTotal.String(),
		); err != nil {
			return fmt.Errorf("sqlite: save line %d of order %q: %w", pos, o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit order %q: %w", o.ID, err)
	}
	return nil
}

// Get loads one order with its lines in stored position order.
func (r *Repository) Get(ctx context.Context, id string) (*order.ComposedOrder, error) {
	const q = `
		SELECT id, business, customer_name, customer_phone, notes, grand_total, created_at
		FROM   orders
		WHERE  id = ?`

	var o order.ComposedOrder
	var grandTotal, createdAt string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID,
		&o.BusinessName,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.Notes,
		&grandTotal,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", handoff.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}

	if o.GrandTotal, err = decimal.NewFromString(grandTotal); err != nil {
		return nil, fmt.Errorf("sqlite: order %q grand_total: %w", id, err)
	}
	if o.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}

	if o.Lines, err = r.lines(ctx, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) lines(ctx context.Context, orderID string) ([]order.Line, error) {
	const q = `
		SELECT item_id, name, unit_price, quantity, line_total
		FROM   order_lines
		WHERE  order_id = ?
		ORDER  BY position`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: lines of order %q: %w", orderID, err)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var line order.Line
		var unitPrice, lineTotal string
		if err := rows.Scan(&line.ItemID, &line.Name, &unitPrice, &line.Quantity, &lineTotal); err != nil {
			return nil, fmt.Errorf("sqlite: scan line of order %q: %w", orderID, err)
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("sqlite: order %q unit_price: %w", orderID, err)
		}
		if line.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
			return nil, fmt.Errorf("sqlite: order %q line_total: %w", orderID, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
