package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"coopsite/internal/domain"
)

// CartRepo keeps one cart per browser session (the sid cookie doubles as cart id).
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartLineRow struct {
	domain.Product
	Qty int `db:"qty"`
}

type CartLineRecord struct {
	ProductID string
	Qty       int
}

// Load returns the session's lines in insertion order, joined with live product data.
func (r *CartRepo) Load(ctx context.Context, sessionID string) ([]CartLineRow, error) {
	rows := []CartLineRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT p.id, p.name, p.description, p.price, p.image_url, p.category, p.in_stock, p.featured, p.created_at,
		       ci.qty
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE c.session_id = ?
		ORDER BY ci.position
	`), sessionID)
	return rows, storeErr("carts.load", err)
}

// Save replaces the session's cart contents with lines, keeping their order.
func (r *CartRepo) Save(ctx context.Context, sessionID string, lines []CartLineRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("carts.save", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO carts(id, session_id, updated_at) VALUES(?,?,?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`), sessionID, sessionID, Timestamp(time.Now())); err != nil {
		return storeErr("carts.save", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), sessionID); err != nil {
		return storeErr("carts.save", err)
	}
	for i, l := range lines {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO cart_items(cart_id, product_id, qty, position) VALUES(?,?,?,?)
		`), sessionID, l.ProductID, l.Qty, i); err != nil {
			return storeErr("carts.save_item", err)
		}
	}
	return storeErr("carts.save", tx.Commit())
}

func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), sessionID)
	return storeErr("carts.clear", err)
}
