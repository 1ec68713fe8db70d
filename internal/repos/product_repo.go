package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"coopsite/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, price, image_url, category, in_stock, featured, created_at`

type ProductFilter struct {
	Category     string
	Search       string
	InStockOnly  bool
	FeaturedOnly bool
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, f.Category)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, `(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`)
		args = append(args, like, like)
	}
	if f.InStockOnly {
		where = append(where, `in_stock = ?`)
		args = append(args, true)
	}
	if f.FeaturedOnly {
		where = append(where, `featured = ?`)
		args = append(args, true)
	}
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productCols+` FROM products
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC, name ASC
	`), args...)
	return out, storeErr("products.list", err)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, storeErr("products.get", err)
}

func (r *ProductRepo) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products(`+productCols+`)
		VALUES(?,?,?,?,?,?,?,?,?)
	`), p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.InStock, p.Featured, p.CreatedAt)
	return storeErr("products.insert", err)
}

// Update writes only the fields set in patch.
func (r *ProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+` = ?`)
		args = append(args, v)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.InStock != nil {
		add("in_stock", *patch.InStock)
	}
	if patch.Featured != nil {
		add("featured", *patch.Featured)
	}
	if len(sets) == 0 {
		// nothing to write, but still report unknown ids
		_, err := r.Get(ctx, id)
		return err
	}
	args = append(args, id)
	return execOne(ctx, r.db, "products.update", `UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, "products.delete", `DELETE FROM products WHERE id = ?`, id)
}

func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT DISTINCT category FROM products
		WHERE category <> ''
		ORDER BY category
	`)
	return out, storeErr("products.categories", err)
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`)
	return n, storeErr("products.count", err)
}
