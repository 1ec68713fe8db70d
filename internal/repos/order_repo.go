package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"coopsite/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID        string          `db:"id"`
	Name      string          `db:"customer_name"`
	Surname   string          `db:"customer_surname"`
	Phone     string          `db:"customer_phone"`
	Email     string          `db:"customer_email"`
	Notes     string          `db:"customer_notes"`
	Total     decimal.Decimal `db:"total"`
	Status    domain.Status   `db:"status"`
	CreatedAt string          `db:"created_at"`
}

type orderItemRow struct {
	OrderID     string          `db:"order_id"`
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
}

const orderCols = `id, customer_name, customer_surname, customer_phone, customer_email, customer_notes, total, status, created_at`

func (o orderRow) order(items []domain.OrderItem) domain.Order {
	if items == nil {
		items = []domain.OrderItem{}
	}
	return domain.Order{
		ID: o.ID,
		Customer: domain.Customer{
			Name: o.Name, Surname: o.Surname, Phone: o.Phone, Email: o.Email, Notes: o.Notes,
		},
		Items:     items,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

// Insert writes the order header and its snapshot lines atomically.
func (r *OrderRepo) Insert(ctx context.Context, o domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("orders.insert", err)
	}
	defer func() { _ = tx.Rollback() }()

	c := o.Customer
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO orders(`+orderCols+`)
		VALUES(?,?,?,?,?,?,?,?,?)
	`), o.ID, c.Name, c.Surname, c.Phone, c.Email, c.Notes, o.Total, o.Status, o.CreatedAt); err != nil {
		return storeErr("orders.insert", err)
	}
	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO order_items(order_id, position, product_id, product_name, quantity, price)
			VALUES(?,?,?,?,?,?)
		`), o.ID, i, it.ProductID(), it.ProductName(), it.Quantity(), it.Price()); err != nil {
			return storeErr("orders.insert_item", err)
		}
	}
	return storeErr("orders.insert", tx.Commit())
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o orderRow
	if err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id); err != nil {
		return domain.Order{}, storeErr("orders.get", err)
	}
	items, err := r.items(ctx, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	return o.order(items[id]), nil
}

// List returns orders newest first; status "" means all.
func (r *OrderRepo) List(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, storeErr("orders.list", err)
	}
	out := make([]domain.Order, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, len(rows))
	for i, o := range rows {
		ids[i] = o.ID
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range rows {
		out = append(out, o.order(items[o.ID]))
	}
	return out, nil
}

func (r *OrderRepo) items(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	q, args, err := sqlx.In(`
		SELECT order_id, product_id, product_name, quantity, price
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, position
	`, orderIDs)
	if err != nil {
		return nil, storeErr("orders.items", err)
	}
	var rows []orderItemRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, storeErr("orders.items", err)
	}
	out := make(map[string][]domain.OrderItem, len(orderIDs))
	for _, it := range rows {
		out[it.OrderID] = append(out[it.OrderID], domain.RestoreOrderItem(it.ProductID, it.ProductName, it.Quantity, it.Price))
	}
	return out, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	return execOne(ctx, r.db, "orders.status", `UPDATE orders SET status = ? WHERE id = ?`, status, id)
}

func (r *OrderRepo) CountByStatus(ctx context.Context, status domain.Status) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM orders WHERE status = ?`), status)
	return n, storeErr("orders.count", err)
}
