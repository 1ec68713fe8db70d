package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"coopsite/internal/domain"
)

type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, name, surname, phone, email, date, time_slot, notes, status, created_at`

// BookedSlots returns the distinct slots claimed on date by live bookings.
func (r *BookingRepo) BookedSlots(ctx context.Context, date string) ([]domain.TimeSlot, error) {
	out := []domain.TimeSlot{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT DISTINCT time_slot FROM call_bookings
		WHERE date = ? AND status <> ?
	`), date, domain.StatusCancelled)
	return out, storeErr("bookings.slots", err)
}

// Insert stores b as is. Two live bookings may share a slot; staff reconcile
// those by hand.
func (r *BookingRepo) Insert(ctx context.Context, b domain.Booking) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO call_bookings(`+bookingCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?)
	`), b.ID, b.Name, b.Surname, b.Phone, b.Email, b.Date, b.TimeSlot, b.Notes, b.Status, b.CreatedAt)
	return storeErr("bookings.insert", err)
}

func (r *BookingRepo) Get(ctx context.Context, id string) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.GetContext(ctx, &b, r.db.Rebind(`SELECT `+bookingCols+` FROM call_bookings WHERE id = ?`), id)
	return b, storeErr("bookings.get", err)
}

// List returns bookings by day and slot start; status "" means all.
func (r *BookingRepo) List(ctx context.Context, status domain.Status) ([]domain.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM call_bookings`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY date DESC, time_slot ASC, created_at DESC`
	out := []domain.Booking{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, storeErr("bookings.list", err)
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	return execOne(ctx, r.db, "bookings.status", `UPDATE call_bookings SET status = ? WHERE id = ?`, status, id)
}

func (r *BookingRepo) CountByStatus(ctx context.Context, status domain.Status) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM call_bookings WHERE status = ?`), status)
	return n, storeErr("bookings.count", err)
}
