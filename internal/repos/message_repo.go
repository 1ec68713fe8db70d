package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"coopsite/internal/domain"
)

type MessageRepo struct{ db *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageCols = `id, name, email, phone, subject, message, is_read, is_archived, created_at`

type MessageFilter struct {
	Archived bool
	Search   string // lower-cased substring of name, email, subject or body
}

func (r *MessageRepo) Insert(ctx context.Context, m domain.ContactMessage) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO contact_messages(`+messageCols+`)
		VALUES(?,?,?,?,?,?,?,?,?)
	`), m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message, m.Read, m.Archived, m.CreatedAt)
	return storeErr("messages.insert", err)
}

func (r *MessageRepo) List(ctx context.Context, f MessageFilter) ([]domain.ContactMessage, error) {
	where := `is_archived = ?`
	args := []any{f.Archived}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ? OR LOWER(message) LIKE ?)`
		args = append(args, like, like, like, like)
	}
	out := []domain.ContactMessage{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+messageCols+` FROM contact_messages
		WHERE `+where+`
		ORDER BY created_at DESC
	`), args...)
	return out, storeErr("messages.list", err)
}

func (r *MessageRepo) Get(ctx context.Context, id string) (domain.ContactMessage, error) {
	var m domain.ContactMessage
	err := r.db.GetContext(ctx, &m, r.db.Rebind(`SELECT `+messageCols+` FROM contact_messages WHERE id = ?`), id)
	return m, storeErr("messages.get", err)
}

func (r *MessageRepo) SetRead(ctx context.Context, id string, read bool) error {
	return execOne(ctx, r.db, "messages.read", `UPDATE contact_messages SET is_read = ? WHERE id = ?`, read, id)
}

func (r *MessageRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	return execOne(ctx, r.db, "messages.archive", `UPDATE contact_messages SET is_archived = ? WHERE id = ?`, archived, id)
}

// MarkReadMany and ArchiveMany return the number of rows touched.
func (r *MessageRepo) MarkReadMany(ctx context.Context, ids []string) (int64, error) {
	return r.bulk(ctx, "messages.bulk_read", `UPDATE contact_messages SET is_read = ? WHERE id IN (?)`, ids)
}

func (r *MessageRepo) ArchiveMany(ctx context.Context, ids []string) (int64, error) {
	return r.bulk(ctx, "messages.bulk_archive", `UPDATE contact_messages SET is_archived = ? WHERE id IN (?)`, ids)
}

func (r *MessageRepo) bulk(ctx context.Context, op, query string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(query, true, ids)
	if err != nil {
		return 0, storeErr(op, err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return 0, storeErr(op, err)
	}
	n, err := res.RowsAffected()
	return n, storeErr(op, err)
}

func (r *MessageRepo) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM contact_messages WHERE is_read = ? AND is_archived = ?`), false, false)
	return n, storeErr("messages.count", err)
}
