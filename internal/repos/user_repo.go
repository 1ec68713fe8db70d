package repos

import (
	"context"

	"coopsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

// UserRepo stores admin accounts and their login sessions.
type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const adminCols = `id, username, password_hash, email, created_at, last_login, active`

// ActiveByUsername only returns accounts that may log in.
func (r *UserRepo) ActiveByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+adminCols+` FROM admin_users WHERE username = ? AND active = ?`), username, true)
	if err != nil {
		return nil, storeErr("admins.by_username", err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+adminCols+` FROM admin_users WHERE id = ?`), id)
	if err != nil {
		return nil, storeErr("admins.by_id", err)
	}
	return &u, nil
}

// Insert fails with a conflict when the username is taken.
func (r *UserRepo) Insert(ctx context.Context, u domain.AdminUser) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO admin_users(`+adminCols+`)
		VALUES(?,?,?,?,?,?,?)
	`), u.ID, u.Username, u.PasswordHash, u.Email, u.CreatedAt, u.LastLogin, u.Active)
	return storeErr("admins.insert", err)
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id, at string) error {
	return execOne(ctx, r.DB, "admins.last_login", `UPDATE admin_users SET last_login = ? WHERE id = ?`, at, id)
}

func (r *UserRepo) SetActive(ctx context.Context, username string, active bool) error {
	return execOne(ctx, r.DB, "admins.active", `UPDATE admin_users SET active = ? WHERE username = ?`, active, username)
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM admin_users`)
	return n, storeErr("admins.count", err)
}

func (r *UserRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO admin_sessions(token, admin_id, created_at, expires_at) VALUES(?,?,?,?)
	`), s.Token, s.AdminID, s.CreatedAt, s.ExpiresAt)
	return storeErr("sessions.insert", err)
}

// SessionAdmin resolves a token that has not expired at now to an active admin.
func (r *UserRepo) SessionAdmin(ctx context.Context, token, now string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
		SELECT u.id, u.username, u.password_hash, u.email, u.created_at, u.last_login, u.active
		FROM admin_sessions s
		JOIN admin_users u ON u.id = s.admin_id
		WHERE s.token = ? AND s.expires_at > ? AND u.active = ?
	`), token, now, true)
	if err != nil {
		return nil, storeErr("sessions.admin", err)
	}
	return &u, nil
}

func (r *UserRepo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM admin_sessions WHERE token = ?`), token)
	return storeErr("sessions.delete", err)
}

// PurgeExpiredSessions drops sessions that expired before now.
func (r *UserRepo) PurgeExpiredSessions(ctx context.Context, now string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM admin_sessions WHERE expires_at <= ?`), now)
	if err != nil {
		return 0, storeErr("sessions.purge", err)
	}
	n, err := res.RowsAffected()
	return n, storeErr("sessions.purge", err)
}
