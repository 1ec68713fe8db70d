package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"coopsite/internal/domain"
)

type ProjectRepo struct{ db *sqlx.DB }

func NewProjectRepo(db *sqlx.DB) *ProjectRepo { return &ProjectRepo{db: db} }

const projectCols = `id, title, description, image_url, gallery_json, client, category, completion_date, featured, created_at`

func (r *ProjectRepo) List(ctx context.Context, featuredOnly bool) ([]domain.Project, error) {
	q := `SELECT ` + projectCols + ` FROM projects`
	args := []any{}
	if featuredOnly {
		q += ` WHERE featured = ?`
		args = append(args, true)
	}
	q += ` ORDER BY created_at DESC`
	out := []domain.Project{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, storeErr("projects.list", err)
}

func (r *ProjectRepo) Get(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+projectCols+` FROM projects WHERE id = ?`), id)
	return p, storeErr("projects.get", err)
}

func (r *ProjectRepo) Insert(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO projects(`+projectCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?)
	`), p.ID, p.Title, p.Description, p.ImageURL, p.GalleryImages, p.Client, p.Category, p.CompletionDate, p.Featured, p.CreatedAt)
	return storeErr("projects.insert", err)
}

func (r *ProjectRepo) Update(ctx context.Context, id string, patch domain.ProjectPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+` = ?`)
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Client != nil {
		add("client", *patch.Client)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.CompletionDate != nil {
		add("completion_date", *patch.CompletionDate)
	}
	if patch.Featured != nil {
		add("featured", *patch.Featured)
	}
	if len(sets) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	args = append(args, id)
	return execOne(ctx, r.db, "projects.update", `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
}

func (r *ProjectRepo) SetGallery(ctx context.Context, id string, images domain.StringList) error {
	return execOne(ctx, r.db, "projects.gallery", `UPDATE projects SET gallery_json = ? WHERE id = ?`, images, id)
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, "projects.delete", `DELETE FROM projects WHERE id = ?`, id)
}

func (r *ProjectRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`)
	return n, storeErr("projects.count", err)
}
