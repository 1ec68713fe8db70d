package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/repos"
	"coopsite/internal/validate"
)

type PortfolioService struct {
	Projects *repos.ProjectRepo
	Now      Clock
}

func NewPortfolioService(projects *repos.ProjectRepo) *PortfolioService {
	return &PortfolioService{Projects: projects}
}

func (s *PortfolioService) ListProjects(ctx context.Context, featuredOnly bool) ([]domain.Project, error) {
	return s.Projects.List(ctx, featuredOnly)
}

func (s *PortfolioService) GetProject(ctx context.Context, id string) (domain.Project, error) {
	return s.Projects.Get(ctx, id)
}

type ProjectInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ImageURL       string   `json:"image_url"`
	GalleryImages  []string `json:"gallery_images"`
	Client         string   `json:"client"`
	Category       string   `json:"category"`
	CompletionDate string   `json:"completion_date"`
	Featured       bool     `json:"featured"`
}

func checkCompletionDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, ok := validate.Date(s)
	if !ok {
		return "", apperr.Validation("completion_date", "date must be YYYY-MM-DD")
	}
	return d.Format(validate.DateLayout), nil
}

func (s *PortfolioService) CreateProject(ctx context.Context, in ProjectInput) (domain.Project, error) {
	p := domain.Project{
		ID:        uuid.NewString(),
		Featured:  in.Featured,
		CreatedAt: repos.Timestamp(s.Now.now()),
	}
	var ok bool
	if p.Title, ok = validate.Name(in.Title); !ok {
		return domain.Project{}, apperr.Validation("title", "title is required")
	}
	if p.Description, ok = validate.Text(in.Description, 5000); !ok || p.Description == "" {
		return domain.Project{}, apperr.Validation("description", "description is required")
	}
	if p.ImageURL, ok = validate.ImageURL(in.ImageURL); !ok {
		return domain.Project{}, apperr.Validation("image_url", "invalid image url")
	}
	if p.Client, ok = validate.Text(in.Client, 100); !ok {
		return domain.Project{}, apperr.Validation("client", "client too long")
	}
	if p.Category, ok = validate.Text(in.Category, 60); !ok {
		return domain.Project{}, apperr.Validation("category", "category too long")
	}
	var err error
	if p.CompletionDate, err = checkCompletionDate(in.CompletionDate); err != nil {
		return domain.Project{}, err
	}
	if p.GalleryImages, err = NormalizeGallery(in.GalleryImages); err != nil {
		return domain.Project{}, err
	}
	if err := s.Projects.Insert(ctx, p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (s *PortfolioService) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error) {
	if patch.Title != nil {
		v, ok := validate.Name(*patch.Title)
		if !ok {
			return domain.Project{}, apperr.Validation("title", "title is required")
		}
		patch.Title = &v
	}
	if patch.Description != nil {
		v, ok := validate.Text(*patch.Description, 5000)
		if !ok || v == "" {
			return domain.Project{}, apperr.Validation("description", "description is required")
		}
		patch.Description = &v
	}
	if patch.ImageURL != nil {
		v, ok := validate.ImageURL(*patch.ImageURL)
		if !ok {
			return domain.Project{}, apperr.Validation("image_url", "invalid image url")
		}
		patch.ImageURL = &v
	}
	if patch.Client != nil {
		v, ok := validate.Text(*patch.Client, 100)
		if !ok {
			return domain.Project{}, apperr.Validation("client", "client too long")
		}
		patch.Client = &v
	}
	if patch.Category != nil {
		v, ok := validate.Text(*patch.Category, 60)
		if !ok {
			return domain.Project{}, apperr.Validation("category", "category too long")
		}
		patch.Category = &v
	}
	if patch.CompletionDate != nil {
		v, err := checkCompletionDate(*patch.CompletionDate)
		if err != nil {
			return domain.Project{}, err
		}
		patch.CompletionDate = &v
	}
	if err := s.Projects.Update(ctx, id, patch); err != nil {
		return domain.Project{}, err
	}
	return s.Projects.Get(ctx, id)
}

func (s *PortfolioService) DeleteProject(ctx context.Context, id string) error {
	return s.Projects.Delete(ctx, id)
}

// NormalizeGallery trims entries, drops blanks and repeats, and rejects
// anything that is not an image URL or site path.
func NormalizeGallery(images []string) (domain.StringList, error) {
	out := domain.StringList{}
	seen := map[string]bool{}
	for _, raw := range images {
		u, ok := validate.ImageURL(raw)
		if !ok {
			return nil, apperr.Validation("gallery_images", "invalid image url: "+strings.TrimSpace(raw))
		}
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out, nil
}

func (s *PortfolioService) SetGallery(ctx context.Context, id string, images []string) (domain.Project, error) {
	list, err := NormalizeGallery(images)
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.Projects.SetGallery(ctx, id, list); err != nil {
		return domain.Project{}, err
	}
	return s.Projects.Get(ctx, id)
}
