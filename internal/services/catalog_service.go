package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/repos"
	"coopsite/internal/validate"
)

type CatalogService struct {
	Prods *repos.ProductRepo
	Now   Clock
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) ListProducts(ctx context.Context, f repos.ProductFilter) ([]domain.Product, error) {
	if f.Search != "" {
		q, ok := validate.Q(f.Search)
		if !ok {
			return nil, apperr.Validation("q", "invalid search")
		}
		f.Search = q
	}
	f.Category = strings.TrimSpace(f.Category)
	return s.Prods.List(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.Prods.Categories(ctx)
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	InStock     *bool           `json:"in_stock"`
	Featured    bool            `json:"featured"`
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p := domain.Product{
		ID:        uuid.NewString(),
		Price:     in.Price,
		InStock:   in.InStock == nil || *in.InStock,
		Featured:  in.Featured,
		CreatedAt: repos.Timestamp(s.Now.now()),
	}
	var ok bool
	if p.Name, ok = validate.Name(in.Name); !ok {
		return domain.Product{}, apperr.Validation("name", "name is required")
	}
	if p.Description, ok = validate.Text(in.Description, 2000); !ok {
		return domain.Product{}, apperr.Validation("description", "description too long")
	}
	if !validate.Price(in.Price) {
		return domain.Product{}, apperr.Validation("price", "price must not be negative")
	}
	if p.ImageURL, ok = validate.ImageURL(in.ImageURL); !ok {
		return domain.Product{}, apperr.Validation("image_url", "invalid image url")
	}
	if p.Category, ok = validate.Text(in.Category, 60); !ok {
		return domain.Product{}, apperr.Validation("category", "category too long")
	}
	if err := s.Prods.Insert(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// UpdateProduct applies the non-nil fields of patch and returns the result.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if patch.Name != nil {
		v, ok := validate.Name(*patch.Name)
		if !ok {
			return domain.Product{}, apperr.Validation("name", "name is required")
		}
		patch.Name = &v
	}
	if patch.Description != nil {
		v, ok := validate.Text(*patch.Description, 2000)
		if !ok {
			return domain.Product{}, apperr.Validation("description", "description too long")
		}
		patch.Description = &v
	}
	if patch.Price != nil && !validate.Price(*patch.Price) {
		return domain.Product{}, apperr.Validation("price", "price must not be negative")
	}
	if patch.ImageURL != nil {
		v, ok := validate.ImageURL(*patch.ImageURL)
		if !ok {
			return domain.Product{}, apperr.Validation("image_url", "invalid image url")
		}
		patch.ImageURL = &v
	}
	if patch.Category != nil {
		v, ok := validate.Text(*patch.Category, 60)
		if !ok {
			return domain.Product{}, apperr.Validation("category", "category too long")
		}
		patch.Category = &v
	}
	if err := s.Prods.Update(ctx, id, patch); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.Prods.Delete(ctx, id)
}
