package services

import (
	"context"

	"coopsite/internal/apperr"
	"coopsite/internal/repos"
)

// CartService persists one Cart per browser session id.
type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Load rebuilds the session cart with live product data.
func (s *CartService) Load(ctx context.Context, sessionID string) (*Cart, error) {
	rows, err := s.Carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c := &Cart{}
	for _, r := range rows {
		c.lines = append(c.lines, CartLine{Product: r.Product, Quantity: r.Qty})
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, sessionID string, c *Cart) error {
	recs := make([]repos.CartLineRecord, 0, len(c.lines))
	for _, l := range c.lines {
		recs = append(recs, repos.CartLineRecord{ProductID: l.Product.ID, Qty: l.Quantity})
	}
	return s.Carts.Save(ctx, sessionID, recs)
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return c.View(), nil
}

func (s *CartService) Add(ctx context.Context, sessionID, productID string) (CartView, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	if !p.InStock {
		return CartView{}, apperr.Validation("product_id", "product is out of stock")
	}
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	c.Add(p)
	if err := s.save(ctx, sessionID, c); err != nil {
		return CartView{}, err
	}
	return c.View(), nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, qty int) (CartView, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	c.UpdateQuantity(productID, qty)
	if err := s.save(ctx, sessionID, c); err != nil {
		return CartView{}, err
	}
	return c.View(), nil
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (CartView, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	c.Remove(productID)
	if err := s.save(ctx, sessionID, c); err != nil {
		return CartView{}, err
	}
	return c.View(), nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.Carts.Clear(ctx, sessionID)
}
