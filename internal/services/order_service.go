package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/log"
	"coopsite/internal/notify"
	"coopsite/internal/repos"
	"coopsite/internal/validate"
)

type OrderService struct {
	Carts  *CartService
	Orders *repos.OrderRepo
	Notify notify.Publisher
	Now    Clock
}

func NewOrderService(carts *CartService, orders *repos.OrderRepo, pub notify.Publisher) *OrderService {
	return &OrderService{Carts: carts, Orders: orders, Notify: pub}
}

func validCustomer(c domain.Customer) (domain.Customer, error) {
	var ok bool
	if c.Name, ok = validate.Name(c.Name); !ok {
		return c, apperr.Validation("name", "name is required")
	}
	if c.Surname, ok = validate.Name(c.Surname); !ok {
		return c, apperr.Validation("surname", "surname is required")
	}
	if c.Phone, ok = validate.Phone(c.Phone); !ok {
		return c, apperr.Validation("phone", "invalid phone number")
	}
	c.Email = strings.TrimSpace(c.Email)
	if c.Email != "" {
		if c.Email, ok = validate.Email(c.Email); !ok {
			return c, apperr.Validation("email", "invalid email")
		}
	}
	if c.Notes, ok = validate.Text(c.Notes, 1000); !ok {
		return c, apperr.Validation("notes", "notes too long")
	}
	return c, nil
}

// Submit turns the session cart into a pending order. The cart is cleared
// only once the order is stored.
func (s *OrderService) Submit(ctx context.Context, sessionID string, customer domain.Customer) (domain.Order, error) {
	customer, err := validCustomer(customer)
	if err != nil {
		return domain.Order{}, err
	}
	cart, err := s.Carts.Load(ctx, sessionID)
	if err != nil {
		return domain.Order{}, err
	}
	if cart.Empty() {
		return domain.Order{}, apperr.Validation("cart", "cart is empty")
	}
	items := cart.Snapshot()
	for _, it := range items {
		if it.ProductID() == "" {
			return domain.Order{}, apperr.Validation("cart", "cart line without product")
		}
	}

	o := domain.Order{
		ID:        uuid.NewString(),
		Customer:  customer,
		Items:     items,
		Total:     domain.Total(items),
		Status:    domain.StatusPending,
		CreatedAt: repos.Timestamp(s.Now.now()),
	}
	if err := s.Orders.Insert(ctx, o); err != nil {
		return domain.Order{}, err
	}
	if err := s.Carts.Clear(ctx, sessionID); err != nil {
		log.Error(nil, "cart_clear_failed", err, map[string]any{"order_id": o.ID})
	}
	publish(ctx, s.Notify, notify.NewEvent(notify.OrderCreated, o))
	return o, nil
}
