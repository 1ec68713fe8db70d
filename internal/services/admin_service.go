package services

import (
	"context"
	"fmt"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/repos"
)

type AdminService struct {
	Bookings *repos.BookingRepo
	Orders   *repos.OrderRepo
	Messages *repos.MessageRepo
	Prods    *repos.ProductRepo
	Projects *repos.ProjectRepo
}

func NewAdminService(b *repos.BookingRepo, o *repos.OrderRepo, m *repos.MessageRepo, p *repos.ProductRepo, pr *repos.ProjectRepo) *AdminService {
	return &AdminService{Bookings: b, Orders: o, Messages: m, Prods: p, Projects: pr}
}

type Overview struct {
	PendingBookings int `json:"pending_bookings"`
	UnreadMessages  int `json:"unread_messages"`
	PendingOrders   int `json:"pending_orders"`
	Products        int `json:"products"`
	Projects        int `json:"projects"`
}

func (s *AdminService) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	var err error
	if ov.PendingBookings, err = s.Bookings.CountByStatus(ctx, domain.StatusPending); err != nil {
		return Overview{}, err
	}
	if ov.UnreadMessages, err = s.Messages.CountUnread(ctx); err != nil {
		return Overview{}, err
	}
	if ov.PendingOrders, err = s.Orders.CountByStatus(ctx, domain.StatusPending); err != nil {
		return Overview{}, err
	}
	if ov.Products, err = s.Prods.Count(ctx); err != nil {
		return Overview{}, err
	}
	if ov.Projects, err = s.Projects.Count(ctx); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// parseFilter maps "" and "all" to no filter.
func parseFilter(status string) (domain.Status, error) {
	if status == "" || status == "all" {
		return "", nil
	}
	st, ok := domain.ParseStatus(status)
	if !ok {
		return "", apperr.Validation("status", "unknown status")
	}
	return st, nil
}

func (s *AdminService) ListBookings(ctx context.Context, status string) ([]domain.Booking, error) {
	st, err := parseFilter(status)
	if err != nil {
		return nil, err
	}
	return s.Bookings.List(ctx, st)
}

func (s *AdminService) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	st, err := parseFilter(status)
	if err != nil {
		return nil, err
	}
	return s.Orders.List(ctx, st)
}

func checkTransition(op string, from, to domain.Status) error {
	switch {
	case from == to, from.CanTransition(to):
		return nil
	case from.Terminal():
		return apperr.Conflict(op, fmt.Sprintf("%s is final", from))
	}
	return apperr.Conflict(op, fmt.Sprintf("cannot move from %s to %s", from, to))
}

// SetBookingStatus moves a booking along the status machine. Setting the
// current status again is a no-op.
func (s *AdminService) SetBookingStatus(ctx context.Context, id, status string) (domain.Booking, error) {
	to, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Booking{}, apperr.Validation("status", "unknown status")
	}
	b, err := s.Bookings.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := checkTransition("bookings.status", b.Status, to); err != nil {
		return domain.Booking{}, err
	}
	if b.Status == to {
		return b, nil
	}
	if err := s.Bookings.UpdateStatus(ctx, id, to); err != nil {
		return domain.Booking{}, err
	}
	b.Status = to
	return b, nil
}

func (s *AdminService) SetOrderStatus(ctx context.Context, id, status string) (domain.Order, error) {
	to, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Order{}, apperr.Validation("status", "unknown status")
	}
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := checkTransition("orders.status", o.Status, to); err != nil {
		return domain.Order{}, err
	}
	if o.Status == to {
		return o, nil
	}
	if err := s.Orders.UpdateStatus(ctx, id, to); err != nil {
		return domain.Order{}, err
	}
	o.Status = to
	return o, nil
}
