package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/notify"
	"coopsite/internal/repos"
	"coopsite/internal/validate"
)

type BookingService struct {
	Bookings *repos.BookingRepo
	Notify   notify.Publisher
	Now      Clock
	// Loc is the business time zone that decides which day is today; nil is UTC.
	Loc *time.Location
}

func NewBookingService(bookings *repos.BookingRepo, pub notify.Publisher) *BookingService {
	return &BookingService{Bookings: bookings, Notify: pub}
}

type BookingRequest struct {
	Name     string `json:"name" form:"name"`
	Surname  string `json:"surname" form:"surname"`
	Phone    string `json:"phone" form:"phone"`
	Email    string `json:"email" form:"email"`
	Date     string `json:"date" form:"date"`
	TimeSlot string `json:"time_slot" form:"time_slot"`
	Notes    string `json:"notes" form:"notes"`
}

type SlotAvailability struct {
	Slot   domain.TimeSlot `json:"slot"`
	Booked bool            `json:"booked"`
}

func parseDay(s string) (string, error) {
	d, ok := validate.Date(s)
	if !ok {
		return "", apperr.Validation("date", "date must be YYYY-MM-DD")
	}
	return d.Format(validate.DateLayout), nil
}

// BookedSlots lists the slots held by non-cancelled bookings on date, in
// calendar order.
func (s *BookingService) BookedSlots(ctx context.Context, date string) ([]domain.TimeSlot, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	slots, err := s.Bookings.BookedSlots(ctx, day)
	if err != nil {
		return nil, err
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Index() < slots[j].Index() })
	return slots, nil
}

func (s *BookingService) Availability(ctx context.Context, date string) ([]SlotAvailability, error) {
	booked, err := s.BookedSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[domain.TimeSlot]bool, len(booked))
	for _, b := range booked {
		taken[b] = true
	}
	out := make([]SlotAvailability, 0, len(domain.TimeSlots))
	for _, ts := range domain.TimeSlots {
		out = append(out, SlotAvailability{Slot: ts, Booked: taken[ts]})
	}
	return out, nil
}

// Submit books a call. Calls are taken on weekdays from today on. Slot
// availability is advisory: a slot already held by a live booking is
// accepted again and left for staff to reconcile.
func (s *BookingService) Submit(ctx context.Context, req BookingRequest) (domain.Booking, error) {
	if strings.TrimSpace(req.Date) == "" {
		return domain.Booking{}, apperr.Validation("date", "date is required")
	}
	if strings.TrimSpace(req.TimeSlot) == "" {
		return domain.Booking{}, apperr.Validation("time_slot", "time slot is required")
	}
	day, ok := validate.Date(req.Date)
	if !ok {
		return domain.Booking{}, apperr.Validation("date", "date must be YYYY-MM-DD")
	}
	slot, ok := domain.ParseTimeSlot(strings.TrimSpace(req.TimeSlot))
	if !ok {
		return domain.Booking{}, apperr.Validation("time_slot", "unknown time slot")
	}
	loc := s.Loc
	if loc == nil {
		loc = time.UTC
	}
	now := s.Now.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return domain.Booking{}, apperr.Validation("date", "date is in the past")
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return domain.Booking{}, apperr.Validation("date", "calls are not booked on weekends")
	}

	name, ok := validate.Name(req.Name)
	if !ok {
		return domain.Booking{}, apperr.Validation("name", "name is required")
	}
	surname, ok := validate.Name(req.Surname)
	if !ok {
		return domain.Booking{}, apperr.Validation("surname", "surname is required")
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok {
		return domain.Booking{}, apperr.Validation("phone", "invalid phone number")
	}
	email := strings.TrimSpace(req.Email)
	if email != "" {
		if email, ok = validate.Email(email); !ok {
			return domain.Booking{}, apperr.Validation("email", "invalid email")
		}
	}
	notes, ok := validate.Text(req.Notes, 1000)
	if !ok {
		return domain.Booking{}, apperr.Validation("notes", "notes too long")
	}

	b := domain.Booking{
		ID:        uuid.NewString(),
		Name:      name,
		Surname:   surname,
		Phone:     phone,
		Email:     email,
		Date:      day.Format(validate.DateLayout),
		TimeSlot:  slot,
		Notes:     notes,
		Status:    domain.StatusPending,
		CreatedAt: repos.Timestamp(now),
	}
	if err := s.Bookings.Insert(ctx, b); err != nil {
		return domain.Booking{}, err
	}
	publish(ctx, s.Notify, notify.NewEvent(notify.BookingCreated, b))
	return b, nil
}
