package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/repos"
	"coopsite/internal/services"
)

type backoffice struct {
	admin     *services.AdminService
	bookings  *services.BookingService
	messages  *services.MessageService
	catalog   *services.CatalogService
	portfolio *services.PortfolioService
}

func newBackoffice(t *testing.T) backoffice {
	db := memdb(t)
	br, or, mr := repos.NewBookingRepo(db), repos.NewOrderRepo(db), repos.NewMessageRepo(db)
	pr, prj := repos.NewProductRepo(db), repos.NewProjectRepo(db)
	bo := backoffice{
		admin:     services.NewAdminService(br, or, mr, pr, prj),
		bookings:  services.NewBookingService(br, nil),
		messages:  services.NewMessageService(mr, nil),
		catalog:   services.NewCatalogService(pr),
		portfolio: services.NewPortfolioService(prj),
	}
	bo.bookings.Now = fixedClock()
	return bo
}

func TestAdmin_BookingStatusMachine(t *testing.T) {
	bo := newBackoffice(t)
	ctx := context.Background()

	b, err := bo.bookings.Submit(ctx, validBooking("09:00 - 10:00"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bo.admin.SetBookingStatus(ctx, b.ID, "completed"); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("pending -> completed must be refused, got %v", err)
	}
	for _, st := range []string{"confirmed", "pending", "confirmed", "completed"} {
		got, err := bo.admin.SetBookingStatus(ctx, b.ID, st)
		if err != nil {
			t.Fatalf("-> %s: %v", st, err)
		}
		if string(got.Status) != st {
			t.Fatalf("want %s, got %s", st, got.Status)
		}
	}
	_, err = bo.admin.SetBookingStatus(ctx, b.ID, "cancelled")
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindConflict || ae.Msg != "completed is final" {
		t.Fatalf("completed is terminal, got %v", err)
	}
	if _, err := bo.admin.SetBookingStatus(ctx, b.ID, "completed"); err != nil {
		t.Fatalf("same status on a final booking is a no-op: %v", err)
	}
	if _, err := bo.admin.SetBookingStatus(ctx, b.ID, "archived"); apperr.FieldOf(err) != "status" {
		t.Fatalf("unknown status: want validation, got %v", err)
	}
	if _, err := bo.admin.SetBookingStatus(ctx, "ghost", "confirmed"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unknown id: want not found, got %v", err)
	}
}

func TestAdmin_CancelFreesSlot(t *testing.T) {
	bo := newBackoffice(t)
	ctx := context.Background()

	b, err := bo.bookings.Submit(ctx, validBooking("11:00 - 12:00"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bo.admin.SetBookingStatus(ctx, b.ID, "cancelled"); err != nil {
		t.Fatal(err)
	}
	slots, err := bo.bookings.BookedSlots(ctx, "2025-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Fatalf("cancelled booking still holds %v", slots)
	}
	if _, err := bo.bookings.Submit(ctx, validBooking("11:00 - 12:00")); err != nil {
		t.Fatalf("freed slot should be bookable: %v", err)
	}
	list, err := bo.admin.ListBookings(ctx, "cancelled")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("unexpected cancelled list %+v", list)
	}
}

func TestAdmin_Overview(t *testing.T) {
	bo := newBackoffice(t)
	ctx := context.Background()

	if _, err := bo.bookings.Submit(ctx, validBooking("15:00 - 16:00")); err != nil {
		t.Fatal(err)
	}
	m, err := bo.messages.Send(ctx, services.MessageRequest{Name: "Sara", Email: "sara@example.com", Message: "Ciao"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bo.messages.Send(ctx, services.MessageRequest{Name: "Ugo", Email: "ugo@example.com", Message: "Info"}); err != nil {
		t.Fatal(err)
	}
	if err := bo.messages.SetRead(ctx, m.ID, true); err != nil {
		t.Fatal(err)
	}

	ov, err := bo.admin.Overview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := services.Overview{PendingBookings: 1, UnreadMessages: 1, PendingOrders: 0, Products: 3, Projects: 1}
	if ov != want {
		t.Fatalf("want %+v, got %+v", want, ov)
	}
}

func TestMessages_ValidationAndBulk(t *testing.T) {
	bo := newBackoffice(t)
	ctx := context.Background()

	if _, err := bo.messages.Send(ctx, services.MessageRequest{Name: "Sara", Email: "nope", Message: "x"}); apperr.FieldOf(err) != "email" {
		t.Fatalf("want email validation error, got %v", err)
	}
	if _, err := bo.messages.Send(ctx, services.MessageRequest{Name: "Sara", Email: "sara@example.com"}); apperr.FieldOf(err) != "message" {
		t.Fatalf("want message validation error, got %v", err)
	}
	if _, err := bo.messages.MarkAllRead(ctx, nil); apperr.FieldOf(err) != "ids" {
		t.Fatalf("empty selection: want validation, got %v", err)
	}

	var ids []string
	for _, n := range []string{"Anna", "Bruno"} {
		m, err := bo.messages.Send(ctx, services.MessageRequest{Name: n, Email: "x@example.com", Message: "hello"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, m.ID)
	}
	n, err := bo.messages.ArchiveAll(ctx, ids)
	if err != nil || n != 2 {
		t.Fatalf("archive all: n=%d err=%v", n, err)
	}
	inbox, err := bo.messages.List(ctx, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(inbox) != 0 {
		t.Fatalf("archived messages still in inbox: %+v", inbox)
	}
}

func TestCatalog_CreateUpdateDelete(t *testing.T) {
	bo := newBackoffice(t)
	ctx := context.Background()

	if _, err := bo.catalog.CreateProduct(ctx, services.ProductInput{Name: "Hoe", Price: decimal.NewFromInt(-1)}); apperr.FieldOf(err) != "price" {
		t.Fatalf("negative price accepted: %v", err)
	}
	p, err := bo.catalog.CreateProduct(ctx, services.ProductInput{Name: "Hoe", Price: decimal.RequireFromString("12.00"), Category: "tools"})
	if err != nil {
		t.Fatal(err)
	}
	if !p.InStock {
		t.Fatal("new products default to in stock")
	}
	name := "Garden hoe"
	got, err := bo.catalog.UpdateProduct(ctx, p.ID, domain.ProductPatch{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != name || got.Category != "tools" || !got.Price.Equal(p.Price) {
		t.Fatalf("partial update wrong: %+v", got)
	}
	cats, err := bo.catalog.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 3 {
		t.Fatalf("want 3 categories, got %v", cats)
	}
	if err := bo.catalog.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := bo.catalog.GetProduct(ctx, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("want not found after delete, got %v", err)
	}
}

func TestPortfolio_Gallery(t *testing.T) {
	bo := newBackoffice(t)
	ctx := context.Background()

	p, err := bo.portfolio.SetGallery(ctx, "courtyard-garden", []string{" /media/a.jpg ", "", "/media/a.jpg", "https://cdn.example.com/b.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	want := domain.StringList{"/media/a.jpg", "https://cdn.example.com/b.jpg"}
	if len(p.GalleryImages) != 2 || p.GalleryImages[0] != want[0] || p.GalleryImages[1] != want[1] {
		t.Fatalf("want %v, got %v", want, p.GalleryImages)
	}
	if _, err := bo.portfolio.SetGallery(ctx, "courtyard-garden", []string{"javascript:alert(1)"}); apperr.FieldOf(err) != "gallery_images" {
		t.Fatalf("bad url accepted: %v", err)
	}

	pr, err := bo.portfolio.CreateProject(ctx, services.ProjectInput{Title: "Roof garden", Description: "Green roof", CompletionDate: "2025-03-01"})
	if err != nil {
		t.Fatal(err)
	}
	if pr.GalleryImages == nil {
		t.Fatal("gallery should be an empty list, not nil")
	}
	featured, err := bo.portfolio.ListProjects(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(featured) != 1 || featured[0].ID != "courtyard-garden" {
		t.Fatalf("unexpected featured projects %+v", featured)
	}
}
