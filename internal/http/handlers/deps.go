package handlers

import (
	"github.com/jmoiron/sqlx"

	"coopsite/internal/config"
	"coopsite/internal/notify"
	"coopsite/internal/repos"
	"coopsite/internal/services"
)

type Deps struct {
	AuthSvc *services.AuthService

	BookingHandler *BookingHandler
	MessageHandler *MessageHandler
	ProductHandler *ProductHandler
	ProjectHandler *ProjectHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	AuthHandler    *AuthHandler
	AdminHandler   *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, pub notify.Publisher) *Deps {
	if pub == nil {
		pub = notify.Nop{}
	}
	bookingRepo := repos.NewBookingRepo(db)
	msgRepo := repos.NewMessageRepo(db)
	prodRepo := repos.NewProductRepo(db)
	projRepo := repos.NewProjectRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.SessionTTL)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	bookingSvc := services.NewBookingService(bookingRepo, pub)
	bookingSvc.Loc = cfg.Location()

	return &Deps{
		AuthSvc:        authSvc,
		BookingHandler: &BookingHandler{Bookings: bookingSvc},
		MessageHandler: &MessageHandler{Messages: services.NewMessageService(msgRepo, pub)},
		ProductHandler: &ProductHandler{Catalog: services.NewCatalogService(prodRepo)},
		ProjectHandler: &ProjectHandler{Portfolio: services.NewPortfolioService(projRepo)},
		CartHandler:    &CartHandler{Cart: cartSvc, CookieSecure: cfg.CookieSecure},
		OrderHandler:   &OrderHandler{Order: services.NewOrderService(cartSvc, orderRepo, pub), CookieSecure: cfg.CookieSecure},
		AuthHandler:    &AuthHandler{Auth: authSvc, CookieSecure: cfg.CookieSecure},
		AdminHandler:   &AdminHandler{Admin: services.NewAdminService(bookingRepo, orderRepo, msgRepo, prodRepo, projRepo)},
	}
}
