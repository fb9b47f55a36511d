package handlers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"glowcandles/internal/config"
	"glowcandles/internal/relay"
	"glowcandles/internal/repos"
	"glowcandles/internal/services"
	"glowcandles/internal/token"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	PaymentHandler *PaymentHandler
	AdminHandler   *AdminHandler
	EventsHandler  *EventsHandler
}

// NewDeps wires repositories, services and handlers. events receives
// committed order lifecycle events; hub backs the admin SSE stream.
func NewDeps(db *sqlx.DB, cfg config.Config, events relay.Publisher, hub *relay.Hub, log *zap.Logger) *Deps {
	if log == nil {
		log = zap.NewNop()
	}
	store := repos.NewStore(db)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	authSvc := services.NewAuthService(store, issuer, log.Named("auth"))
	catalogSvc := services.NewCatalogService(store.Products)
	cartSvc := services.NewCartService(store)
	orderSvc := services.NewOrderService(store, events, log.Named("orders"), cfg.GuestAdHocProducts)
	paymentSvc := services.NewPaymentService(store, events, log.Named("payments"), cfg.PaymentSecret)
	adminSvc := services.NewAdminService(store, log.Named("admin"))

	return &Deps{
		Auth:           authSvc,
		AuthHandler:    &AuthHandler{Auth: authSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		OrderHandler:   &OrderHandler{Order: orderSvc},
		PaymentHandler: &PaymentHandler{Payments: paymentSvc},
		AdminHandler:   &AdminHandler{Admin: adminSvc},
		EventsHandler:  &EventsHandler{Hub: hub},
	}
}
