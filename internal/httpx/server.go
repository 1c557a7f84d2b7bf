package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pratofeito/marmita-orders/internal/accounts"
	"github.com/pratofeito/marmita-orders/internal/cart"
	"github.com/pratofeito/marmita-orders/internal/catalog"
	"github.com/pratofeito/marmita-orders/internal/kitchen"
	"github.com/pratofeito/marmita-orders/internal/metrics"
	"github.com/pratofeito/marmita-orders/internal/orders"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type AccountService interface {
	RegisterCustomer(ctx context.Context, in accounts.CustomerInput) (*accounts.Customer, error)
	RegisterMerchant(ctx context.Context, in accounts.MerchantInput) (*accounts.Merchant, error)
	Authenticate(ctx context.Context, login, password string) (accounts.Account, error)
	Lookup(ctx context.Context, p accounts.Principal) (accounts.Account, error)
	UpdateProfile(ctx context.Context, p accounts.Principal, in accounts.ProfileInput) (*accounts.Customer, error)
}

type SessionStore interface {
	Create(ctx context.Context, p accounts.Principal) (string, error)
	Get(ctx context.Context, id string) (accounts.Principal, error)
	Destroy(ctx context.Context, id string) error
}

type CatalogService interface {
	Menu(ctx context.Context, category string) ([]catalog.Dish, error)
	Featured(ctx context.Context) ([]catalog.Dish, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*catalog.Dish, error)
	ListAll(ctx context.Context, p accounts.Principal) ([]catalog.Dish, error)
	Create(ctx context.Context, p accounts.Principal, in catalog.DishInput) (*catalog.Dish, error)
	Update(ctx context.Context, p accounts.Principal, id int64, in catalog.DishInput) (*catalog.Dish, error)
	SetAvailability(ctx context.Context, p accounts.Principal, id int64, available bool) error
	Delete(ctx context.Context, p accounts.Principal, id int64) error
}

type CartService interface {
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
	Save(ctx context.Context, sessionID string, c cart.Cart) error
	Add(ctx context.Context, sessionID string, dishID int64, qty int) (cart.Cart, error)
	Remove(ctx context.Context, sessionID string, index int) (cart.Cart, error)
	UpdateQuantities(ctx context.Context, sessionID string, qs []int) (cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type OrderService interface {
	PlaceOrder(ctx context.Context, customerID int64, c *cart.Cart, in orders.PlaceOrderInput) (*orders.Order, error)
	ListOrders(ctx context.Context, customerID int64) ([]orders.Order, error)
	GetOrderDetail(ctx context.Context, orderID, requesterID int64) (*orders.Detail, error)
}

type KitchenService interface {
	ListActive(ctx context.Context, p accounts.Principal) ([]orders.LineItem, error)
	Transition(ctx context.Context, p accounts.Principal, itemID int64, to orders.ItemStatus) (*orders.LineItem, error)
	OrderDetail(ctx context.Context, p accounts.Principal, orderID int64) (*orders.Detail, error)
	ComandaQR(ctx context.Context, p accounts.Principal, orderID int64) ([]byte, error)
	Board(ctx context.Context, p accounts.Principal) (kitchen.Board, error)
}

// Server holds the collaborators behind the HTTP API.
type Server struct {
	Service  string
	Accounts AccountService
	Sessions SessionStore
	Catalog  CatalogService
	Cart     CartService
	Orders   OrderService
	Kitchen  KitchenService
}

func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(metrics.Middleware(s.Service))
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.loadSession)

		r.Post("/auth/register", s.registerCustomer)
		r.Post("/auth/register-store", s.registerMerchant)
		r.Post("/auth/login", s.login)

		r.Get("/menu", s.menu)
		r.Get("/menu/featured", s.featured)
		r.Get("/menu/categories", s.categories)
		r.Get("/dishes/{id}", s.dish)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Post("/auth/logout", s.logout)
			r.Get("/profile", s.profile)
			r.Put("/profile", s.updateProfile)

			r.Route("/merchant/dishes", func(r chi.Router) {
				r.Get("/", s.merchantDishes)
				r.Post("/", s.createDish)
				r.Put("/{id}", s.updateDish)
				r.Delete("/{id}", s.deleteDish)
				r.Post("/{id}/availability", s.setAvailability)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.getCart)
				r.Delete("/", s.clearCart)
				r.Post("/items", s.addCartItem)
				r.Put("/items", s.updateCartItems)
				r.Delete("/items/{index}", s.removeCartItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Use(requireCustomer)
				r.Post("/", s.placeOrder)
				r.Get("/", s.listOrders)
				r.Get("/{id}", s.getOrder)
			})

			r.Route("/kitchen", func(r chi.Router) {
				r.Get("/items", s.kitchenItems)
				r.Post("/items/{id}/status", s.transitionItem)
				r.Get("/orders/{id}", s.comanda)
				r.Get("/orders/{id}/qrcode", s.comandaQR)
				r.Get("/board", s.kitchenBoard)
			})
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
	})
	return c.Handler(r)
}
