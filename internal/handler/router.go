package handler

import (
	"net/http"

	"clubsite-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Permissions a user can be granted for the admin sections.
const (
	PermOrders   = "orders"
	PermProducts = "products"
	PermRides    = "rides"
	PermAlbums   = "albums"
	PermSettings = "settings"
	PermUsers    = "users"
)

func NewRouter(h *Handler, limiter *middleware.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Authenticate(h.Users))
	r.Use(middleware.Logging(h.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(h.AllowedOrigins))
	if limiter != nil {
		r.Use(limiter.Handler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONNotFound(w)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})

		r.Get("/products", h.ListProducts)
		r.Get("/products/{slug}", h.GetProduct)
		r.Get("/categories", h.ListCategories)
		r.Get("/rides", h.ListRides)
		r.Post("/rides/{id}/participants", h.SignUp)
		r.Get("/albums", h.ListAlbums)
		r.Get("/site-config", h.GetSiteConfig)
		r.Post("/orders", h.Checkout)
		r.Get("/orders/{orderId}", h.OrderSummary)

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(PermOrders))
				r.Get("/orders", h.AdminListOrders)
				r.Put("/orders/{id}", h.AdminUpdateOrder)
				r.Patch("/orders/group/{orderId}/status", h.AdminUpdateOrderStatus)
				r.Patch("/orders/{id}/tracking", h.AdminUpdateTracking)
				r.Post("/orders/{id}/tracking/sent", h.AdminMarkTrackingSent)
				r.Patch("/orders/{id}/supplier", h.AdminSetSupplier)
				r.Delete("/orders/{id}", h.AdminDeleteOrder)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(PermProducts))
				r.Get("/products", h.AdminListProducts)
				r.Post("/products", h.AdminCreateProduct)
				r.Put("/products/{id}", h.AdminUpdateProduct)
				r.Patch("/products/{id}/toggle", h.AdminToggleProduct)
				r.Delete("/products/{id}", h.AdminDeleteProduct)

				r.Get("/categories", h.AdminListCategories)
				r.Post("/categories", h.AdminCreateCategory)
				r.Put("/categories/{id}", h.AdminUpdateCategory)
				r.Patch("/categories/{id}/toggle", h.AdminToggleCategory)
				r.Delete("/categories/{id}", h.AdminDeleteCategory)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(PermRides))
				r.Get("/rides", h.AdminListRides)
				r.Post("/rides", h.AdminCreateRide)
				r.Patch("/rides/{id}/toggle", h.AdminToggleRide)
				r.Delete("/rides/{id}", h.AdminDeleteRide)
				r.Get("/rides/{id}/participants", h.AdminListParticipants)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(PermAlbums))
				r.Get("/albums", h.AdminListAlbums)
				r.Post("/albums", h.AdminCreateAlbum)
				r.Put("/albums/{id}", h.AdminUpdateAlbum)
				r.Patch("/albums/{id}/toggle", h.AdminToggleAlbum)
				r.Delete("/albums/{id}", h.AdminDeleteAlbum)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(PermSettings))
				r.Put("/site-config", h.AdminSaveSiteConfig)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(PermUsers))
				r.Get("/users", h.AdminListUsers)
				r.Post("/users", h.AdminCreateUser)
				r.Delete("/users/{id}", h.AdminDeleteUser)
			})
		})
	})

	return r
}

func writeJSONNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
}
