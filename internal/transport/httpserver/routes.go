package httpserver

import (
	"net/http"
	"time"

	"coinvest-go/internal/config"
	"coinvest-go/internal/transport/httpserver/handler"
	authmw "coinvest-go/internal/transport/httpserver/middleware"
	"coinvest-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		auth := authmw.NewSupabaseAuth(cfg.Auth, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)

			c := handlers.Communities
			r.Route("/communities", func(r chi.Router) {
				r.Get("/", c.ListCommunities)
				r.Post("/", c.CreateCommunity)

				r.Delete("/members/{memberId}", c.RemoveMember)
				r.Patch("/members/{memberId}", c.UpdateMemberRole)

				r.Get("/orders/{orderId}", c.GetOrder)
				r.Patch("/orders/{orderId}", c.UpdateOrderStatus)
				r.Get("/orders/{orderId}/votes", c.ListVotes)
				r.Post("/orders/{orderId}/vote", c.CastVote)
				r.Post("/orders/{orderId}/execute", c.ExecuteOrder)

				r.Get("/{id}", c.GetCommunity)
				r.Patch("/{id}", c.UpdateCommunity)
				r.Delete("/{id}", c.DeleteCommunity)

				r.Get("/{id}/members", c.ListMembers)
				r.Post("/{id}/members", c.AddMember)
				r.Post("/{id}/transfer-admin", c.TransferAdmin)

				r.Get("/{id}/wallet", c.GetWallet)
				r.Get("/{id}/positions", c.ListPositions)

				r.Get("/{id}/orders", c.ListOrders)
				r.Post("/{id}/orders", c.CreateOrder)

				r.Get("/{id}/contributions", c.ListContributions)
				r.Get("/{id}/contributions/me", c.ListMyContributions)
				r.Post("/{id}/contributions", c.RecordContribution)

				r.Get("/{id}/my-share", c.MyShare)
				r.Post("/{id}/withdraw", c.Withdraw)
			})
		})
	})

	return r
}
