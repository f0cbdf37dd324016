package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yonasKu/sproutbook-api/internal/config"
	"github.com/yonasKu/sproutbook-api/internal/transport/http/handler"
	appmiddleware "github.com/yonasKu/sproutbook-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, applied to write endpoints.
	writeRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	entryH := handler.NewEntryHandler(deps.JournalSvc)
	recapH := handler.NewRecapHandler(deps.RecapRepo, deps.Orchestrator)
	notifH := handler.NewNotificationHandler(deps.NotificationSvc)
	deviceH := handler.NewDeviceHandler(deps.DeviceSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", handler.Health)

		r.With(writeRL.Limit).Post("/entries", entryH.Create)
		r.Get("/entries", entryH.List)
		r.With(writeRL.Limit).Post("/entries/{id}/media", entryH.AttachMedia)
		r.Delete("/entries/{id}/media", entryH.RemoveMedia)
		r.With(writeRL.Limit).Post("/children", entryH.CreateChild)
		r.Get("/children", entryH.ListChildren)

		r.Get("/recaps", recapH.List)
		r.Get("/recaps/{id}", recapH.Get)
		// Operator/cron trigger for a scheduled-style run.
		r.With(writeRL.Limit).Post("/recaps/batch/{period}", recapH.RunBatch)

		r.Get("/notifications", notifH.ListUnread)
		r.Get("/notifications/{id}", notifH.Get)
		r.Put("/notifications/{id}", notifH.MarkAsRead)

		r.With(writeRL.Limit).Post("/devices", deviceH.Register)
		r.Get("/devices", deviceH.List)
		r.Delete("/devices/{id}", deviceH.Delete)
	})

	return r
}
