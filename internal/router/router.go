package router

import (
	"net/http"
	"time"

	"tutorhub/internal/database"
	"tutorhub/internal/handlers/api"
	appmw "tutorhub/internal/middleware"
	"tutorhub/internal/response"
	"tutorhub/internal/services"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New builds the HTTP router with all routes and middleware.
func New(srvc *services.ServiceCollection, db *database.Manager, logger *zap.Logger) http.Handler {
	builder := response.NewBuilder(logger)

	users := api.NewUserHandler(srvc.Users, builder, logger)
	badges := api.NewBadgeHandler(srvc.Badges, srvc.BadgeCatalog, builder, logger)
	requests := api.NewRequestHandler(srvc.Requests, builder, logger)
	reviews := api.NewReviewHandler(srvc.Reviews, builder, logger)
	resources := api.NewResourceHandler(srvc.Resources, builder, logger)
	health := api.NewHealthHandler(db, srvc, builder, logger)

	r := chi.NewRouter()

	r.Use(appmw.RequestID)
	r.Use(appmw.Recovery(logger))
	r.Use(appmw.Logger(logger))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", health.Live)
	r.Get("/ready", health.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.Register)
			r.Get("/{identifier}", users.Get)
			r.Put("/{identifier}/profile", users.UpdateProfile)
			r.Get("/{identifier}/badges", badges.ListEarned)
		})

		r.Route("/badges", func(r chi.Router) {
			r.Get("/", badges.ListCatalog)
			r.Put("/", badges.UpsertRule)
			r.Post("/trigger", badges.Trigger)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requests.Send)
			r.Get("/{id}", requests.Get)
			r.Patch("/{id}/status", requests.UpdateStatus)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", reviews.Submit)
		})
		r.Get("/tutors/{username}/rating", reviews.TutorRating)
		r.Delete("/tutors/{username}/reviews/{studentID}", reviews.Delete)

		r.Route("/resources", func(r chi.Router) {
			r.Post("/", resources.Share)
			r.Post("/{id}/view", resources.View)
			r.Post("/{id}/download", resources.Download)
		})
	})

	return r
}
