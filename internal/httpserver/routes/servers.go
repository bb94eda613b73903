package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/handlers"
)

// Bodies are JSON only, bodiless calls (start, stop, delete) pass through.
func init() { Register(registerServers, middleware.AllowContentType("application/json")) }

func registerServers(r chi.Router, d deps.Deps) {
	r.Route("/api/servers", func(r chi.Router) {
		r.Get("/", handlers.ListServers(d))

		r.Route("/{port}", func(r chi.Router) {
			r.Get("/", handlers.GetServer(d))
			r.Post("/start", handlers.StartServer(d))
			r.Post("/stop", handlers.StopServer(d))
			r.Post("/reload", handlers.ReloadServer(d))

			r.Post("/endpoints", handlers.AddEndpoint(d))
			r.Delete("/endpoints", handlers.RemoveEndpoint(d))
			r.Put("/endpoints/error", handlers.SetEndpointError(d))
			r.Patch("/endpoints/error", handlers.ToggleEndpointError(d))
		})
	})
}
