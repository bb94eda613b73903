package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/handlers"
)

func init() { Register(registerHealthChecks) }

func registerHealthChecks(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
	r.Get("/infra", handlers.Infra(d))
}
