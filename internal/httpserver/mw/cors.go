package mw

import (
	"net/http"

	"github.com/rs/cors"
)

var corsAllowedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPatch,
	http.MethodPost,
	http.MethodDelete,
}

// CORS allows any origin and any requested header. Preflight requests are
// answered with 204 and never reach the router.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       corsAllowedMethods,
		AllowedHeaders:       []string{"*"},
		OptionsSuccessStatus: http.StatusNoContent,
	}).Handler
}
