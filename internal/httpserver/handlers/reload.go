package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
)

type reloadResponse struct {
	Reloaded int    `json:"reloaded"`
	Error    string `json:"error,omitempty"`
}

// Reload re-reads the persisted config of every known server.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Registry.ReloadAll(r.Context())
		if err != nil {
			d.Logger.Warn("manual reload finished with errors",
				logger.String("remote_ip", r.RemoteAddr),
				logger.Int("reloaded", n),
				logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, reloadResponse{Reloaded: n, Error: err.Error()})
			return
		}

		d.Logger.Info("manual reload triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr),
			logger.Int("reloaded", n))
		writeJSON(w, http.StatusOK, reloadResponse{Reloaded: n})
	}
}
