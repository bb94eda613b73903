package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
)

type serversResponse struct {
	Servers []mockserver.ServerStatus `json:"servers"`
}

type stopResponse struct {
	Port    int  `json:"port"`
	Stopped bool `json:"stopped"`
}

func ListServers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, serversResponse{Servers: d.Registry.List()})
	}
}

func GetServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}

		st, ok := d.Registry.Status(port)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No server found on port %d", port))
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func StartServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}

		st, err := d.Registry.Start(r.Context(), port)
		if err != nil {
			d.Logger.Warn("start via admin API failed", logger.Int("port", port), logger.Error(err))
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

func StopServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}

		if !d.Registry.Stop(r.Context(), port) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No running server found on port %d", port))
			return
		}
		writeJSON(w, http.StatusOK, stopResponse{Port: port, Stopped: true})
	}
}

func ReloadServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}

		ok, err := d.Registry.Reload(r.Context(), port)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No server found on port %d", port))
			return
		}

		st, _ := d.Registry.Status(port)
		writeJSON(w, http.StatusOK, st)
	}
}
