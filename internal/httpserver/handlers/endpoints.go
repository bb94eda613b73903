package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
)

type addEndpointRequest struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Response domain.Response `json:"response"`
	Delay    int             `json:"delay"`
}

type setErrorRequest struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type toggleErrorRequest struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Enabled *bool  `json:"enabled"`
}

type endpointResponse struct {
	Port     int             `json:"port"`
	URL      string          `json:"url"`
	Endpoint domain.Endpoint `json:"endpoint"`
	SavedTo  string          `json:"savedTo,omitempty"`
}

type removeResponse struct {
	Port   int    `json:"port"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

func AddEndpoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		var req addEndpointRequest
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, err)
			return
		}

		ep, err := domain.ValidateEndpoint(port, domain.NewEndpoint(domain.Method(req.Method), req.Path, req.Response, req.Delay))
		if err != nil {
			writeErr(w, err)
			return
		}

		ok, err := d.Registry.AddEndpoint(r.Context(), port, ep)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No running server found on port %d", port))
			return
		}

		writeJSON(w, http.StatusCreated, endpointResponse{
			Port:     port,
			URL:      mockserver.LocalURL(port) + ep.Path,
			Endpoint: ep,
			SavedTo:  d.Registry.Location(port),
		})
	}
}

func RemoveEndpoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		q := r.URL.Query()
		method, err := domain.ValidateRoute(port, q.Get("method"), q.Get("path"))
		if err != nil {
			writeErr(w, err)
			return
		}

		ok, err := d.Registry.RemoveEndpoint(r.Context(), port, string(method), q.Get("path"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No server found on port %d", port))
			return
		}
		writeJSON(w, http.StatusOK, removeResponse{Port: port, Method: string(method), Path: q.Get("path")})
	}
}

func SetEndpointError(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		var req setErrorRequest
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		method, err := domain.ValidateRoute(port, req.Method, req.Path)
		if err == nil {
			err = domain.ValidateErrorStatus(req.Status)
		}
		if err != nil {
			writeErr(w, err)
			return
		}

		ok, err := d.Registry.SetEndpointError(r.Context(), port, string(method), req.Path, req.Status, req.Message)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("Server not found on port %d or endpoint doesn't exist", port))
			return
		}
		writeEndpoint(w, d, port, method, req.Path)
	}
}

func ToggleEndpointError(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		port, err := portParam(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		var req toggleErrorRequest
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		method, err := domain.ValidateRoute(port, req.Method, req.Path)
		if err != nil {
			writeErr(w, err)
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}

		ok, err := d.Registry.ToggleEndpointError(r.Context(), port, string(method), req.Path, *req.Enabled)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("Server not found on port %d, endpoint doesn't exist, or no error response configured", port))
			return
		}
		writeEndpoint(w, d, port, method, req.Path)
	}
}

// writeEndpoint answers with the current state of one endpoint after an edit.
func writeEndpoint(w http.ResponseWriter, d deps.Deps, port int, method domain.Method, path string) {
	st, _ := d.Registry.Status(port)
	for _, ep := range st.Endpoints {
		if ep.Matches(string(method), path) {
			writeJSON(w, http.StatusOK, endpointResponse{
				Port:     port,
				URL:      mockserver.LocalURL(port) + path,
				Endpoint: ep,
				SavedTo:  d.Registry.Location(port),
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("endpoint %s %s not found", method, path))
}
