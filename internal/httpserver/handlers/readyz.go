package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready   bool `json:"ready"`
	Servers int  `json:"servers"`
	Running int  `json:"running"`
}

// Readyz reports ready once the registry exists and the store answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: d.Registry != nil}
		if d.Registry != nil {
			for _, st := range d.Registry.List() {
				resp.Servers++
				if st.Running {
					resp.Running++
				}
			}
		}
		if resp.Ready {
			resp.Ready = checkStore(r.Context(), d).OK
		}

		code := http.StatusOK
		if !resp.Ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}
