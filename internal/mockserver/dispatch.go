package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/mw"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
)

const maxRequestBody = 1 << 20

// newRouter builds the handler of one mock server: a single catch-all route
// that consults the live route table on every request.
func newRouter(port int, table *domain.RouteTable, loggerClient logger.Logger) http.Handler {
	d := &dispatcher{
		port:   port,
		table:  table,
		logger: loggerClient,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(mw.Log(loggerClient, "mock_request", logger.Int("port", port)))
	r.Use(mw.Recover(loggerClient))
	r.Use(mw.CORS())
	r.Use(requireValidJSON)

	r.Handle("/*", d)
	r.NotFound(d.ServeHTTP)
	r.MethodNotAllowed(d.ServeHTTP)

	return r
}

type dispatcher struct {
	port   int
	table  *domain.RouteTable
	logger logger.Logger
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	if method == http.MethodHead {
		method = http.MethodGet
	}

	ep, ok := d.table.Find(method, r.URL.Path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
		return
	}

	if ep.Delay > 0 {
		if !sleepCtx(r.Context(), time.Duration(ep.Delay)*time.Millisecond) {
			d.logger.Debug("client went away during delay",
				logger.Int("port", d.port),
				logger.String("path", r.URL.Path))
			return
		}
		// Edits made during the delay apply; a removed endpoint still answers with its snapshot.
		if cur, ok := d.table.Find(method, r.URL.Path); ok {
			ep = cur
		}
	}

	if ep.ErrorEnabled() {
		override := ep.ErrorResponse
		if !validStatus(override.Status) {
			d.fail(w, r, fmt.Errorf("invalid error status %d", override.Status))
			return
		}
		writeJSONError(w, override.Status, override.Message)
		return
	}

	if err := writeResponse(w, ep.Response); err != nil {
		d.fail(w, r, err)
	}
}

func (d *dispatcher) fail(w http.ResponseWriter, r *http.Request, err error) {
	d.logger.Warn("failed to build mock response",
		logger.Int("port", d.port),
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Error(err))
	mw.WriteInternalError(w)
}

// writeResponse validates everything before touching w so a failure can still become a clean 500.
func writeResponse(w http.ResponseWriter, resp domain.Response) error {
	status := resp.Status
	if status == 0 {
		status = domain.DefaultStatus
	}
	if !validStatus(status) {
		return fmt.Errorf("invalid response status %d", status)
	}

	body := resp.Body
	if len(bytes.TrimSpace(body)) == 0 {
		body = json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return fmt.Errorf("failed to serialize response body: %w", err)
	}

	h := w.Header()
	for k, v := range resp.Headers {
		h.Set(k, v)
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	// Bodies on 204/304 are refused by net/http, that is fine.
	_, _ = w.Write(buf.Bytes())
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	data, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		mw.WriteInternalError(w)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func validStatus(status int) bool {
	return status >= domain.MinStatus && status <= domain.MaxStatus
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// requireValidJSON rejects malformed JSON request bodies. Bodies are never used for matching.
func requireValidJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 || !isJSONContent(r.Header.Get("Content-Type")) {
			next.ServeHTTP(w, r)
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Unable to read request body")
			return
		}
		if len(data) > maxRequestBody {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
			writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(data))
		next.ServeHTTP(w, r)
	})
}

func isJSONContent(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
