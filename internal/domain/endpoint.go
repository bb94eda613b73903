package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Method is an HTTP verb a mock endpoint can answer.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// SupportedMethods lists the verbs accepted by the validation boundary, in display order.
var SupportedMethods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// Endpoint is one mocked route of a server.
//
// The JSON shape is the on-disk format of the per-port config files,
// so field names must stay stable.
type Endpoint struct {
	// ID is assigned once at creation and never reused.
	ID string `json:"id"`

	Method Method `json:"method"`

	// Path is matched literally against the request path.
	Path string `json:"path"`

	Response Response `json:"response"`

	// Delay defers the response by that many milliseconds (0 = none).
	Delay int `json:"delay,omitempty"`

	// ErrorResponse is nil when no override was ever configured.
	ErrorResponse *ErrorOverride `json:"errorResponse,omitempty"`
}

// Response is the canned answer of an endpoint.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body"`
}

// ErrorOverride forces an endpoint to answer {"error": Message} at Status while Enabled.
type ErrorOverride struct {
	Enabled bool   `json:"enabled"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// PersistedConfig is the durable form of one server's route table.
type PersistedConfig struct {
	Port      int        `json:"port"`
	Endpoints []Endpoint `json:"endpoints"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewEndpoint builds an endpoint with a fresh ID.
func NewEndpoint(method Method, path string, resp Response, delay int) Endpoint {
	return Endpoint{
		ID:       uuid.NewString(),
		Method:   method,
		Path:     path,
		Response: resp,
		Delay:    delay,
	}
}

// NormalizeMethod upper-cases a verb for comparisons.
func NormalizeMethod(m string) Method {
	return Method(strings.ToUpper(strings.TrimSpace(m)))
}

// Matches reports whether the endpoint answers method+path.
// Method comparison is case-insensitive, path comparison is exact.
func (e Endpoint) Matches(method, path string) bool {
	return NormalizeMethod(string(e.Method)) == NormalizeMethod(method) && e.Path == path
}

// ErrorEnabled reports whether dispatch must answer with the override.
func (e Endpoint) ErrorEnabled() bool {
	return e.ErrorResponse != nil && e.ErrorResponse.Enabled
}

// Clone returns a deep copy so callers never share maps or buffers with a table.
func (e Endpoint) Clone() Endpoint {
	out := e
	if e.Response.Headers != nil {
		out.Response.Headers = make(map[string]string, len(e.Response.Headers))
		for k, v := range e.Response.Headers {
			out.Response.Headers[k] = v
		}
	}
	if e.Response.Body != nil {
		out.Response.Body = append(json.RawMessage(nil), e.Response.Body...)
	}
	if e.ErrorResponse != nil {
		override := *e.ErrorResponse
		out.ErrorResponse = &override
	}
	return out
}
