package seed

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
)

func TestMapServer(t *testing.T) {
	eps, err := NewMapper().MapServer(Server{
		Port: 9001,
		Endpoints: []Endpoint{
			{Method: "get", Path: "/ping", Body: map[string]interface{}{"ok": true}},
			{Method: "DELETE", Path: "/x", Status: 204, Error: &ErrorOverride{Status: 500, Message: "m", Enabled: true}},
		},
	})
	if err != nil {
		t.Fatalf("MapServer() error = %v", err)
	}
	if len(eps) != 2 {
		t.Fatalf("MapServer() = %d endpoints", len(eps))
	}
	if eps[0].Method != domain.MethodGet || eps[0].Response.Status != 200 || string(eps[0].Response.Body) != `{"ok":true}` {
		t.Errorf("first endpoint = %+v", eps[0])
	}
	if eps[0].ID == "" || eps[0].ID == eps[1].ID {
		t.Error("endpoints need distinct ids")
	}
	if !eps[1].ErrorEnabled() || eps[1].ErrorResponse.Status != 500 {
		t.Errorf("override = %+v", eps[1].ErrorResponse)
	}
}

func TestMapServerInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   Server
	}{
		{name: "port", in: Server{Port: 80}},
		{name: "method", in: Server{Port: 9001, Endpoints: []Endpoint{{Method: "TRACE", Path: "/"}}}},
		{name: "path", in: Server{Port: 9001, Endpoints: []Endpoint{{Method: "GET", Path: "nope"}}}},
		{name: "error status", in: Server{Port: 9001, Endpoints: []Endpoint{{Method: "GET", Path: "/", Error: &ErrorOverride{Status: 302}}}}},
		{name: "body", in: Server{Port: 9001, Endpoints: []Endpoint{{Method: "GET", Path: "/", Body: map[interface{}]interface{}{1: "x"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapper().MapServer(tt.in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("MapServer() error = %v, want ErrValidation", err)
			}
		})
	}
}
