package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
)

type fakeRegistry struct {
	started map[int]bool
	added   map[int][]domain.Endpoint
	failOn  int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{started: map[int]bool{}, added: map[int][]domain.Endpoint{}}
}

func (f *fakeRegistry) Start(_ context.Context, port int) (mockserver.ServerStatus, error) {
	if port == f.failOn {
		return mockserver.ServerStatus{}, errors.New("address already in use")
	}
	if f.started[port] {
		return mockserver.ServerStatus{}, mockserver.ErrAlreadyRunning
	}
	f.started[port] = true
	return mockserver.ServerStatus{Port: port, Running: true}, nil
}

func (f *fakeRegistry) AddEndpoint(_ context.Context, port int, ep domain.Endpoint) (bool, error) {
	if !f.started[port] {
		return false, nil
	}
	f.added[port] = append(f.added[port], ep)
	return true, nil
}

func TestApply(t *testing.T) {
	reg := newFakeRegistry()
	reg.started[9002] = true

	f := &File{Servers: []Server{
		{Port: 9001, Endpoints: []Endpoint{{Method: "GET", Path: "/a"}, {Method: "GET", Path: "/b"}}},
		{Port: 9002, Endpoints: []Endpoint{{Method: "POST", Path: "/c"}}},
		{Port: 9003, Endpoints: []Endpoint{{Method: "GET", Path: "/d"}}},
		{Port: 9004, Endpoints: []Endpoint{{Method: "NOPE", Path: "/e"}}},
	}}
	reg.failOn = 9003

	res, err := Apply(context.Background(), reg, f, logger.New("error", false))
	if err == nil {
		t.Fatal("Apply() should report failing servers")
	}
	if res.Servers != 2 || res.Endpoints != 3 {
		t.Errorf("Apply() result = %+v, want 2 servers 3 endpoints", res)
	}
	if len(reg.added[9001]) != 2 || len(reg.added[9002]) != 1 {
		t.Errorf("added = %+v", reg.added)
	}
}
