package domain

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

func testEndpoint(id string, method Method, path string, status int, body string) Endpoint {
	return Endpoint{
		ID:     id,
		Method: method,
		Path:   path,
		Response: Response{
			Status: status,
			Body:   json.RawMessage(body),
		},
	}
}

func TestUpsertReplacesSameKey(t *testing.T) {
	table := NewRouteTable()

	table.Upsert(testEndpoint("a", MethodGet, "/users", 200, `[]`))
	table.Upsert(testEndpoint("b", MethodPost, "/users", 201, `{}`))
	table.Upsert(testEndpoint("c", MethodGet, "/users", 500, `{"x":1}`))

	eps := table.Endpoints()
	if len(eps) != 2 {
		t.Fatalf("Upsert() table has %d endpoints, want 2", len(eps))
	}
	// Replacement moves the entry to the end.
	if eps[0].ID != "b" || eps[1].ID != "c" {
		t.Errorf("Upsert() order = [%s %s], want [b c]", eps[0].ID, eps[1].ID)
	}
	if eps[1].Response.Status != 500 {
		t.Errorf("Upsert() status = %d, want 500", eps[1].Response.Status)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	table := NewRouteTable()
	ep := testEndpoint("a", MethodGet, "/ping", 200, `{"ok":true}`)

	for i := 0; i < 5; i++ {
		table.Upsert(ep)
	}

	if table.Len() != 1 {
		t.Errorf("Len() = %d after repeated Upsert, want 1", table.Len())
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		wantRemoved bool
		wantLen     int
	}{
		{name: "exact match", method: "GET", path: "/ping", wantRemoved: true, wantLen: 1},
		{name: "lowercase method", method: "get", path: "/ping", wantRemoved: true, wantLen: 1},
		{name: "path is case-sensitive", method: "GET", path: "/PING", wantRemoved: false, wantLen: 2},
		{name: "trailing slash is not normalized", method: "GET", path: "/ping/", wantRemoved: false, wantLen: 2},
		{name: "other method", method: "DELETE", path: "/ping", wantRemoved: false, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewRouteTable()
			table.Upsert(testEndpoint("a", MethodGet, "/ping", 200, `{}`))
			table.Upsert(testEndpoint("b", MethodPost, "/ping", 201, `{}`))

			if got := table.Remove(tt.method, tt.path); got != tt.wantRemoved {
				t.Errorf("Remove() = %v, want %v", got, tt.wantRemoved)
			}
			if table.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", table.Len(), tt.wantLen)
			}
		})
	}
}

func TestFindReturnsCopy(t *testing.T) {
	table := NewRouteTable()
	ep := testEndpoint("a", MethodGet, "/ping", 200, `{}`)
	ep.Response.Headers = map[string]string{"X-Test": "1"}
	table.Upsert(ep)

	found, ok := table.Find("get", "/ping")
	if !ok {
		t.Fatal("Find() did not find endpoint")
	}
	found.Response.Headers["X-Test"] = "mutated"

	again, _ := table.Find("GET", "/ping")
	if again.Response.Headers["X-Test"] != "1" {
		t.Errorf("Find() leaked internal state, header = %q", again.Response.Headers["X-Test"])
	}

	if _, ok := table.Find("GET", "/missing"); ok {
		t.Error("Find() on missing path should return false")
	}
}

func TestSetErrorOverride(t *testing.T) {
	table := NewRouteTable()
	table.Upsert(testEndpoint("a", MethodGet, "/ping", 200, `{}`))

	if table.SetErrorOverride("GET", "/missing", 503, "down") {
		t.Error("SetErrorOverride() on missing endpoint should fail")
	}
	if table.Len() != 1 {
		t.Errorf("SetErrorOverride() must not create endpoints, Len() = %d", table.Len())
	}

	if !table.SetErrorOverride("get", "/ping", 503, "down") {
		t.Fatal("SetErrorOverride() on existing endpoint should succeed")
	}
	ep, _ := table.Find("GET", "/ping")
	if !ep.ErrorEnabled() || ep.ErrorResponse.Status != 503 || ep.ErrorResponse.Message != "down" {
		t.Errorf("SetErrorOverride() override = %+v", ep.ErrorResponse)
	}
}

func TestToggleErrorOverride(t *testing.T) {
	table := NewRouteTable()
	table.Upsert(testEndpoint("a", MethodGet, "/ping", 200, `{}`))

	if table.ToggleErrorOverride("GET", "/ping", true) {
		t.Error("ToggleErrorOverride() without configured override should fail")
	}
	if table.ToggleErrorOverride("GET", "/missing", true) {
		t.Error("ToggleErrorOverride() on missing endpoint should fail")
	}

	table.SetErrorOverride("GET", "/ping", 500, "boom")

	if !table.ToggleErrorOverride("get", "/ping", false) {
		t.Fatal("ToggleErrorOverride() should succeed once an override exists")
	}
	ep, _ := table.Find("GET", "/ping")
	if ep.ErrorEnabled() {
		t.Error("ToggleErrorOverride(false) left override enabled")
	}
	if ep.ErrorResponse == nil || ep.ErrorResponse.Status != 500 {
		t.Errorf("ToggleErrorOverride() must keep status/message, got %+v", ep.ErrorResponse)
	}
}

func TestReplaceDeduplicates(t *testing.T) {
	table := NewRouteTable()
	table.Upsert(testEndpoint("old", MethodGet, "/old", 200, `{}`))

	table.Replace([]Endpoint{
		testEndpoint("a", MethodGet, "/x", 200, `1`),
		testEndpoint("b", MethodGet, "/y", 200, `2`),
		testEndpoint("c", MethodGet, "/x", 200, `3`),
	})

	eps := table.Endpoints()
	if len(eps) != 2 {
		t.Fatalf("Replace() table has %d endpoints, want 2", len(eps))
	}
	if eps[0].ID != "b" || eps[1].ID != "c" {
		t.Errorf("Replace() order = [%s %s], want [b c]", eps[0].ID, eps[1].ID)
	}
}

func TestRouteTableConcurrentAccess(t *testing.T) {
	table := NewRouteTable()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			table.Upsert(testEndpoint(fmt.Sprint(i), MethodGet, fmt.Sprintf("/p%d", i%5), 200, `{}`))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = table.Find("GET", fmt.Sprintf("/p%d", i%5))
			_ = table.Endpoints()
		}(i)
	}
	wg.Wait()

	if table.Len() != 5 {
		t.Errorf("Len() = %d after concurrent upserts, want 5", table.Len())
	}
}
