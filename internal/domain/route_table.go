package domain

import "sync"

// RouteTable holds the ordered endpoints of one mock server.
// It is safe for concurrent use: dispatch reads while admin calls mutate.
type RouteTable struct {
	mu        sync.RWMutex
	endpoints []Endpoint
}

// NewRouteTable creates an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{}
}

// Upsert drops any entry with the same method+path and appends ep,
// so a replaced endpoint moves to the end of the iteration order.
func (t *RouteTable) Upsert(ep Endpoint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.upsertLocked(ep.Clone())
}

func (t *RouteTable) upsertLocked(ep Endpoint) {
	kept := t.endpoints[:0]
	for _, existing := range t.endpoints {
		if !existing.Matches(string(ep.Method), ep.Path) {
			kept = append(kept, existing)
		}
	}
	// Zero the tail so dropped entries do not stay reachable.
	for i := len(kept); i < len(t.endpoints); i++ {
		t.endpoints[i] = Endpoint{}
	}
	t.endpoints = append(kept, ep)
}

// Remove deletes the entry for method+path, if any, and reports whether one was found.
func (t *RouteTable) Remove(method, path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, ep := range t.endpoints {
		if ep.Matches(method, path) {
			t.endpoints = append(t.endpoints[:i], t.endpoints[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns a copy of the endpoint for method+path.
func (t *RouteTable) Find(method, path string) (Endpoint, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i := t.indexLocked(method, path); i >= 0 {
		return t.endpoints[i].Clone(), true
	}
	return Endpoint{}, false
}

// SetErrorOverride enables an error override on an existing endpoint.
// It never creates an endpoint; it returns false on a miss.
func (t *RouteTable) SetErrorOverride(method, path string, status int, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexLocked(method, path)
	if i < 0 {
		return false
	}
	t.endpoints[i].ErrorResponse = &ErrorOverride{
		Enabled: true,
		Status:  status,
		Message: message,
	}
	return true
}

// ToggleErrorOverride flips an already configured override.
// It returns false when the endpoint is missing or has no override.
func (t *RouteTable) ToggleErrorOverride(method, path string, enabled bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexLocked(method, path)
	if i < 0 || t.endpoints[i].ErrorResponse == nil {
		return false
	}
	override := *t.endpoints[i].ErrorResponse
	override.Enabled = enabled
	t.endpoints[i].ErrorResponse = &override
	return true
}

// Endpoints returns a copy of all endpoints in iteration order.
func (t *RouteTable) Endpoints() []Endpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Endpoint, 0, len(t.endpoints))
	for _, ep := range t.endpoints {
		out = append(out, ep.Clone())
	}
	return out
}

// Replace resets the table to eps, upserting them in order.
func (t *RouteTable) Replace(eps []Endpoint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.endpoints = make([]Endpoint, 0, len(eps))
	for _, ep := range eps {
		t.upsertLocked(ep.Clone())
	}
}

// Len returns the number of endpoints.
func (t *RouteTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.endpoints)
}

func (t *RouteTable) indexLocked(method, path string) int {
	for i, ep := range t.endpoints {
		if ep.Matches(method, path) {
			return i
		}
	}
	return -1
}
