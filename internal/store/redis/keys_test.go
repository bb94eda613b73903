package redis

import "testing"

func TestKeys(t *testing.T) {
	if got := ServerKey(9001); got != "mockingbird:server:9001" {
		t.Errorf("ServerKey() = %q", got)
	}
	if got := AllServersKey(); got != KeyAllServers {
		t.Errorf("AllServersKey() = %q", got)
	}
	if got := NewStore(nil).Location(9001); got != ServerKey(9001) {
		t.Errorf("Location() = %q, want the server key", got)
	}
}
