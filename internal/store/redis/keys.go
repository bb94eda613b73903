package redis

import "strconv"

const (
	// KeyPrefixServer is the prefix for per-port config keys
	KeyPrefixServer = "mockingbird:server:"
	// KeyAllServers is the key for the set of all persisted ports
	KeyAllServers = "mockingbird:servers:all"
)

// ServerKey returns the Redis key holding the config of a port
func ServerKey(port int) string {
	return KeyPrefixServer + strconv.Itoa(port)
}

// AllServersKey returns the key for the set of all persisted ports
func AllServersKey() string {
	return KeyAllServers
}
