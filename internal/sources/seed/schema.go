package seed

// File is the top-level structure of a seed file.
type File struct {
	Servers []Server `yaml:"servers"`
}

// Server lists the endpoints to install on one port at startup.
type Server struct {
	Port      int        `yaml:"port"`
	Endpoints []Endpoint `yaml:"endpoints"`
}

// Endpoint mirrors domain.Endpoint in a hand-writable shape.
type Endpoint struct {
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Status  int               `yaml:"status,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    interface{}       `yaml:"body"`
	Delay   int               `yaml:"delay,omitempty"`
	Error   *ErrorOverride    `yaml:"error,omitempty"`
}

// ErrorOverride is installed disabled unless Enabled is set.
type ErrorOverride struct {
	Status  int    `yaml:"status"`
	Message string `yaml:"message"`
	Enabled bool   `yaml:"enabled"`
}
