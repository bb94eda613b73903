package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	MinPort = 1024
	MaxPort = 65535

	DefaultStatus  = 200
	MinStatus      = 100
	MaxStatus      = 599
	MinErrorStatus = 400
	MaxErrorStatus = 599

	MinDelay = 0
	MaxDelay = 10_000
)

// ErrValidation marks malformed input rejected before any registry call.
var ErrValidation = errors.New("validation error")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ValidatePort checks the port range.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return invalid("port must be between %d and %d", MinPort, MaxPort)
	}
	return nil
}

// ValidateMethod returns the upper-cased verb or an error listing the supported ones.
func ValidateMethod(method string) (Method, error) {
	if strings.TrimSpace(method) == "" {
		return "", invalid("HTTP method is required")
	}
	m := NormalizeMethod(method)
	for _, supported := range SupportedMethods {
		if m == supported {
			return m, nil
		}
	}
	names := make([]string, 0, len(SupportedMethods))
	for _, supported := range SupportedMethods {
		names = append(names, string(supported))
	}
	return "", invalid("invalid HTTP method %q, must be one of: %s", method, strings.Join(names, ", "))
}

// ValidatePath requires a leading slash.
func ValidatePath(path string) error {
	if path == "" {
		return invalid("path is required")
	}
	if !strings.HasPrefix(path, "/") {
		return invalid("path must start with /")
	}
	return nil
}

// ValidateStatus checks a success-response status code.
func ValidateStatus(status int) error {
	if status < MinStatus || status > MaxStatus {
		return invalid("status must be between %d and %d", MinStatus, MaxStatus)
	}
	return nil
}

// ValidateErrorStatus checks an error-override status code.
func ValidateErrorStatus(status int) error {
	if status < MinErrorStatus || status > MaxErrorStatus {
		return invalid("error status must be between %d and %d", MinErrorStatus, MaxErrorStatus)
	}
	return nil
}

// ValidateDelay checks the response delay in milliseconds.
func ValidateDelay(delay int) error {
	if delay < MinDelay || delay > MaxDelay {
		return invalid("delay must be between %d and %d ms", MinDelay, MaxDelay)
	}
	return nil
}

// ValidateRoute checks port, method and path together and returns the normalized method.
func ValidateRoute(port int, method, path string) (Method, error) {
	if err := ValidatePort(port); err != nil {
		return "", err
	}
	m, err := ValidateMethod(method)
	if err != nil {
		return "", err
	}
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	return m, nil
}

// ValidateEndpoint checks a new endpoint for port and returns it normalized:
// upper-cased method, default status applied, null body for a missing one.
func ValidateEndpoint(port int, ep Endpoint) (Endpoint, error) {
	m, err := ValidateRoute(port, string(ep.Method), ep.Path)
	if err != nil {
		return Endpoint{}, err
	}
	ep.Method = m

	if ep.Response.Status == 0 {
		ep.Response.Status = DefaultStatus
	}
	if err := ValidateStatus(ep.Response.Status); err != nil {
		return Endpoint{}, err
	}
	if err := ValidateDelay(ep.Delay); err != nil {
		return Endpoint{}, err
	}
	for name := range ep.Response.Headers {
		if strings.TrimSpace(name) == "" {
			return Endpoint{}, invalid("header names must not be empty")
		}
	}
	if len(ep.Response.Body) == 0 {
		ep.Response.Body = []byte("null")
	}
	if !json.Valid(ep.Response.Body) {
		return Endpoint{}, invalid("response body must be valid JSON")
	}
	return ep, nil
}
