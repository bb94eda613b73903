package tools

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
)

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// intArg reads an integral number. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, true, invalidArg("%s must be an integer", key)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, invalidArg("%s must be an integer", key)
		}
		return int(n), true, nil
	default:
		return 0, true, invalidArg("%s must be a number", key)
	}
}

func requireInt(args map[string]any, key string) (int, error) {
	n, ok, err := intArg(args, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, invalidArg("%s is required", key)
	}
	return n, nil
}

func requireString(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", invalidArg("%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidArg("%s must be a string", key)
	}
	return s, nil
}

func requireBool(args map[string]any, key string) (bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return false, invalidArg("%s is required", key)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, invalidArg("%s must be a boolean", key)
	}
	return b, nil
}

// routeArgs reads and validates the port/method/path triple shared by most tools.
func routeArgs(args map[string]any) (int, domain.Method, string, error) {
	port, err := requireInt(args, "port")
	if err != nil {
		return 0, "", "", err
	}
	method, err := requireString(args, "method")
	if err != nil {
		return 0, "", "", err
	}
	path, err := requireString(args, "path")
	if err != nil {
		return 0, "", "", err
	}

	m, err := domain.ValidateRoute(port, method, path)
	if err != nil {
		return 0, "", "", err
	}
	return port, m, path, nil
}

// endpointArgs builds the endpoint described by add_endpoint arguments.
func endpointArgs(args map[string]any) (int, domain.Endpoint, error) {
	port, method, path, err := routeArgs(args)
	if err != nil {
		return 0, domain.Endpoint{}, err
	}

	rawResp, ok := args["response"]
	if !ok || rawResp == nil {
		return 0, domain.Endpoint{}, invalidArg("response is required")
	}
	resp, ok := rawResp.(map[string]any)
	if !ok {
		return 0, domain.Endpoint{}, invalidArg("response must be an object")
	}

	ep := domain.Endpoint{Method: method, Path: path}

	status, _, err := intArg(resp, "status")
	if err != nil {
		return 0, domain.Endpoint{}, err
	}
	ep.Response.Status = status

	body, ok := resp["body"]
	if !ok {
		return 0, domain.Endpoint{}, invalidArg("response.body is required")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return 0, domain.Endpoint{}, invalidArg("response.body is not JSON-serializable: %v", err)
	}
	ep.Response.Body = data

	if rawHeaders, ok := resp["headers"]; ok && rawHeaders != nil {
		headers, ok := rawHeaders.(map[string]any)
		if !ok {
			return 0, domain.Endpoint{}, invalidArg("response.headers must be an object")
		}
		ep.Response.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			s, ok := v.(string)
			if !ok {
				return 0, domain.Endpoint{}, invalidArg("response.headers.%s must be a string", k)
			}
			ep.Response.Headers[k] = s
		}
	}

	delay, _, err := intArg(args, "delay")
	if err != nil {
		return 0, domain.Endpoint{}, err
	}
	ep.Delay = delay

	ep, err = domain.ValidateEndpoint(port, ep)
	if err != nil {
		return 0, domain.Endpoint{}, err
	}
	return port, ep, nil
}
