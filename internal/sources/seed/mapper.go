package seed

import (
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
)

// Mapper converts seed entries to validated domain endpoints
type Mapper struct{}

// NewMapper creates a new mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapServer validates the port and every endpoint of s.
func (m *Mapper) MapServer(s Server) ([]domain.Endpoint, error) {
	if err := domain.ValidatePort(s.Port); err != nil {
		return nil, err
	}

	out := make([]domain.Endpoint, 0, len(s.Endpoints))
	for i, e := range s.Endpoints {
		ep, err := m.mapEndpoint(s.Port, e)
		if err != nil {
			return nil, fmt.Errorf("port %d endpoint #%d: %w", s.Port, i+1, err)
		}
		out = append(out, ep)
	}
	return out, nil
}

func (m *Mapper) mapEndpoint(port int, e Endpoint) (domain.Endpoint, error) {
	body, err := json.Marshal(e.Body)
	if err != nil {
		return domain.Endpoint{}, fmt.Errorf("%w: body is not JSON-serializable: %v", domain.ErrValidation, err)
	}

	ep := domain.NewEndpoint(domain.Method(e.Method), e.Path, domain.Response{
		Status:  e.Status,
		Headers: e.Headers,
		Body:    body,
	}, e.Delay)

	ep, err = domain.ValidateEndpoint(port, ep)
	if err != nil {
		return domain.Endpoint{}, err
	}

	if e.Error != nil {
		if err := domain.ValidateErrorStatus(e.Error.Status); err != nil {
			return domain.Endpoint{}, err
		}
		ep.ErrorResponse = &domain.ErrorOverride{
			Enabled: e.Error.Enabled,
			Status:  e.Error.Status,
			Message: e.Error.Message,
		}
	}
	return ep, nil
}
