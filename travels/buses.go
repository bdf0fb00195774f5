package travels

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// SearchBuses lists active buses, optionally filtered by origin and
// destination. Empty filters are not sent.
func (s *Service) SearchBuses(ctx context.Context, origin, destination string) ([]Bus, error) {
	query := url.Values{}
	if o := strings.TrimSpace(origin); o != "" {
		query.Set("origin", o)
	}
	if d := strings.TrimSpace(destination); d != "" {
		query.Set("destination", d)
	}

	var buses []Bus
	err := s.api.DoJSON(ctx, &client.Request{Method: http.MethodGet, Path: BusesPath, Query: query}, &buses)
	if err != nil {
		return nil, errors.Wrapf(err, "[SearchBuses] request failed")
	}

	active := make([]Bus, 0, len(buses))
	for _, bus := range buses {
		if bus.Active() {
			active = append(active, bus)
		}
	}
	return active, nil
}

// GetBus returns one bus including its seat map.
func (s *Service) GetBus(ctx context.Context, id int) (*Bus, error) {
	if err := requireID("GetBus", id); err != nil {
		return nil, err
	}
	var bus Bus
	if err := s.get(ctx, pathf(busPath, id), &bus); err != nil {
		return nil, notFound("GetBus", err)
	}
	return &bus, nil
}
