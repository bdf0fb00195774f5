package travels

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// AdminBuses lists every bus, active or not.
func (s *Service) AdminBuses(ctx context.Context) ([]Bus, error) {
	var buses []Bus
	if err := s.get(ctx, AdminBusesPath, &buses); err != nil {
		return nil, errors.Wrapf(err, "[AdminBuses] request failed")
	}
	return buses, nil
}

// CreateBus adds a bus. The API creates its seats.
func (s *Service) CreateBus(ctx context.Context, bus BusForm) (*Bus, error) {
	if err := bus.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[CreateBus] %v", err)
	}
	var created Bus
	err := s.api.DoJSON(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   AdminBusesPath,
		Body:   client.Multipart(bus.form()),
	}, &created)
	if err != nil {
		return nil, errors.Wrapf(err, "[CreateBus] request failed")
	}
	s.logger.Info().Int("bus_id", created.ID).Str("number", bus.Number).Msg("Bus created")
	return &created, nil
}

// UpdateBus replaces a bus's fields. The image is only replaced when given.
func (s *Service) UpdateBus(ctx context.Context, id int, bus BusForm) (*Bus, error) {
	if err := requireID("UpdateBus", id); err != nil {
		return nil, err
	}
	if err := bus.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[UpdateBus] %v", err)
	}
	var updated Bus
	err := s.api.DoJSON(ctx, &client.Request{
		Method: http.MethodPut,
		Path:   pathf(adminBusPath, id),
		Body:   client.Multipart(bus.form()),
	}, &updated)
	if err != nil {
		return nil, notFound("UpdateBus", err)
	}
	return &updated, nil
}

// DeleteBus removes a bus and, on the API side, its seats and bookings.
func (s *Service) DeleteBus(ctx context.Context, id int) error {
	if err := requireID("DeleteBus", id); err != nil {
		return err
	}
	err := s.api.DoJSON(ctx, &client.Request{Method: http.MethodDelete, Path: pathf(adminBusPath, id)}, nil)
	if err != nil {
		return notFound("DeleteBus", err)
	}
	s.logger.Info().Int("bus_id", id).Msg("Bus deleted")
	return nil
}

// Validate checks the fields the API requires.
func (b BusForm) Validate() error {
	var missing []string
	for name, value := range map[string]string{
		"bus_name":    b.BusName,
		"number":      b.Number,
		"origin":      b.Origin,
		"destination": b.Destination,
		"start_time":  b.StartTime,
		"reach_time":  b.ReachTime,
		"price":       b.Price,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.New("missing " + strings.Join(missing, ", "))
	}
	if b.NoOfSeats <= 0 {
		return errors.New("no_of_seats must be positive")
	}
	if _, err := strconv.ParseFloat(b.Price, 64); err != nil {
		return errors.New("price must be a number")
	}
	return nil
}

func (b BusForm) form() *client.Form {
	form := &client.Form{}
	form.Add("bus_name", b.BusName)
	form.Add("number", b.Number)
	form.Add("origin", b.Origin)
	form.Add("destination", b.Destination)
	form.Add("features", b.Features)
	form.Add("start_time", b.StartTime)
	form.Add("reach_time", b.ReachTime)
	form.Add("no_of_seats", strconv.Itoa(b.NoOfSeats))
	form.Add("price", b.Price)
	form.AddBool("is_active", b.IsActive)
	if b.Image != nil {
		form.AddFile("image", b.Image.FileName, b.Image.ContentType, b.Image.Content)
	}
	return form
}
