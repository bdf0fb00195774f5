package travels

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"golang.org/x/sync/errgroup"
)

// Dashboard loads the four admin dashboard endpoints concurrently and returns
// the first error. A failing call does not cancel its siblings: one of them
// may be refreshing the session, and an aborted refresh would sign the user
// out.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		bookings struct {
			TotalBookings int `json:"total_bookings"`
		}
		revenue struct {
			TotalRevenue json.Number `json:"total_revenue"`
		}
		buses struct {
			ActiveBuses int `json:"active_buses"`
		}
		recent []RecentBooking
	)

	var g errgroup.Group
	g.Go(func() error { return s.get(ctx, TotalBookingsPath, &bookings) })
	g.Go(func() error { return s.get(ctx, TotalRevenuePath, &revenue) })
	g.Go(func() error { return s.get(ctx, ActiveBusesPath, &buses) })
	g.Go(func() error { return s.get(ctx, RecentBookingsPath, &recent) })
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "[Dashboard] unable to load admin dashboard")
	}

	if recent == nil {
		recent = []RecentBooking{}
	}
	if revenue.TotalRevenue == "" {
		revenue.TotalRevenue = "0"
	}
	return &Dashboard{
		TotalBookings:  bookings.TotalBookings,
		TotalRevenue:   revenue.TotalRevenue,
		ActiveBuses:    buses.ActiveBuses,
		RecentBookings: recent,
	}, nil
}

// RecentBookings lists the latest bookings across all users.
func (s *Service) RecentBookings(ctx context.Context) ([]RecentBooking, error) {
	var recent []RecentBooking
	if err := s.get(ctx, RecentBookingsPath, &recent); err != nil {
		return nil, errors.Wrapf(err, "[RecentBookings] request failed")
	}
	return recent, nil
}
