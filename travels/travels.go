package travels

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// API endpoints used by the booking and admin features.
const (
	BusesPath           = "/api/buses/"
	BookingPath         = "/api/booking/"
	MyBookingsPath      = "/api/my/bookings/"
	CancelBookingPath   = "/api/bookings/cancel/"
	CreatePaymentPath   = "/api/payments/create-order/"
	VerifyPaymentPath   = "/api/payments/verify/"
	MyPaymentsPath      = "/api/payments/my/"
	ProfilePath         = "/api/profile/"
	AdminBusesPath      = "/api/admin/buses/"
	TotalBookingsPath   = "/api/admin/dashboard/total-bookings/"
	TotalRevenuePath    = "/api/admin/dashboard/total-revenue/"
	ActiveBusesPath     = "/api/admin/dashboard/active-buses/"
	RecentBookingsPath  = "/api/admin/dashboard/recent-bookings/"
	markTicketUsedPath  = "/api/tickets/mark-used/%d/"
	busPath             = "/api/buses/%d/"
	refundPath          = "/api/bookings/%d/refund/"
	ticketPath          = "/api/bookings/%d/ticket/"
	paymentStatusPath   = "/api/payments/status/%s/"
	adminBusPath        = "/api/admin/buses/%d/"
	journeyDateLayout   = "2006-01-02"
)

// API is the request pipeline as seen by the feature services.
type API interface {
	BaseURL() string
	Do(ctx context.Context, req *client.Request) (*client.Response, error)
	DoJSON(ctx context.Context, req *client.Request, out any) error
}

// Service exposes the bus, booking, payment, profile and admin endpoints.
// It never reads or writes credentials; the pipeline owns those.
type Service struct {
	api     API
	logger  zerolog.Logger
	nowTime func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(api API, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[NewService] api is required")
	}
	s := &Service{
		api:     api,
		logger:  log.Logger,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) get(ctx context.Context, path string, out any) error {
	return s.api.DoJSON(ctx, &client.Request{Method: http.MethodGet, Path: path}, out)
}

func (s *Service) post(ctx context.Context, path string, body any, out any) error {
	req := &client.Request{Method: http.MethodPost, Path: path}
	if body != nil {
		req.Body = client.JSON(body)
	}
	return s.api.DoJSON(ctx, req, out)
}

func requireID(op string, id int) error {
	if id <= 0 {
		return errors.Wrapf(errors.ErrInvalidRequest, "[%s] invalid id %d", op, id)
	}
	return nil
}

func notFound(op string, err error) error {
	if client.StatusCode(err) == http.StatusNotFound {
		return errors.Wrapf(errors.ErrNotFound, "[%s] %v", op, err)
	}
	return errors.Wrapf(err, "[%s] request failed", op)
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
