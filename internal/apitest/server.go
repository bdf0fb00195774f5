// Package apitest runs an in-memory travels API for tests. It issues real
// HS256 access and refresh tokens, enforces bearer authentication and lets a
// test force token expiry or refresh failures.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultAccessTTL  = 5 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

// Recorded is one request as the API received it.
type Recorded struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Status        int
}

// Server is the fake API. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	adminFlag  bool
	strictAuth bool
	logger     zerolog.Logger

	mu              sync.Mutex
	accessGen       int
	refreshGen      int
	refreshFailCode int
	refreshDelay    time.Duration
	endpointFaults  map[string]int
	rejectAll       bool
	refreshCalls    int
	requests        []Recorded
	state
}

type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = ttl
	}
}

// WithoutAdminFlag makes the login response omit is_admin, leaving the role
// to the access token's is_staff claim.
func WithoutAdminFlag() Option {
	return func(s *Server) {
		s.adminFlag = false
	}
}

// WithStrictPublicAuth rejects an invalid bearer token even on endpoints that
// need none, the way token-authenticating frameworks commonly behave.
func WithStrictPublicAuth() Option {
	return func(s *Server) {
		s.strictAuth = true
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New starts the fake API and stops it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:     []byte("apitest-signing-secret"),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		adminFlag:  true,
		logger:     log.Logger,
		state:      newState(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.record())
	r.Use(s.faults())

	api := r.Group("/api")
	api.POST("/login/", s.publicAuth(), s.login)
	api.POST("/token/refresh/", s.refresh)
	api.POST("/register/", s.publicAuth(), s.register)
	api.POST("/password-reset/request/", s.publicAuth(), s.requestPasswordReset)
	api.POST("/password-reset/confirm/", s.publicAuth(), s.confirmPasswordReset)
	api.GET("/buses/", s.publicAuth(), s.listBuses)
	api.GET("/buses/:id/", s.publicAuth(), s.getBus)

	user := api.Group("", s.requireAuth())
	user.POST("/booking/", s.bookSeat)
	user.GET("/my/bookings/", s.myBookings)
	user.POST("/bookings/cancel/", s.cancelBooking)
	user.POST("/bookings/:id/refund/", s.refundBooking)
	user.GET("/bookings/:id/ticket/", s.ticketPDF)
	user.POST("/payments/create-order/", s.createOrder)
	user.POST("/payments/verify/", s.verifyPayment)
	user.GET("/payments/my/", s.myPayments)
	user.GET("/payments/status/:order/", s.paymentStatus)
	user.GET("/profile/", s.getProfile)
	user.PUT("/profile/", s.updateProfile)

	admin := api.Group("", s.requireAuth(), s.requireAdmin())
	admin.GET("/admin/buses/", s.adminListBuses)
	admin.POST("/admin/buses/", s.adminCreateBus)
	admin.PUT("/admin/buses/:id/", s.adminUpdateBus)
	admin.DELETE("/admin/buses/:id/", s.adminDeleteBus)
	admin.GET("/admin/dashboard/total-bookings/", s.totalBookings)
	admin.GET("/admin/dashboard/total-revenue/", s.totalRevenue)
	admin.GET("/admin/dashboard/active-buses/", s.activeBuses)
	admin.GET("/admin/dashboard/recent-bookings/", s.recentBookings)
	admin.GET("/tickets/verify/:id/", s.verifyTicket)
	admin.POST("/tickets/mark-used/:id/", s.markTicketUsed)

	return r
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		rec := Recorded{
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Query:         c.Request.URL.RawQuery,
			Authorization: c.Request.Header.Get("Authorization"),
			ContentType:   c.Request.Header.Get("Content-Type"),
			Status:        c.Writer.Status(),
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		s.logger.Debug().
			Str("method", rec.Method).
			Str("path", rec.Path).
			Int("status", rec.Status).
			Dur("duration", time.Since(start)).
			Msg("apitest request")
	}
}

// Requests returns every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo returns the requests received for path.
func (s *Server) RequestsTo(path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// RefreshCalls counts calls to the refresh endpoint.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// ExpireAccessTokens invalidates every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessGen++
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshGen++
}

// FailRefresh makes the refresh endpoint answer with status. 0 restores it.
func (s *Server) FailRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshFailCode = status
}

// DelayRefresh holds every refresh response for d before answering.
func (s *Server) DelayRefresh(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// FailEndpoint makes path answer with status before any authentication
// check. 0 restores it.
func (s *Server) FailEndpoint(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endpointFaults == nil {
		s.endpointFaults = make(map[string]int)
	}
	if status == 0 {
		delete(s.endpointFaults, path)
		return
	}
	s.endpointFaults[path] = status
}

func (s *Server) faults() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		status := s.endpointFaults[c.Request.URL.Path]
		s.mu.Unlock()
		if status != 0 {
			abortJSON(c, status, "Injected failure")
		}
	}
}

// RejectAllTokens makes every authenticated endpoint answer 401 regardless
// of the token presented.
func (s *Server) RejectAllTokens(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAll = reject
}

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}
