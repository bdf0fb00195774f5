package apitest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		notFound(c)
		return 0, false
	}
	return id, true
}

func (s *Server) listBuses(c *gin.Context) {
	origin := strings.ToLower(c.Query("origin"))
	destination := strings.ToLower(c.Query("destination"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*bus, 0, len(s.buses))
	for _, b := range s.buses {
		if origin != "" && !strings.Contains(strings.ToLower(b.Origin), origin) {
			continue
		}
		if destination != "" && !strings.Contains(strings.ToLower(b.Destination), destination) {
			continue
		}
		out = append(out, b)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getBus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findBus(id)
	if b == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) bookingJSON(bk *booking) gin.H {
	b := s.findBus(bk.BusID)
	_, st := s.findSeat(bk.SeatID)
	u := s.usersByID[bk.UserID]
	out := gin.H{
		"id":           bk.ID,
		"journey_date": bk.JourneyDate,
		"booking_time": bk.BookedAt.UTC().Format(time.RFC3339),
	}
	if u != nil {
		out["user"] = u.Username
	}
	if b != nil {
		out["bus"] = fmt.Sprintf("%s %s → %s", b.BusName, b.Origin, b.Destination)
		out["bus_name"] = b.BusName
		out["origin"] = b.Origin
		out["destination"] = b.Destination
	}
	if st != nil {
		out["seat"] = st.SeatNumber
	}
	return out
}

func (s *Server) bookSeat(c *gin.Context) {
	var req struct {
		Seat int `json:"seat"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Seat == 0 {
		abortJSON(c, http.StatusBadRequest, "Seat ID is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, st := s.findSeat(req.Seat)
	if st == nil {
		abortJSON(c, http.StatusBadRequest, "Invalid Seat ID")
		return
	}
	if st.IsBooked {
		abortJSON(c, http.StatusBadRequest, "Seat already booked")
		return
	}
	bk := s.bookLocked(currentUser(c), b, st)
	c.JSON(http.StatusCreated, s.bookingJSON(bk))
}

func (s *Server) myBookings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := currentUser(c)
	out := make([]gin.H, 0)
	for _, bk := range s.bookings {
		if bk.UserID == u.ID {
			out = append(out, s.bookingJSON(bk))
		}
	}
	c.JSON(http.StatusOK, out)
}

// ownBooking finds a booking of the current user; s.mu must be held.
func (s *Server) ownBooking(c *gin.Context, id int) *booking {
	bk := s.findBooking(id)
	if bk == nil || bk.UserID != currentUser(c).ID {
		abortJSON(c, http.StatusNotFound, "Booking not found")
		return nil
	}
	return bk
}

func (s *Server) releaseLocked(bk *booking) {
	if _, st := s.findSeat(bk.SeatID); st != nil {
		st.IsBooked = false
	}
	s.removeBooking(bk.ID)
}

func (s *Server) cancelBooking(c *gin.Context) {
	var req struct {
		BookingID int `json:"booking_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.BookingID == 0 {
		abortJSON(c, http.StatusBadRequest, "Booking id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bk := s.ownBooking(c, req.BookingID)
	if bk == nil {
		return
	}
	s.releaseLocked(bk)
	delete(s.tickets, bk.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}

func (s *Server) refundBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bk := s.ownBooking(c, id)
	if bk == nil {
		return
	}
	if t := s.tickets[bk.ID]; t != nil {
		if t.Status == "USED" {
			abortJSON(c, http.StatusBadRequest, "Ticket already used")
			return
		}
		t.Status = "REFUNDED"
	}
	for _, p := range s.payments {
		if p.BookingID != nil && *p.BookingID == bk.ID {
			p.Status = "REFUNDED"
		}
	}
	s.releaseLocked(bk)
	c.JSON(http.StatusOK, gin.H{"message": "Refund processed successfully"})
}

func (s *Server) ticketPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bk := s.ownBooking(c, id)
	if bk == nil {
		return
	}
	doc := fmt.Sprintf("%%PDF-1.4\n%% ticket for booking %d\n%%%%EOF\n", bk.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ticket_%d.pdf"`, bk.ID))
	c.Data(http.StatusOK, "application/pdf", []byte(doc))
}

func (s *Server) createOrder(c *gin.Context) {
	var req struct {
		Seat int `json:"seat"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Seat == 0 {
		abortJSON(c, http.StatusBadRequest, "Seat ID is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, st := s.findSeat(req.Seat)
	if st == nil {
		abortJSON(c, http.StatusBadRequest, "Invalid Seat ID")
		return
	}
	if st.IsBooked {
		abortJSON(c, http.StatusBadRequest, "Seat already booked")
		return
	}
	price, err := strconv.ParseFloat(b.Price, 64)
	if err != nil {
		abortJSON(c, http.StatusInternalServerError, "Bus has no valid price")
		return
	}

	p := &payment{
		ID:        s.id(),
		UserID:    currentUser(c).ID,
		SeatID:    st.ID,
		OrderID:   "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:    int(price * 100),
		Status:    "CREATED",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.payments = append(s.payments, p)
	c.JSON(http.StatusOK, gin.H{
		"order_id": p.OrderID,
		"amount":   p.Amount,
		"currency": "INR",
		"key_id":   "rzp_test_apitest",
	})
}

func (s *Server) verifyPayment(c *gin.Context) {
	var req struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := currentUser(c)
	var p *payment
	for _, candidate := range s.payments {
		if candidate.OrderID == req.OrderID && candidate.UserID == u.ID {
			p = candidate
		}
	}
	if p == nil {
		abortJSON(c, http.StatusNotFound, "Payment not found")
		return
	}
	if SignPayment(req.OrderID, req.PaymentID) != req.Signature {
		p.Status = "FAILED"
		abortJSON(c, http.StatusBadRequest, "Payment verification failed")
		return
	}

	b, st := s.findSeat(p.SeatID)
	if st == nil || st.IsBooked {
		p.Status = "FAILED"
		abortJSON(c, http.StatusBadRequest, "Seat already booked")
		return
	}
	bk := s.bookLocked(u, b, st)
	paymentID := req.PaymentID
	p.PaymentID = &paymentID
	p.BookingID = &bk.ID
	p.Status = "SUCCESS"
	c.JSON(http.StatusOK, p)
}

func (s *Server) myPayments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := currentUser(c)
	out := make([]*payment, 0)
	for _, p := range s.payments {
		if p.UserID == u.ID {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) paymentStatus(c *gin.Context) {
	order := c.Param("order")

	s.mu.Lock()
	defer s.mu.Unlock()

	u := currentUser(c)
	for _, p := range s.payments {
		if p.OrderID == order && p.UserID == u.ID {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	abortJSON(c, http.StatusNotFound, "Payment not found")
}
