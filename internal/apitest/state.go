package apitest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// PaymentSecret signs gateway results the way the payment gateway would.
const PaymentSecret = "apitest-gateway-secret"

type user struct {
	ID        int
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Avatar    string
	IsAdmin   bool
}

type seat struct {
	ID         int    `json:"id"`
	SeatNumber string `json:"seat_number"`
	IsBooked   bool   `json:"is_booked"`
}

type bus struct {
	ID          int     `json:"id"`
	BusName     string  `json:"bus_name"`
	Number      string  `json:"number"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Features    string  `json:"features"`
	StartTime   string  `json:"start_time"`
	ReachTime   string  `json:"reach_time"`
	NoOfSeats   int     `json:"no_of_seats"`
	Price       string  `json:"price"`
	IsActive    bool    `json:"is_active"`
	Image       *string `json:"image"`
	Seats       []*seat `json:"seats"`
}

type booking struct {
	ID          int
	UserID      int
	BusID       int
	SeatID      int
	JourneyDate string
	BookedAt    time.Time
}

type ticket struct {
	ID        int
	BookingID int
	Status    string
}

type payment struct {
	ID        int     `json:"id"`
	UserID    int     `json:"-"`
	SeatID    int     `json:"-"`
	OrderID   string  `json:"razorpay_order_id"`
	PaymentID *string `json:"razorpay_payment_id"`
	Amount    int     `json:"amount"`
	Status    string  `json:"status"`
	BookingID *int    `json:"booking"`
	CreatedAt string  `json:"created_at"`
}

type state struct {
	nextID      int
	usersByName map[string]*user
	usersByID   map[int]*user
	buses       []*bus
	bookings    []*booking
	tickets     map[int]*ticket // by booking id
	payments    []*payment
	resetTokens map[string]string // uid -> token
	avatars     map[int][]byte
	busImages   map[int][]byte
}

func newState() state {
	return state{
		usersByName: make(map[string]*user),
		usersByID:   make(map[int]*user),
		tickets:     make(map[int]*ticket),
		resetTokens: make(map[string]string),
		avatars:     make(map[int][]byte),
		busImages:   make(map[int][]byte),
	}
}

func (st *state) id() int {
	st.nextID++
	return st.nextID
}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(username, password, email string, isAdmin bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password, email, isAdmin).ID
}

func (s *Server) addUserLocked(username, password, email string, isAdmin bool) *user {
	u := &user{ID: s.id(), Username: username, Password: password, Email: email, IsAdmin: isAdmin}
	s.usersByName[username] = u
	s.usersByID[u.ID] = u
	return u
}

// BusSpec describes a bus to seed.
type BusSpec struct {
	Name        string
	Number      string
	Origin      string
	Destination string
	Seats       int
	Price       string
	Inactive    bool
}

// AddBus seeds a bus with Seats numbered seats and returns the bus id and its
// seat ids in order.
func (s *Server) AddBus(spec BusSpec) (int, []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &bus{
		ID:          s.id(),
		BusName:     spec.Name,
		Number:      spec.Number,
		Origin:      spec.Origin,
		Destination: spec.Destination,
		StartTime:   "08:00:00",
		ReachTime:   "14:30:00",
		NoOfSeats:   spec.Seats,
		Price:       spec.Price,
		IsActive:    !spec.Inactive,
	}
	s.addSeatsLocked(b, spec.Seats)
	s.buses = append(s.buses, b)

	ids := make([]int, len(b.Seats))
	for i, st := range b.Seats {
		ids[i] = st.ID
	}
	return b.ID, ids
}

func (s *Server) addSeatsLocked(b *bus, n int) {
	for i := 1; i <= n; i++ {
		b.Seats = append(b.Seats, &seat{ID: s.id(), SeatNumber: fmt.Sprintf("S%d", i)})
	}
}

// ResetToken returns the reset link parameters last issued for email.
func (s *Server) ResetToken(email string) (uid, token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.usersByID {
		if u.Email != email {
			continue
		}
		uid = fmt.Sprint(u.ID)
		token, ok = s.resetTokens[uid]
		return uid, token, ok
	}
	return "", "", false
}

// Password returns the stored password of username.
func (s *Server) Password(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.usersByName[username]; u != nil {
		return u.Password
	}
	return ""
}

// Avatar returns the avatar bytes last uploaded by username.
func (s *Server) Avatar(username string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.usersByName[username]; u != nil {
		return s.avatars[u.ID]
	}
	return nil
}

// BusImage returns the image bytes last uploaded for a bus.
func (s *Server) BusImage(busID int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busImages[busID]
}

// TicketID returns the ticket id issued for a booking.
func (s *Server) TicketID(bookingID int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[bookingID]
	if !ok {
		return 0, false
	}
	return t.ID, true
}

// TicketURL is the link encoded in a ticket's QR code.
func (s *Server) TicketURL(ticketID int) string {
	return fmt.Sprintf("%s/api/tickets/verify/%d/", s.URL, ticketID)
}

// SignPayment produces the gateway signature for an order and payment.
func SignPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(PaymentSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (st *state) findBus(id int) *bus {
	for _, b := range st.buses {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (st *state) findSeat(id int) (*bus, *seat) {
	for _, b := range st.buses {
		for _, s := range b.Seats {
			if s.ID == id {
				return b, s
			}
		}
	}
	return nil, nil
}

func (st *state) findBooking(id int) *booking {
	for _, b := range st.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (st *state) removeBooking(id int) {
	for i, b := range st.bookings {
		if b.ID == id {
			st.bookings = append(st.bookings[:i], st.bookings[i+1:]...)
			return
		}
	}
}

func (st *state) findTicket(id int) (*ticket, *booking) {
	for bookingID, t := range st.tickets {
		if t.ID == id {
			return t, st.findBooking(bookingID)
		}
	}
	return nil, nil
}

// bookLocked books a seat for u, creating the booking and its ticket.
func (s *Server) bookLocked(u *user, b *bus, st *seat) *booking {
	st.IsBooked = true
	bk := &booking{
		ID:          s.id(),
		UserID:      u.ID,
		BusID:       b.ID,
		SeatID:      st.ID,
		JourneyDate: time.Now().Format("2006-01-02"),
		BookedAt:    time.Now(),
	}
	s.bookings = append(s.bookings, bk)
	s.tickets[bk.ID] = &ticket{ID: s.id(), BookingID: bk.ID, Status: "ACTIVE"}
	return bk
}
