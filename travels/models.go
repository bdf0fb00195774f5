package travels

import (
	"encoding/json"
	"io"
)

type Seat struct {
	ID         int    `json:"id"`
	SeatNumber string `json:"seat_number"`
	IsBooked   bool   `json:"is_booked"`
}

type Bus struct {
	ID          int    `json:"id"`
	BusName     string `json:"bus_name"`
	Number      string `json:"number"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Features    string `json:"features,omitempty"`
	StartTime   string `json:"start_time"` // "HH:MM:SS"
	ReachTime   string `json:"reach_time"`
	NoOfSeats   int    `json:"no_of_seats"`
	Price       string `json:"price"` // decimal string, e.g. "450.00"
	IsActive    *bool  `json:"is_active,omitempty"`
	Image       string `json:"image,omitempty"`
	Seats       []Seat `json:"seats,omitempty"`
}

// Active reports whether the bus is bookable. A missing flag counts as active.
func (b Bus) Active() bool {
	return b.IsActive == nil || *b.IsActive
}

// FreeSeats returns the seats that are not booked.
func (b Bus) FreeSeats() []Seat {
	free := make([]Seat, 0, len(b.Seats))
	for _, seat := range b.Seats {
		if !seat.IsBooked {
			free = append(free, seat)
		}
	}
	return free
}

// Booking is a user's booking. Bus, Seat and User are display strings.
type Booking struct {
	ID          int    `json:"id"`
	User        string `json:"user,omitempty"`
	Bus         string `json:"bus,omitempty"`
	Seat        string `json:"seat,omitempty"`
	BusName     string `json:"bus_name,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	JourneyDate string `json:"journey_date,omitempty"`
	BookingTime string `json:"booking_time,omitempty"`
}

type Payment struct {
	ID                int    `json:"id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	Amount            int    `json:"amount"`
	Status            string `json:"status"` // CREATED, SUCCESS, FAILED or REFUNDED
	Booking           *int   `json:"booking,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// PaymentOrder is what the checkout widget needs to start a payment.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency,omitempty"`
	KeyID    string `json:"key_id,omitempty"`
}

// PaymentVerification carries the checkout widget's result back to the API.
type PaymentVerification struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type Profile struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

// Upload is a file sent as a multipart part.
type Upload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

// ProfileUpdate is sent as multipart form data. Avatar is optional.
type ProfileUpdate struct {
	Email     string
	FirstName string
	LastName  string
	Avatar    *Upload
}

// BusForm creates or updates a bus. Image is optional.
type BusForm struct {
	BusName     string
	Number      string
	Origin      string
	Destination string
	Features    string
	StartTime   string
	ReachTime   string
	NoOfSeats   int
	Price       string
	IsActive    bool
	Image       *Upload
}

// RecentBooking is a row of the admin dashboard's booking list.
type RecentBooking struct {
	ID          int    `json:"id"`
	JourneyDate string `json:"journey_date,omitempty"`
	Username    string `json:"username"`
	BusName     string `json:"bus_name"`
	SeatNumber  string `json:"seat_number"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Dashboard combines the admin dashboard endpoints.
type Dashboard struct {
	TotalBookings  int             `json:"total_bookings"`
	TotalRevenue   json.Number     `json:"total_revenue"`
	ActiveBuses    int             `json:"active_buses"`
	RecentBookings []RecentBooking `json:"recent_bookings"`
}

// TicketCheck is the API's answer to a scanned ticket.
type TicketCheck struct {
	TicketID    int    `json:"ticket_id"`
	Passenger   string `json:"passenger"`
	Bus         string `json:"bus"`
	Seat        string `json:"seat"`
	Route       string `json:"route"`
	JourneyDate string `json:"journey_date"`
	Status      string `json:"status"` // ACTIVE, USED or REFUNDED
}

// Used reports whether the ticket was already marked as used.
func (t TicketCheck) Used() bool {
	return t.Status == "USED"
}
