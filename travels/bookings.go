package travels

import (
	"bytes"
	"context"
	"net/http"

	"github.com/jrsteele09/go-travels-client/authmodel"
	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

var pdfMagic = []byte("%PDF")

// BookSeat books a seat for the signed-in user.
func (s *Service) BookSeat(ctx context.Context, seatID int) (*Booking, error) {
	if err := requireID("BookSeat", seatID); err != nil {
		return nil, err
	}
	var booking Booking
	if err := s.post(ctx, BookingPath, map[string]int{"seat": seatID}, &booking); err != nil {
		return nil, errors.Wrapf(err, "[BookSeat] request failed")
	}
	s.logger.Info().Int("seat_id", seatID).Int("booking_id", booking.ID).Msg("Seat booked")
	return &booking, nil
}

// MyBookings lists the signed-in user's bookings.
func (s *Service) MyBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := s.get(ctx, MyBookingsPath, &bookings); err != nil {
		return nil, errors.Wrapf(err, "[MyBookings] request failed")
	}
	return bookings, nil
}

// CancelBooking cancels a booking and frees its seat.
func (s *Service) CancelBooking(ctx context.Context, bookingID int) (string, error) {
	if err := requireID("CancelBooking", bookingID); err != nil {
		return "", err
	}
	var resp authmodel.MessageResponse
	if err := s.post(ctx, CancelBookingPath, map[string]int{"booking_id": bookingID}, &resp); err != nil {
		return "", notFound("CancelBooking", err)
	}
	return resp.Message, nil
}

// RefundBooking refunds a paid booking.
func (s *Service) RefundBooking(ctx context.Context, bookingID int) (string, error) {
	if err := requireID("RefundBooking", bookingID); err != nil {
		return "", err
	}
	var resp authmodel.MessageResponse
	if err := s.post(ctx, pathf(refundPath, bookingID), nil, &resp); err != nil {
		return "", notFound("RefundBooking", err)
	}
	return resp.Message, nil
}

// DownloadTicket returns the booking's ticket as PDF bytes.
func (s *Service) DownloadTicket(ctx context.Context, bookingID int) ([]byte, error) {
	if err := requireID("DownloadTicket", bookingID); err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, &client.Request{
		Method: http.MethodGet,
		Path:   pathf(ticketPath, bookingID),
		Header: http.Header{"Accept": []string{"application/pdf"}},
	})
	if err != nil {
		return nil, notFound("DownloadTicket", err)
	}
	if !bytes.HasPrefix(resp.Body, pdfMagic) {
		return nil, errors.New("[DownloadTicket] response is not a PDF document")
	}
	return resp.Body, nil
}
