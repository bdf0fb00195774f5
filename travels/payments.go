package travels

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// CreatePaymentOrder opens a gateway order for a seat. The checkout itself
// happens in the gateway's widget; its result goes to VerifyPayment.
func (s *Service) CreatePaymentOrder(ctx context.Context, seatID int) (*PaymentOrder, error) {
	if err := requireID("CreatePaymentOrder", seatID); err != nil {
		return nil, err
	}
	var order PaymentOrder
	if err := s.post(ctx, CreatePaymentPath, map[string]int{"seat": seatID}, &order); err != nil {
		return nil, errors.Wrapf(err, "[CreatePaymentOrder] request failed")
	}
	return &order, nil
}

// VerifyPayment submits the gateway's signed result. The API books the seat
// once the signature checks out.
func (s *Service) VerifyPayment(ctx context.Context, v PaymentVerification) (*Payment, error) {
	if v.RazorpayOrderID == "" || v.RazorpayPaymentID == "" || v.RazorpaySignature == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[VerifyPayment] order id, payment id and signature are required")
	}
	var payment Payment
	if err := s.post(ctx, VerifyPaymentPath, v, &payment); err != nil {
		return nil, errors.Wrapf(err, "[VerifyPayment] request failed")
	}
	return &payment, nil
}

// MyPayments lists the signed-in user's payments.
func (s *Service) MyPayments(ctx context.Context) ([]Payment, error) {
	var payments []Payment
	if err := s.get(ctx, MyPaymentsPath, &payments); err != nil {
		return nil, errors.Wrapf(err, "[MyPayments] request failed")
	}
	return payments, nil
}

// PaymentStatus looks a payment up by its gateway order id.
func (s *Service) PaymentStatus(ctx context.Context, orderID string) (*Payment, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[PaymentStatus] order id is required")
	}
	var payment Payment
	if err := s.get(ctx, pathf(paymentStatusPath, url.PathEscape(orderID)), &payment); err != nil {
		return nil, notFound("PaymentStatus", err)
	}
	return &payment, nil
}
