package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-travels-client/travels"
	"github.com/spf13/pflag"
)

func travelCommands() []*command {
	return []*command{
		{
			name:    "buses",
			summary: "Search active buses",
			setup: func(flags *pflag.FlagSet) runFunc {
				origin := flags.String("origin", "", "departure city")
				destination := flags.String("destination", "", "arrival city")
				return func(ctx context.Context, a *app, args []string) error {
					buses, err := a.travels.SearchBuses(ctx, *origin, *destination)
					if err != nil {
						return err
					}
					return a.printJSON(buses)
				}
			},
		},
		{
			name:    "bus",
			args:    "<bus-id>",
			summary: "Show a bus and its seats",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("bus", args)
					if err != nil {
						return err
					}
					bus, err := a.travels.GetBus(ctx, id)
					if err != nil {
						return err
					}
					return a.printJSON(bus)
				}
			},
		},
		{
			name:    "book",
			args:    "<seat-id>",
			summary: "Book a seat",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("book", args)
					if err != nil {
						return err
					}
					booking, err := a.travels.BookSeat(ctx, id)
					if err != nil {
						return err
					}
					return a.printJSON(booking)
				}
			},
		},
		{
			name:    "bookings",
			summary: "List your bookings",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					bookings, err := a.travels.MyBookings(ctx)
					if err != nil {
						return err
					}
					return a.printJSON(bookings)
				}
			},
		},
		{
			name:    "cancel",
			args:    "<booking-id>",
			summary: "Cancel a booking",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("cancel", args)
					if err != nil {
						return err
					}
					msg, err := a.travels.CancelBooking(ctx, id)
					if err != nil {
						return err
					}
					return a.printMessage(msg)
				}
			},
		},
		{
			name:    "refund",
			args:    "<booking-id>",
			summary: "Refund a paid booking",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("refund", args)
					if err != nil {
						return err
					}
					msg, err := a.travels.RefundBooking(ctx, id)
					if err != nil {
						return err
					}
					return a.printMessage(msg)
				}
			},
		},
		{
			name:    "ticket",
			args:    "<booking-id>",
			summary: "Download a booking's ticket as PDF",
			setup: func(flags *pflag.FlagSet) runFunc {
				out := flags.StringP("out", "o", "", "output file (default ticket_<booking-id>.pdf)")
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("ticket", args)
					if err != nil {
						return err
					}
					pdf, err := a.travels.DownloadTicket(ctx, id)
					if err != nil {
						return err
					}
					path := *out
					if path == "" {
						path = fmt.Sprintf("ticket_%d.pdf", id)
					}
					if err := os.WriteFile(path, pdf, 0o600); err != nil {
						return fmt.Errorf("[ticket] write %s: %w", path, err)
					}
					return a.printJSON(map[string]any{"file": path, "bytes": len(pdf)})
				}
			},
		},
		{
			name:    "pay",
			args:    "<seat-id>",
			summary: "Open a payment order for a seat",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("pay", args)
					if err != nil {
						return err
					}
					order, err := a.travels.CreatePaymentOrder(ctx, id)
					if err != nil {
						return err
					}
					return a.printJSON(order)
				}
			},
		},
		{
			name:    "verify-payment",
			summary: "Submit the payment gateway's result",
			setup: func(flags *pflag.FlagSet) runFunc {
				var v travels.PaymentVerification
				flags.StringVar(&v.RazorpayOrderID, "order", "", "gateway order id")
				flags.StringVar(&v.RazorpayPaymentID, "payment", "", "gateway payment id")
				flags.StringVar(&v.RazorpaySignature, "signature", "", "gateway signature")
				return func(ctx context.Context, a *app, args []string) error {
					payment, err := a.travels.VerifyPayment(ctx, v)
					if err != nil {
						return err
					}
					return a.printJSON(payment)
				}
			},
		},
		{
			name:    "payments",
			summary: "List your payments",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					payments, err := a.travels.MyPayments(ctx)
					if err != nil {
						return err
					}
					return a.printJSON(payments)
				}
			},
		},
		{
			name:    "payment-status",
			args:    "<order-id>",
			summary: "Look a payment up by order id",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					if err := exactArgs("payment-status", args, 1); err != nil {
						return err
					}
					payment, err := a.travels.PaymentStatus(ctx, args[0])
					if err != nil {
						return err
					}
					return a.printJSON(payment)
				}
			},
		},
		{
			name:    "profile",
			summary: "Show your profile",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					profile, err := a.travels.GetProfile(ctx)
					if err != nil {
						return err
					}
					return a.printProfile(profile)
				}
			},
		},
		{
			name:    "profile-update",
			summary: "Change profile fields; omitted flags keep their value",
			setup: func(flags *pflag.FlagSet) runFunc {
				email := flags.String("email", "", "email address")
				firstName := flags.String("first-name", "", "first name")
				lastName := flags.String("last-name", "", "last name")
				avatar := flags.String("avatar", "", "image file to upload as avatar")
				return func(ctx context.Context, a *app, args []string) error {
					current, err := a.travels.GetProfile(ctx)
					if err != nil {
						return err
					}
					update := travels.ProfileUpdate{
						Email:     current.Email,
						FirstName: current.FirstName,
						LastName:  current.LastName,
					}
					if flags.Changed("email") {
						update.Email = *email
					}
					if flags.Changed("first-name") {
						update.FirstName = *firstName
					}
					if flags.Changed("last-name") {
						update.LastName = *lastName
					}
					if *avatar != "" {
						upload, closeFn, err := openUpload(*avatar)
						if err != nil {
							return err
						}
						defer closeFn()
						update.Avatar = upload
					}

					profile, err := a.travels.UpdateProfile(ctx, update)
					if err != nil {
						return err
					}
					return a.printProfile(profile)
				}
			},
		},
	}
}

func (a *app) printProfile(p *travels.Profile) error {
	return a.printJSON(struct {
		*travels.Profile
		AvatarURL string `json:"avatar_url,omitempty"`
	}{p, a.travels.AvatarURL(p)})
}

// openUpload opens a file for a multipart upload. The returned func closes it.
func openUpload(path string) (*travels.Upload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("[openUpload] %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	return &travels.Upload{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
