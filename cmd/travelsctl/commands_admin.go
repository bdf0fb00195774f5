package main

import (
	"context"

	"github.com/jrsteele09/go-travels-client/travels"
	"github.com/spf13/pflag"
)

type busFlags struct {
	flags *pflag.FlagSet
	form  travels.BusForm
	image string
}

func addBusFlags(flags *pflag.FlagSet) *busFlags {
	b := &busFlags{flags: flags}
	flags.StringVar(&b.form.BusName, "name", "", "bus name")
	flags.StringVar(&b.form.Number, "number", "", "registration number")
	flags.StringVar(&b.form.Origin, "origin", "", "departure city")
	flags.StringVar(&b.form.Destination, "destination", "", "arrival city")
	flags.StringVar(&b.form.Features, "features", "", "free text features")
	flags.StringVar(&b.form.StartTime, "start", "", "departure time, HH:MM[:SS]")
	flags.StringVar(&b.form.ReachTime, "reach", "", "arrival time, HH:MM[:SS]")
	flags.IntVar(&b.form.NoOfSeats, "seats", 0, "number of seats")
	flags.StringVar(&b.form.Price, "price", "", "seat price, e.g. 450.00")
	flags.BoolVar(&b.form.IsActive, "active", true, "bookable by users")
	flags.StringVar(&b.image, "image", "", "image file to upload")
	return b
}

// over applies the flags that were set on top of an existing bus.
func (b *busFlags) over(bus *travels.Bus) travels.BusForm {
	form := travels.BusForm{
		BusName:     bus.BusName,
		Number:      bus.Number,
		Origin:      bus.Origin,
		Destination: bus.Destination,
		Features:    bus.Features,
		StartTime:   bus.StartTime,
		ReachTime:   bus.ReachTime,
		NoOfSeats:   bus.NoOfSeats,
		Price:       bus.Price,
		IsActive:    bus.Active(),
	}
	b.flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "name":
			form.BusName = b.form.BusName
		case "number":
			form.Number = b.form.Number
		case "origin":
			form.Origin = b.form.Origin
		case "destination":
			form.Destination = b.form.Destination
		case "features":
			form.Features = b.form.Features
		case "start":
			form.StartTime = b.form.StartTime
		case "reach":
			form.ReachTime = b.form.ReachTime
		case "seats":
			form.NoOfSeats = b.form.NoOfSeats
		case "price":
			form.Price = b.form.Price
		case "active":
			form.IsActive = b.form.IsActive
		}
	})
	return form
}

// withImage attaches the --image file, if any. The returned func closes it.
func (b *busFlags) withImage(form *travels.BusForm) (func(), error) {
	if b.image == "" {
		return func() {}, nil
	}
	upload, closeFn, err := openUpload(b.image)
	if err != nil {
		return nil, err
	}
	form.Image = upload
	return closeFn, nil
}

func adminCommands() []*command {
	return []*command{
		{
			name:    "admin-buses",
			summary: "List every bus, active or not (admin)",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					buses, err := a.travels.AdminBuses(ctx)
					if err != nil {
						return err
					}
					return a.printJSON(buses)
				}
			},
		},
		{
			name:    "admin-bus-create",
			summary: "Add a bus (admin)",
			setup: func(flags *pflag.FlagSet) runFunc {
				bf := addBusFlags(flags)
				return func(ctx context.Context, a *app, args []string) error {
					form := bf.form
					closeFn, err := bf.withImage(&form)
					if err != nil {
						return err
					}
					defer closeFn()
					bus, err := a.travels.CreateBus(ctx, form)
					if err != nil {
						return err
					}
					return a.printJSON(bus)
				}
			},
		},
		{
			name:    "admin-bus-update",
			args:    "<bus-id>",
			summary: "Change a bus; omitted flags keep their value (admin)",
			setup: func(flags *pflag.FlagSet) runFunc {
				bf := addBusFlags(flags)
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("admin-bus-update", args)
					if err != nil {
						return err
					}
					current, err := a.travels.GetBus(ctx, id)
					if err != nil {
						return err
					}
					form := bf.over(current)
					closeFn, err := bf.withImage(&form)
					if err != nil {
						return err
					}
					defer closeFn()
					bus, err := a.travels.UpdateBus(ctx, id, form)
					if err != nil {
						return err
					}
					return a.printJSON(bus)
				}
			},
		},
		{
			name:    "admin-bus-delete",
			args:    "<bus-id>",
			summary: "Delete a bus with its seats and bookings (admin)",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("admin-bus-delete", args)
					if err != nil {
						return err
					}
					if err := a.travels.DeleteBus(ctx, id); err != nil {
						return err
					}
					return a.printMessage("Bus deleted")
				}
			},
		},
		{
			name:    "dashboard",
			summary: "Show booking, revenue and bus totals (admin)",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					dash, err := a.travels.Dashboard(ctx)
					if err != nil {
						return err
					}
					return a.printJSON(dash)
				}
			},
		},
		{
			name:    "scan",
			args:    "<qr-payload>",
			summary: "Check a ticket from its decoded QR code (admin)",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					if err := exactArgs("scan", args, 1); err != nil {
						return err
					}
					check, err := a.travels.ScanTicket(ctx, args[0])
					if err != nil {
						return err
					}
					return a.printJSON(struct {
						*travels.TicketCheck
						JourneyToday bool `json:"journey_today"`
					}{check, a.travels.JourneyIsToday(check)})
				}
			},
		},
		{
			name:    "mark-used",
			args:    "<ticket-id>",
			summary: "Mark a scanned ticket as used (admin)",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					id, err := idArg("mark-used", args)
					if err != nil {
						return err
					}
					msg, err := a.travels.MarkTicketUsed(ctx, id)
					if err != nil {
						return err
					}
					return a.printMessage(msg)
				}
			},
		},
	}
}
