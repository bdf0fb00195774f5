package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-travels-client/accounts"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/spf13/pflag"
)

func accountCommands() []*command {
	return []*command{
		{
			name:    "login",
			summary: "Sign in and store the session",
			setup: func(flags *pflag.FlagSet) runFunc {
				username := flags.StringP("username", "u", "", "account username")
				password := flags.StringP("password", "p", "", "account password (prompted when omitted)")
				return func(ctx context.Context, a *app, args []string) error {
					pw, err := a.passwordOrPrompt(*password, "Password: ")
					if err != nil {
						return err
					}
					if _, err := a.accounts.Login(ctx, *username, pw); err != nil {
						return err
					}
					return a.printJSON(a.accounts.Whoami())
				}
			},
		},
		{
			name:    "logout",
			summary: "Forget the stored session",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					if err := a.accounts.Logout(); err != nil {
						return err
					}
					return a.printMessage("Signed out")
				}
			},
		},
		{
			name:    "whoami",
			summary: "Show the stored session without calling the API",
			setup: func(flags *pflag.FlagSet) runFunc {
				return func(ctx context.Context, a *app, args []string) error {
					return a.printJSON(a.accounts.Whoami())
				}
			},
		},
		{
			name:    "register",
			summary: "Create an account",
			setup: func(flags *pflag.FlagSet) runFunc {
				var req accounts.RegisterRequest
				flags.StringVarP(&req.Username, "username", "u", "", "new username")
				flags.StringVar(&req.Email, "email", "", "email address")
				flags.StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
				return func(ctx context.Context, a *app, args []string) error {
					pw, err := a.newPassword(req.Password)
					if err != nil {
						return err
					}
					req.Password = pw
					msg, err := a.accounts.Register(ctx, req)
					if err != nil {
						return err
					}
					return a.printMessage(msg)
				}
			},
		},
		{
			name:    "forgot-password",
			summary: "Email a password reset link",
			setup: func(flags *pflag.FlagSet) runFunc {
				email := flags.String("email", "", "account email address")
				return func(ctx context.Context, a *app, args []string) error {
					msg, err := a.accounts.RequestPasswordReset(ctx, *email)
					if err != nil {
						return err
					}
					return a.printMessage(msg)
				}
			},
		},
		{
			name:    "reset-password",
			summary: "Set a new password from a reset link",
			setup: func(flags *pflag.FlagSet) runFunc {
				var reset accounts.PasswordReset
				flags.StringVar(&reset.UID, "uid", "", "uid from the reset link")
				flags.StringVar(&reset.Token, "token", "", "token from the reset link")
				flags.StringVarP(&reset.Password, "password", "p", "", "new password (prompted when omitted)")
				return func(ctx context.Context, a *app, args []string) error {
					if reset.Password != "" {
						reset.ConfirmPassword = reset.Password
					} else {
						pw, err := a.env.readPassword("New password: ")
						if err != nil {
							return err
						}
						confirm, err := a.env.readPassword("Confirm password: ")
						if err != nil {
							return err
						}
						reset.Password, reset.ConfirmPassword = pw, confirm
					}
					msg, err := a.accounts.ConfirmPasswordReset(ctx, reset)
					if err != nil {
						return err
					}
					return a.printMessage(msg)
				}
			},
		},
	}
}

func (a *app) passwordOrPrompt(password, prompt string) (string, error) {
	if password != "" {
		return password, nil
	}
	return a.env.readPassword(prompt)
}

// newPassword prompts twice when no password was given on the command line.
func (a *app) newPassword(password string) (string, error) {
	if password != "" {
		return password, nil
	}
	pw, err := a.env.readPassword("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := a.env.readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", fmt.Errorf("[register] %w: %w", errors.ErrInvalidRequest, accounts.PasswordsDontMatchErr)
	}
	return pw, nil
}
