package accounts

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-travels-client/authmodel"
	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// RegisterRequest is the body of the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the fields the API would otherwise reject.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// PasswordReset is the body of the reset confirmation endpoint. UID and Token
// come from the emailed reset link.
type PasswordReset struct {
	UID             string `json:"uid"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

func (p PasswordReset) Validate() error {
	if p.UID == "" || p.Token == "" {
		return ResetLinkInvalidErr
	}
	if p.Password == "" {
		return fmt.Errorf("password is required")
	}
	if p.Password != p.ConfirmPassword {
		return PasswordsDontMatchErr
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return EmailRequiredErr
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return InvalidEmailErr
	}
	return nil
}

// Register creates an account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("[Register] %w: %w", errors.ErrInvalidRequest, err)
	}

	var resp authmodel.MessageResponse
	err := s.api.DoJSON(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   RegisterPath,
		Body:   client.JSON(req),
	}, &resp)
	if err != nil {
		return "", errors.Wrapf(err, "[Register] registration failed")
	}

	s.logger.Info().Str("username", req.Username).Msg("Account registered")
	return resp.Message, nil
}

// RequestPasswordReset asks the API to email a reset link. The API answers
// the same way whether or not the address is known.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return "", fmt.Errorf("[RequestPasswordReset] %w: %w", errors.ErrInvalidRequest, err)
	}

	var resp authmodel.MessageResponse
	err := s.api.DoJSON(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   PasswordResetRequestPath,
		Body:   client.JSON(map[string]string{"email": email}),
	}, &resp)
	if err != nil {
		return "", errors.Wrapf(err, "[RequestPasswordReset] request failed")
	}
	return resp.Message, nil
}

// ConfirmPasswordReset sets a new password using the uid and token from the
// reset link. A 400 from the API means the link is no longer usable.
func (s *Service) ConfirmPasswordReset(ctx context.Context, reset PasswordReset) (string, error) {
	if err := reset.Validate(); err != nil {
		return "", fmt.Errorf("[ConfirmPasswordReset] %w: %w", errors.ErrInvalidRequest, err)
	}

	var resp authmodel.MessageResponse
	err := s.api.DoJSON(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   PasswordResetConfirmPath,
		Body:   client.JSON(reset),
	}, &resp)
	if err != nil {
		if client.StatusCode(err) == http.StatusBadRequest {
			return "", errors.Wrapf(ResetLinkInvalidErr, "[ConfirmPasswordReset] %s", apiMessage(err))
		}
		return "", errors.Wrapf(err, "[ConfirmPasswordReset] request failed")
	}
	return resp.Message, nil
}
