package travels

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-travels-client/authmodel"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// ScanTicket looks up the ticket a decoded QR payload points at. The payload
// is either a link on the API's own origin or a path relative to it; links to
// any other origin are refused so the bearer token never leaves the API.
func (s *Service) ScanTicket(ctx context.Context, payload string) (*TicketCheck, error) {
	path, err := TicketPath(s.api.BaseURL(), payload)
	if err != nil {
		return nil, err
	}

	var check TicketCheck
	if err := s.get(ctx, path, &check); err != nil {
		return nil, notFound("ScanTicket", err)
	}
	return &check, nil
}

// MarkTicketUsed records that the ticket has been presented.
func (s *Service) MarkTicketUsed(ctx context.Context, ticketID int) (string, error) {
	if err := requireID("MarkTicketUsed", ticketID); err != nil {
		return "", err
	}
	var resp authmodel.MessageResponse
	if err := s.post(ctx, pathf(markTicketUsedPath, ticketID), nil, &resp); err != nil {
		return "", notFound("MarkTicketUsed", err)
	}
	s.logger.Info().Int("ticket_id", ticketID).Msg("Ticket marked as used")
	return resp.Message, nil
}

// JourneyIsToday reports whether the ticket is for the current day in the
// location of now.
func (s *Service) JourneyIsToday(t *TicketCheck) bool {
	if t == nil || t.JourneyDate == "" {
		return false
	}
	return t.JourneyDate == s.nowTime().Format(journeyDateLayout)
}

// TicketPath turns a QR payload into a request path relative to baseURL.
func TicketPath(baseURL, payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[TicketPath] empty ticket payload")
	}

	if !isAbsoluteURL(payload) {
		return ensureSlash(payload), nil
	}

	target, err := url.Parse(payload)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[TicketPath] unreadable ticket link: %v", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidConfig, "[TicketPath] invalid base url: %v", err)
	}
	if !strings.EqualFold(target.Scheme, base.Scheme) || !strings.EqualFold(target.Host, base.Host) {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[TicketPath] ticket link points at %s, not %s", target.Host, base.Host)
	}

	path := target.EscapedPath()
	if prefix := strings.TrimRight(base.EscapedPath(), "/"); prefix != "" {
		path = strings.TrimPrefix(path, prefix)
	}
	path = ensureSlash(path)
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return path, nil
}

func isAbsoluteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func ensureSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
