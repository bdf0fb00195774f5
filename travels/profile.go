package travels

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// GetProfile returns the signed-in user's profile. Avatar is a path relative
// to the API base URL; see AvatarURL.
func (s *Service) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := s.get(ctx, ProfilePath, &profile); err != nil {
		return nil, errors.Wrapf(err, "[GetProfile] request failed")
	}
	return &profile, nil
}

// UpdateProfile writes the editable profile fields and, when given, a new
// avatar, then returns the profile as the API now holds it.
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	form := &client.Form{}
	form.Add("email", update.Email)
	form.Add("first_name", update.FirstName)
	form.Add("last_name", update.LastName)
	if update.Avatar != nil {
		form.AddFile("avatar", update.Avatar.FileName, update.Avatar.ContentType, update.Avatar.Content)
	}

	err := s.api.DoJSON(ctx, &client.Request{
		Method: http.MethodPut,
		Path:   ProfilePath,
		Body:   client.Multipart(form),
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "[UpdateProfile] request failed")
	}
	return s.GetProfile(ctx)
}

// AvatarURL resolves a profile's avatar path against the API base URL.
func (s *Service) AvatarURL(p *Profile) string {
	if p == nil || p.Avatar == "" {
		return ""
	}
	if isAbsoluteURL(p.Avatar) {
		return p.Avatar
	}
	return s.api.BaseURL() + ensureSlash(p.Avatar)
}
