package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	baseURLVar     = "TRAVELS_API_URL"
	timeoutVar     = "TRAVELS_API_TIMEOUT"
	refreshPathVar = "TRAVELS_REFRESH_PATH"
	loginRouteVar  = "TRAVELS_LOGIN_ROUTE"

	defaultTimeout = 15 * time.Second
)

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshPath() string
	GetLoginRoute() string
}

type API struct {
	file *FileConfig
}

var _ APIConfig = API{}

// GetBaseURL returns the travels API address without a trailing slash (e.g. "http://localhost:8000")
func (a API) GetBaseURL() string {
	var fileValue string
	if a.file != nil {
		fileValue = a.file.API.BaseURL
	}
	return strings.TrimRight(lookup(baseURLVar, fileValue, "http://localhost:8000"), "/")
}

func (a API) GetRequestTimeout() time.Duration {
	var fileValue string
	if a.file != nil {
		fileValue = a.file.API.Timeout
	}
	raw := lookup(timeoutVar, fileValue, "")
	if raw == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("value", raw).Msg("Ignoring invalid API timeout")
		return defaultTimeout
	}
	return d
}

func (a API) GetRefreshPath() string {
	var fileValue string
	if a.file != nil {
		fileValue = a.file.API.RefreshPath
	}
	return lookup(refreshPathVar, fileValue, "/api/token/refresh/")
}

// GetLoginRoute is where the user is sent when the session can no longer be refreshed
func (a API) GetLoginRoute() string {
	var fileValue string
	if a.file != nil {
		fileValue = a.file.API.LoginRoute
	}
	return lookup(loginRouteVar, fileValue, "/login")
}
