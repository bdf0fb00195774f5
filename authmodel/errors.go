package authmodel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// APIError is the error body returned by the travels API. Depending on the
// view it carries "error", "message" or "detail", or a map of field errors.
type APIError struct {
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
	Detail  string              `json:"detail,omitempty"`
	Fields  map[string][]string `json:"-"`
}

// ParseAPIError decodes body into an APIError. ok is false when the body
// carries nothing recognisable.
func ParseAPIError(body []byte) (APIError, bool) {
	var apiErr APIError
	if len(body) == 0 {
		return apiErr, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr, false
	}

	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			switch key {
			case "error":
				apiErr.Error = s
			case "message":
				apiErr.Message = s
			case "detail":
				apiErr.Detail = s
			default:
				apiErr.addField(key, s)
			}
			continue
		}

		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			for _, item := range list {
				apiErr.addField(key, item)
			}
		}
	}

	return apiErr, apiErr.Text() != ""
}

func (e *APIError) addField(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Text returns the most specific human readable message.
func (e APIError) Text() string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	}

	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return strings.Join(parts, "; ")
}
