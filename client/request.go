package client

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// Request is an API call relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   Body

	// ContentType overrides the body's content type. It is ignored for
	// multipart bodies, whose boundary-bearing type always wins.
	ContentType string
	Header      http.Header
}

// pendingRequest is a Request in flight. The body is encoded once and the
// retried flag makes the refresh-and-retry cycle happen at most once.
type pendingRequest struct {
	id          string
	method      string
	path        string
	query       url.Values
	header      http.Header
	body        []byte
	contentType string
	retried     bool
}

func newPendingRequest(req *Request) (*pendingRequest, error) {
	if req == nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "nil request")
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	p := &pendingRequest{
		id:     uuid.NewString(),
		method: method,
		path:   ensureLeadingSlash(req.Path),
		query:  req.Query,
		header: make(http.Header),
	}

	for key, values := range req.Header {
		if http.CanonicalHeaderKey(key) == "Authorization" {
			continue
		}
		for _, v := range values {
			p.header.Add(key, v)
		}
	}

	if req.Body != nil {
		encoded, err := req.Body.encode()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "%s %s: %v", method, p.path, err)
		}
		p.body = encoded.data
		p.contentType = encoded.contentType
		if req.ContentType != "" && !encoded.multipart {
			p.contentType = req.ContentType
		}
	} else if req.ContentType != "" {
		p.contentType = req.ContentType
	}

	return p, nil
}

func ensureLeadingSlash(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	return "/" + trimmed
}

// Response is a received HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
	Retried    bool
}

// Decode unmarshals the JSON body into out. An empty body is not an error.
func (r *Response) Decode(out any) error {
	if r == nil || out == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Wrapf(err, "decode response body")
	}
	return nil
}
