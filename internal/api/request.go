package api

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Request is a single outbound call. It is built per call and never stored.
type Request struct {
	Method string
	// Path is relative to the client's base URL (e.g. "cart/add/"). Absolute
	// URLs are allowed; the bearer credential is only attached when their host
	// is trusted.
	Path   string
	Query  url.Values
	Body   any // JSON-encoded when non-nil
	Header http.Header
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the JSON body into v. Empty bodies (204) leave v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 || v == nil {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// attempt marks where a logical request is in its lifecycle. It is a value:
// the retry gets a new attempt, the original is never mutated.
type attempt struct {
	requestID string
	retried   bool
	// bearer overrides the store lookup; set on the post-refresh resend.
	bearer string
	// anonymous requests never carry a bearer credential.
	anonymous bool
}

func (a attempt) retry(bearer string) attempt {
	return attempt{requestID: a.requestID, retried: true, bearer: bearer}
}
