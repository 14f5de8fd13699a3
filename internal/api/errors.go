package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// StatusError is returned for any response with a status of 400 or above.
// Detail and Fields carry the backend's error payload when it has one.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
	Fields     map[string][]string
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// FieldMessages flattens Fields into "field: message" lines, sorted by field.
func (e *StatusError) FieldMessages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		for _, m := range e.Fields[k] {
			out = append(out, k+": "+m)
		}
	}
	return out
}

// RefreshError reports that the session could not be renewed. The session has
// been cleared by the time it is returned.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "refresh session: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 if err did not come
// from a backend response.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	return StatusCode(err) == code
}

// IsRefreshFailure reports whether err means the session was lost.
func IsRefreshFailure(err error) bool {
	var re *RefreshError
	return errors.As(err, &re)
}

func newStatusError(method, path string, status int, body []byte) *StatusError {
	se := &StatusError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Body:       body,
	}
	se.Detail, se.Fields = parseErrorBody(body)
	return se
}

// parseErrorBody understands the two payload shapes a REST framework backend
// produces: {"detail": "..."} and {"field": ["msg", ...], ...}.
func parseErrorBody(body []byte) (string, map[string][]string) {
	if len(body) == 0 {
		return "", nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		var list []string
		if json.Unmarshal(body, &list) == nil {
			return strings.Join(list, "; "), nil
		}
		return "", nil
	}

	var detail string
	fields := map[string][]string{}

	for k, v := range raw {
		msgs := messages(v)
		if len(msgs) == 0 {
			continue
		}
		switch k {
		case "detail", "error", "message":
			detail = strings.Join(msgs, "; ")
		case "non_field_errors":
			if detail == "" {
				detail = strings.Join(msgs, "; ")
			}
		default:
			fields[k] = msgs
		}
	}

	if len(fields) == 0 {
		fields = nil
	}
	return detail, fields
}

func messages(v json.RawMessage) []string {
	var s string
	if json.Unmarshal(v, &s) == nil {
		return []string{s}
	}

	var list []any
	if json.Unmarshal(v, &list) == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}

	var nested map[string]json.RawMessage
	if json.Unmarshal(v, &nested) == nil {
		var out []string
		for k, nv := range nested {
			for _, m := range messages(nv) {
				out = append(out, k+": "+m)
			}
		}
		sort.Strings(out)
		return out
	}

	return nil
}
