// Package problem writes RFC 7807 problem details responses.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ContentType is the media type of problem responses.
const ContentType = "application/problem+json"

// Details is the error body returned by every endpoint.
type Details struct {
	Type     string        `json:"type,omitempty" example:"https://tools.ietf.org/html/rfc9110#section-15.5.1"`
	Title    string        `json:"title" example:"Bad Request"`
	Status   int           `json:"status" example:"400"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty" example:"/api/v1/status"`
	TraceID  string        `json:"traceId,omitempty"`
	Code     string        `json:"code,omitempty" example:"UnsupportedApiVersion"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail is one entry of the errors list.
type ErrorDetail struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// New returns a problem for status with the standard title.
func New(r *http.Request, status int, detail string) *Details {
	p := &Details{
		Type:   typeFor(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	if r != nil {
		p.Instance = r.URL.Path
		p.TraceID = traceID(r)
	}

	return p
}

// WithCode sets a machine readable error code.
func (p *Details) WithCode(code string) *Details {
	p.Code = code

	return p
}

// WithError appends an entry to the errors list.
func (p *Details) WithError(name, description string) *Details {
	p.Errors = append(p.Errors, ErrorDetail{Name: name, Description: description})

	return p
}

// Write encodes the problem with its status code.
func (p *Details) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)

	//nolint:errcheck // Response writing errors are not recoverable
	json.NewEncoder(w).Encode(p)
}

// Write is a shortcut for New(r, status, detail).Write(w).
func Write(w http.ResponseWriter, r *http.Request, status int, detail string) {
	New(r, status, detail).Write(w)
}

func traceID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}

	return uuid.New().String()
}

func typeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.1"
	case http.StatusUnauthorized:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.2"
	case http.StatusForbidden:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.4"
	case http.StatusNotFound:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.5"
	case http.StatusTooManyRequests:
		return "https://tools.ietf.org/html/rfc6585#section-4"
	case http.StatusInternalServerError:
		return "https://tools.ietf.org/html/rfc9110#section-15.6.1"
	default:
		return "about:blank"
	}
}
