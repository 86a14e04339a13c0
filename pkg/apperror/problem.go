package apperror

import (
	"net/http"
)

// ProblemContentType is the media type for problem details responses.
const ProblemContentType = "application/problem+json"

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc9110#section-15.5.1",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc9110#section-15.5.5",
	http.StatusConflict:            "https://tools.ietf.org/html/rfc9110#section-15.5.10",
	http.StatusUnprocessableEntity: "https://tools.ietf.org/html/rfc9110#section-15.5.21",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc9110#section-15.6.1",
}

// ProblemDetails is the RFC 9457 response body.
type ProblemDetails struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ProblemDetails renders the error as a problem details body.
func (e *Error) ProblemDetails() ProblemDetails {
	title := e.Title
	if title == "" {
		title = http.StatusText(e.HTTPStatus)
	}
	return ProblemDetails{
		Type:   problemTypes[e.HTTPStatus],
		Title:  title,
		Status: e.HTTPStatus,
		Detail: e.Message,
	}
}

// Map returns the body as a map, leaving out empty optional members.
func (p ProblemDetails) Map() map[string]any {
	m := map[string]any{
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Type != "" {
		m["type"] = p.Type
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	return m
}
