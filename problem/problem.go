// Package problem writes RFC 7807 problem details responses.
package problem

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const ContentType = "application/problem+json"

type Details struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

var typeURIs = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:        "https://tools.ietf.org/html/rfc9110#section-15.5.2",
	http.StatusForbidden:           "https://tools.ietf.org/html/rfc9110#section-15.5.4",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc9110#section-15.5.5",
	http.StatusConflict:            "https://tools.ietf.org/html/rfc9110#section-15.5.10",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc9110#section-15.6.1",
	http.StatusBadGateway:          "https://tools.ietf.org/html/rfc9110#section-15.6.3",
}

func New(status int, title, detail string) Details {
	typeURI, ok := typeURIs[status]
	if !ok {
		typeURI = "about:blank"
	}
	if title == "" {
		title = http.StatusText(status)
	}
	return Details{Type: typeURI, Title: title, Status: status, Detail: detail}
}

// Write aborts the request with d as the response body.
func Write(c *gin.Context, d Details) {
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(d.Status, d)
}

func Abort(c *gin.Context, status int, title, detail string) {
	Write(c, New(status, title, detail))
}

// Validation writes a 400 problem with per field messages.
func Validation(c *gin.Context, errs map[string][]string) {
	d := New(http.StatusBadRequest, "One or more validation errors occurred.", "")
	d.Errors = errs
	Write(c, d)
}

// Internal logs err and writes a 500 problem that does not leak it.
func Internal(c *gin.Context, msg string, err error) {
	slog.ErrorContext(c.Request.Context(), msg, "error", err, "path", c.Request.URL.Path)
	Abort(c, http.StatusInternalServerError, "Server Error", msg)
}
