// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps service errors onto status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/log"
	"github.com/jfprgin/home-budget/internal/services"
)

const (
	detailNotFound       = "Not found."
	detailInvalidPage    = "Invalid page."
	detailInternal       = "Internal server error."
	detailNoCredentials  = "Authentication credentials were not provided."
	detailTokenInvalid   = "Given token not valid for any token type"
	detailBadCredentials = "No active account found with the given credentials"
	detailLogoutFailed   = "Invalid token or token has already been blacklisted."
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Detail sets a {"detail": msg} body.
func (b *JSONResponseBuilder) Detail(msg string) *JSONResponseBuilder {
	return b.Body(map[string]string{"detail": msg})
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"` + detailInternal + `"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
}

// ErrorResponse creates a {"detail": ...} response with the given status.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Detail(message)
}

// NotFoundError creates the 404 returned for absent and foreign rows alike.
func NotFoundError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, detailNotFound)
}

// UnauthorizedError creates a 401 carrying the Bearer challenge.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message).
		Header("WWW-Authenticate", `Bearer realm="api"`)
}

// ValidationErrorResponse renders field errors as a 400.
func ValidationErrorResponse(verr *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).Body(verr.Fields)
}

// InternalServerError creates the opaque 500 body.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, detailInternal)
}

// writeError maps err onto a response. Unexpected errors are logged here,
// once, and reach the client only as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationErrorResponse(verr).Write(w)
	case errors.Is(err, errMalformedBody):
		ErrorResponse(http.StatusBadRequest, strings.TrimPrefix(err.Error(), errMalformedBody.Error()+": ")).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError().Write(w)
	case errors.Is(err, services.ErrInvalidCredentials):
		UnauthorizedError(detailBadCredentials).Write(w)
	case errors.Is(err, services.ErrUnauthenticated):
		NewJSONResponse().
			Status(http.StatusUnauthorized).
			Header("WWW-Authenticate", `Bearer realm="api"`).
			Body(map[string]string{"detail": detailTokenInvalid, "code": "token_not_valid"}).
			Write(w)
	case errors.Is(err, services.ErrLogoutFailed):
		NewJSONResponse().
			Status(http.StatusBadRequest).
			Body(map[string]string{"error": detailLogoutFailed}).
			Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeInternal)
		InternalServerError().Write(w)
	}
}

// pageBody is the envelope of every paginated list.
type pageBody struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// paginated builds the list envelope with absolute next/previous links.
// The link to the first page drops the page parameter.
func paginated(r *http.Request, p core.Page, total int, results any) pageBody {
	body := pageBody{Count: total, Results: results}
	if p.Size > 0 && p.Offset()+p.Size < total {
		next := pageURL(r, p.Number+1)
		body.Next = &next
	}
	if p.Number > 1 {
		prev := pageURL(r, p.Number-1)
		body.Previous = &prev
	}
	return body
}

// pageOutOfRange reports a page past the last one. The first page always
// exists, even when empty.
func pageOutOfRange(p core.Page, total int) bool {
	return p.Number > 1 && p.Offset() >= total
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
