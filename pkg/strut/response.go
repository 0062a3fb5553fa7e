package strut

import "net/http"

// Response represents an HTTP response with a custom status code and body.
// Endpoint methods return one when they need to control the status code,
// headers, or cookies of the response.
type Response struct {
	// StatusCode is the HTTP status code to return (e.g., 200, 201, 404)
	StatusCode int `json:"-"`

	// Body is the response body, JSON-encoded unless ContentType says otherwise
	Body any `json:"body,omitempty"`

	// ContentType overrides the default JSON serialization
	ContentType string `json:"-"`

	// Headers are set on the response before the body is written
	Headers map[string]string `json:"-"`

	// Cookies are attached to the response
	Cookies []Cookie `json:"-"`

	finished bool
}

// Finisher marks a return value signalling that the endpoint already wrote
// the response itself; the dispatcher skips its own write step for it.
type Finisher interface {
	ResponseFinished() bool
}

// ResponseFinished implements Finisher.
func (r *Response) ResponseFinished() bool {
	return r != nil && r.finished
}

// NewResponse creates a new Response with the specified status code and body.
func NewResponse(statusCode int, body any) *Response {
	return &Response{
		StatusCode: statusCode,
		Body:       body,
	}
}

// Finished returns a marker response telling the dispatcher the endpoint has
// written the response directly.
func Finished() *Response {
	return &Response{finished: true}
}

// OK creates a 200 OK response with the given body
func OK(body any) *Response {
	return NewResponse(http.StatusOK, body)
}

// Created creates a 201 Created response with the given body
func Created(body any) *Response {
	return NewResponse(http.StatusCreated, body)
}

// NoContent creates a 204 No Content response
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// BadRequest creates a 400 Bad Request response with the given error message
func BadRequest(message string) *Response {
	return NewResponse(http.StatusBadRequest, map[string]string{"error": message})
}

// NotFound creates a 404 Not Found response with the given error message
func NotFound(message string) *Response {
	return NewResponse(http.StatusNotFound, map[string]string{"error": message})
}

// InternalServerError creates a 500 Internal Server Error response with the
// given error message
func InternalServerError(message string) *Response {
	return NewResponse(http.StatusInternalServerError, map[string]string{"error": message})
}

// WithHeader returns the response with an additional header set.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// WithContentType returns the response with an overridden content type. The
// body must be a string or []byte when a content type is set.
func (r *Response) WithContentType(contentType string) *Response {
	r.ContentType = contentType
	return r
}

// WithCookie returns the response with an additional cookie attached.
func (r *Response) WithCookie(cookie Cookie) *Response {
	r.Cookies = append(r.Cookies, cookie)
	return r
}

// WithSimpleCookie returns the response with a name/value cookie attached.
func (r *Response) WithSimpleCookie(name, value string) *Response {
	return r.WithCookie(Cookie{Name: name, Value: value, Path: "/"})
}

// write sends the response through the context. Used by the dispatcher when
// an endpoint returns a *Response.
func (r *Response) write(c Context) error {
	for key, value := range r.Headers {
		c.SetHeader(key, value)
	}
	for _, cookie := range r.Cookies {
		c.SetCookie(cookie)
	}

	code := r.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	if r.ContentType != "" {
		switch body := r.Body.(type) {
		case []byte:
			return c.Blob(code, r.ContentType, body)
		case string:
			return c.Blob(code, r.ContentType, []byte(body))
		default:
			return c.Blob(code, r.ContentType, []byte(""))
		}
	}
	if r.Body == nil {
		return c.NoContent(code)
	}
	return c.JSON(code, r.Body)
}
