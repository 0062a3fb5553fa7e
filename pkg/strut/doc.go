// Package strut turns declarative controller and endpoint descriptions into
// live handlers on an HTTP engine. Controllers declare their endpoints and
// typed parameter bindings through the builder API; the binder walks those
// declarations at startup, creates one singleton instance per controller and
// registers a dispatcher per endpoint that extracts arguments from the
// request, invokes the endpoint method and maps the result (or any failure)
// onto the HTTP response.
//
// Engine adapters for Echo, Gin and Fiber live in the adapters subpackage.
package strut
