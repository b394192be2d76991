package httpx

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware = func(http.Handler) http.Handler

// Chain applies middlewares to a handler in declaration order: the
// first middleware listed is the outermost wrapper.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
