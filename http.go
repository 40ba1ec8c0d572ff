package capsule

import "net/http"

// ScopeMiddleware returns standard net/http middleware that opens a fresh
// scope on the container for the duration of each request and guarantees the
// scope ends afterwards, including when the handler panics (the panic
// continues up the chain after cleanup). Mount it on any router that accepts
// func(http.Handler) http.Handler, such as chi:
//
//	r := chi.NewRouter()
//	r.Use(capsule.ScopeMiddleware(c))
//
// The container holds a single current scope, so requests that resolve
// scoped services must not overlap; serve them serially or give each unit of
// work its own container.
func ScopeMiddleware(c *Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.BeginScope(nil)
			defer c.EndScope()

			next.ServeHTTP(w, r)
		})
	}
}
