package middleware

import (
	"net/http"
	"time"
)

type httpObserver interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
}

// Metrics records one observation per request, labelled by the chi route
// pattern so path parameters do not explode cardinality.
func Metrics(observer httpObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			route := routePattern(r)
			if route == r.URL.Path && rec.Status() == http.StatusNotFound {
				route = "unmatched"
			}
			observer.ObserveHTTP(r.Method, route, rec.Status(), time.Since(start))
		})
	}
}
