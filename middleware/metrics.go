package middleware

import (
	"net/http"
	"time"

	"github.com/Dosada05/tournament-stats/metrics"
)

// Metrics records one observation per request labelled by route pattern,
// method and status code.
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)
			recorder.HTTPRequest(routePattern(r), r.Method, rw.status, time.Since(start))
		})
	}
}
