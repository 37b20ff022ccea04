package http

import (
	"net/http"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/store"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

// ReadyzHandler reports whether the service can serve traffic, which at the
// moment means the database answers a ping.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("readiness check failed", "err", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, wayplansdk.HealthResponse{
				Status:  "unavailable",
				Uptime:  time.Since(startTime).String(),
				Version: version,
			})
			return
		}

		httpx.WriteJSON(w, http.StatusOK, wayplansdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
