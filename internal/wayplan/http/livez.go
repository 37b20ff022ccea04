package http

import (
	"net/http"
	"time"

	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

// LivezHandler reports that the process is up. It never touches the store.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, wayplansdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
