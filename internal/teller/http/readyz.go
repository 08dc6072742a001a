package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
	"github.com/redis/go-redis/v9"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and the status of the database and, when configured, Redis
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tellersdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	tellersdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &tellersdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// A Redis outage reports degraded but stays ready.
		if rdb != nil {
			checks.Redis = "ok"
			if err := rdb.Ping(r.Context()).Err(); err != nil {
				checks.Redis = "error: " + err.Error()
				overallStatus = "degraded"
			}
		}

		httpx.WriteJSON(w, statusCode, tellersdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
