package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/jeremyjsx/creativelab/internal/storage"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps lists the backends to probe. Nil fields are reported as skipped.
type HealthDeps struct {
	DB      *sql.DB
	Storage storage.Storage
	Cache   Pinger
	Broker  Pinger
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health reports "unhealthy" when the database or object storage fails and
// "degraded" when only the cache or broker does.
func Health(deps *HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := "healthy"
		mark := func(name string, err error, severity string) {
			if err == nil {
				checks[name] = "ok"
				return
			}
			checks[name] = "unhealthy"
			if status != "unhealthy" {
				status = severity
			}
		}

		if deps.DB != nil {
			mark("db", deps.DB.PingContext(ctx), "unhealthy")
		} else {
			checks["db"] = "skipped"
		}

		if deps.Storage != nil {
			_, err := deps.Storage.Exists(ctx, "__health__")
			mark("s3", err, "unhealthy")
		} else {
			checks["s3"] = "skipped"
		}

		if deps.Cache != nil {
			mark("redis", deps.Cache.Ping(ctx), "degraded")
		} else {
			checks["redis"] = "skipped"
		}

		if deps.Broker != nil {
			mark("rabbitmq", deps.Broker.Ping(ctx), "degraded")
		} else {
			checks["rabbitmq"] = "skipped"
		}

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, healthResponse{Status: status, Checks: checks})
	}
}
