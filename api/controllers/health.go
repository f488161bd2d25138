package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gardenaqua/gardenaqua-backend/api/responses"
	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

const envHeader = "X-GardenAqua-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports whether the backing stores answer within a short
// deadline.
func HealthReady(cfg *config.Config, logg *logger.Logger, database pinger, sessions pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if database != nil {
			if err := database.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
			} else {
				checks["database"] = "up"
			}
		}
		if sessions != nil {
			if err := sessions.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "up"
			}
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
