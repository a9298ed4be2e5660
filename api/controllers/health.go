package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/giftly/giftly-backend/api/responses"
	"github.com/giftly/giftly-backend/pkg/config"
	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness without touching any dependency.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Giftly-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and Redis so load balancers stop routing to
// an instance that lost a backing store.
func HealthReady(cfg *config.Config, database, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Giftly-Env", cfg.App.Env)

		var err error
		if database != nil {
			err = multierr.Append(err, database.Ping(r.Context()))
		}
		if cache != nil {
			err = multierr.Append(err, cache.Ping(r.Context()))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
