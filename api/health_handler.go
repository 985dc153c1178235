package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 5 * time.Second

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthHandler struct {
	responder   Responder
	db          Pinger
	blobs       storage.Storage
	startupTime time.Time
}

func newHealthHandler(db Pinger, blobs storage.Storage, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		responder:   NewResponder(logger),
		db:          db,
		blobs:       blobs,
		startupTime: startupTime,
	}
}

type healthResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Error         string            `json:"error,omitempty"`
}

func checkResult(err error) string {
	if err != nil {
		return "unhealthy"
	}
	return "ok"
}

// check probes the database and the blob store concurrently
// @Router /health [get]
func (h healthHandler) check() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var dbErr, blobErr error
		var g errgroup.Group
		g.Go(func() error {
			if err := h.db.Ping(ctx); err != nil {
				dbErr = errs.NewServiceUnavailableError("database", err)
			}
			return dbErr
		})
		g.Go(func() error {
			if _, err := h.blobs.Exists(ctx, storage.HealthKey); err != nil {
				blobErr = errs.NewServiceUnavailableError("blob storage", err)
			}
			return blobErr
		})
		err := g.Wait()

		response := healthResponse{
			Status: "healthy",
			Checks: map[string]string{
				"db":      checkResult(dbErr),
				"storage": checkResult(blobErr),
			},
			UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		}

		status := http.StatusOK
		if err != nil {
			response.Status = "unhealthy"
			response.Error = err.Error()
			status = errs.StatusCode(err)
			for _, checkErr := range []error{dbErr, blobErr} {
				var apiErr *errs.ApiErr
				if errors.As(checkErr, &apiErr) {
					h.responder.logger.Warn().Str("error", apiErr.GetFullError()).Msg("Health check failed")
				}
			}
		}

		h.responder.WriteStatusJSON(w, status, response)
	}
}
