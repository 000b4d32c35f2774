// Package api serves the read-only planner HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/v2g-planner/api/kpis"
	"github.com/kilianp07/v2g-planner/api/solves"
	"github.com/kilianp07/v2g-planner/core/journal"
	eco "github.com/kilianp07/v2g-planner/core/metrics/eco"
	"github.com/kilianp07/v2g-planner/infra/logger"
)

// Backends are the stores the API reads. Nil stores leave their routes
// unregistered.
type Backends struct {
	Journal        journal.Store
	KPIs           eco.Store
	EmissionFactor float64
}

// NewMux routes /api/solves and /api/kpis/{mode}.
func NewMux(b Backends, token string) *http.ServeMux {
	mux := http.NewServeMux()
	if b.Journal != nil {
		mux.Handle("/api/solves", solves.NewHandler(b.Journal, token))
	}
	if b.KPIs != nil {
		mux.Handle("/api/kpis/", kpis.NewHandler(b.KPIs, b.EmissionFactor, token))
	}
	return mux
}

// Serve runs h on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("api-server").Warnf("api server shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
