package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/config"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

// PprofServer exposes net/http/pprof on a side port. A nil *PprofServer is a valid no-op.
type PprofServer struct {
	srv    *http.Server
	logger *logging.Logger
}

func StartPprofServer(cfg config.Config, logger *logging.Logger) *PprofServer {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PprofEnabled {
		logger.Debug("pprof disabled", "reason", "PPROF_ENABLED=false")
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.PprofAddr,
		Handler:           pprofMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("pprof server starting", "addr", cfg.PprofAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof server failed", "error", err)
		}
	}()

	return &PprofServer{srv: srv, logger: logger}
}

func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func (p *PprofServer) Stop(ctx context.Context) error {
	if p == nil || p.srv == nil {
		return nil
	}

	if err := p.srv.Shutdown(ctx); err != nil {
		return err
	}
	p.logger.Info("pprof server stopped")

	return nil
}
