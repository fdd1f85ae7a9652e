package commands

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openfroyo/pagedata/pkg/config"
	"github.com/openfroyo/pagedata/pkg/datagetter"
	"github.com/openfroyo/pagedata/pkg/graph"
)

func newServeCommand() *cobra.Command {
	var (
		listen string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve page data over HTTP",
		Long: `Serve page data over HTTP.

Endpoints:
  GET /pages/data?uri=<pageURI>     merged page data of the page's getters
  GET /pages/getters?uri=<pageURI>  resolution report for every link
  GET /healthz                      store health
  GET /metrics                      Prometheus metrics (path configurable)

Other query parameters of /pages/data are passed to the getters as page data.
With --watch the model files are reloaded when they change (memory backend).`,
		Example: `  # Serve the configured models
  pagedata serve -c pagedata.yaml

  # Reload models on change
  pagedata serve -c pagedata.yaml --watch --listen :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, func(cfg *config.Config) {
				if listen != "" {
					cfg.Server.Listen = listen
				}
				if watch {
					cfg.Watch = true
				}
			})
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if a.cfg.Watch {
				w := graph.NewWatcher(a.memory, a.cfg.Models)
				w.OnReload = func(triples int, err error) {
					if err != nil {
						a.tel.Metrics.RecordModelReload("error")
						log.Error().Err(err).Msg("Model reload failed, keeping previous model")
						return
					}
					a.tel.Metrics.RecordModelReload("ok")
					a.tel.Metrics.SetStoreTriples(triples)
					log.Info().Int("triples", triples).Msg("Reloaded models")
				}
				go func() {
					if err := w.Run(ctx); err != nil {
						log.Error().Err(err).Msg("Model watcher stopped")
					}
				}()
			}

			return serve(ctx, a)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload model files when they change")

	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Listen,
		Handler:           newHandler(a),
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", srv.Addr).Str("backend", a.cfg.Store.Backend).Msg("Serving page data")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func newHandler(a *app) http.Handler {
	svc := a.service()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /pages/data", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pageData := make(map[string]any, len(q))
		for k, v := range q {
			if k != "uri" && len(v) > 0 {
				pageData[k] = v[0]
			}
		}

		data, err := svc.PageData(r.Context(), q.Get("uri"), pageData)
		if err != nil {
			writeError(w, err)
			return
		}
		writeResponse(w, http.StatusOK, data)
	})

	mux.HandleFunc("GET /pages/getters", func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Resolve(r.Context(), r.URL.Query().Get("uri"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeResponse(w, http.StatusOK, res)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if a.sqlite != nil {
			if err := a.sqlite.HealthCheck(r.Context()); err != nil {
				writeResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		writeResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if a.cfg.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+a.tel.Metrics.Path(), a.tel.Metrics.Handler())
	}

	return mux
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case datagetter.IsInvalidInput(err):
		status = http.StatusBadRequest
	case datagetter.IsStoreAccess(err):
		status = http.StatusServiceUnavailable
	}
	writeResponse(w, status, map[string]string{"error": err.Error()})
}

func writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := writeJSON(w, v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
