package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/openfroyo/pagedata/pkg/config"
	"github.com/openfroyo/pagedata/pkg/datagetter"
	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/telemetry"
)

// newSQLiteStore is replaced in tests.
var newSQLiteStore = graph.NewSQLiteStore

// app is what every store-backed command runs against.
type app struct {
	cfg *config.Config
	tel *telemetry.Telemetry

	store  graph.Store
	memory *graph.MemoryStore // memory backend only
	sqlite *graph.SQLiteStore // sqlite backend only
}

// newApp loads the configuration, applies overrides, and opens the store.
func newApp(ctx context.Context, overrides ...func(*config.Config)) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	for _, o := range overrides {
		o(cfg)
	}
	if len(overrides) > 0 {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	tel, err := telemetry.NewTelemetry(&cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	a := &app{cfg: cfg, tel: tel}
	if err := a.openStore(ctx); err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case config.BackendSQLite:
		sc := a.cfg.Store.SQLite
		if sc.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(sc.Path), 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		store, err := newSQLiteStore(graph.SQLiteConfig{
			Path:            sc.Path,
			MaxOpenConns:    sc.MaxOpenConns,
			MaxIdleConns:    sc.MaxIdleConns,
			ConnMaxLifetime: sc.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		n, err := seedSQLite(ctx, store, a.cfg.Models)
		if err != nil {
			_ = store.Close()
			return err
		}
		a.store, a.sqlite = store, store
		a.tel.Metrics.SetStoreTriples(n)

		log.Debug().Str("path", sc.Path).Int("triples", n).Msg("Opened SQLite store")

	default:
		triples, err := graph.LoadModelFiles(a.cfg.Models)
		if err != nil {
			return err
		}
		a.memory = graph.NewMemoryStore(triples...)
		a.store = a.memory
		a.tel.Metrics.SetStoreTriples(a.memory.Len())

		log.Debug().Strs("models", a.cfg.Models).Int("triples", a.memory.Len()).Msg("Loaded models into memory")
	}
	return nil
}

// seedSQLite initializes and migrates store, imports the model files and
// returns the stored triple count.
func seedSQLite(ctx context.Context, store *graph.SQLiteStore, models []string) (int, error) {
	if err := store.Init(ctx); err != nil {
		return 0, err
	}
	if err := store.Migrate(ctx); err != nil {
		return 0, err
	}
	if len(models) > 0 {
		triples, err := graph.LoadModelFiles(models)
		if err != nil {
			return 0, err
		}
		if err := store.Add(ctx, triples...); err != nil {
			return 0, err
		}
	}
	return store.Count(ctx)
}

func (a *app) service() *datagetter.Service {
	return datagetter.NewService(a.store, datagetter.WithTelemetry(a.tel))
}

func (a *app) close(ctx context.Context) {
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}
	if err := a.tel.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to shut down telemetry")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
