package wire

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mithrel/oceannotes/internal/autosave"
	"github.com/mithrel/oceannotes/internal/config"
	"github.com/mithrel/oceannotes/internal/kv"
	"github.com/mithrel/oceannotes/internal/logging"
	"github.com/mithrel/oceannotes/internal/notes"
	"github.com/mithrel/oceannotes/internal/render"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg   *viper.Viper
	Log   *zap.Logger
	KV    kv.Store
	Store *notes.Store
}

// BuildApp wires dependencies with the provided config and seeds the store
// on first run. Corrupt stored state is reported to the log, not returned.
func BuildApp(ctx context.Context, cfg *viper.Viper) (*App, error) {
	logger, err := logging.New(cfg.GetString("log.level"), cfg.GetString("log.format"))
	if err != nil {
		return nil, err
	}
	backend, err := kv.Open(ctx, cfg.GetString("storage.url"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store := notes.NewStore(backend,
		notes.WithKey(strings.TrimSpace(cfg.GetString("storage.key"))),
		notes.WithLogger(logger.Named("notes")),
	)
	if err := store.EnsureSeeded(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return &App{
		Cfg:   cfg,
		Log:   logger,
		KV:    backend,
		Store: store,
	}, nil
}

// Renderer returns the markup renderer configured by render.max_heading.
func (a *App) Renderer() render.Renderer {
	return render.Renderer{MaxHeading: a.Cfg.GetInt("render.max_heading")}
}

// AutosaveOptions configures editing sessions from autosave.delay.
func (a *App) AutosaveOptions() []autosave.Option {
	return []autosave.Option{
		autosave.WithDelay(config.AutosaveDelay(a.Cfg)),
		autosave.WithLogger(a.Log.Named("autosave")),
	}
}

// Close flushes the logger and releases the storage backend.
func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.KV.Close()
}
