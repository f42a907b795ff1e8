package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"navaid/internal/config"
	"navaid/internal/handler"
	"navaid/internal/logger"
	"navaid/internal/repository/sqlite"
	"navaid/internal/routes"
	"navaid/internal/service/ai"
	"navaid/internal/service/history"
	"navaid/internal/vision"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	config    *config.Config
	logger    *logger.Logger
	detector  *ai.Detector
	historyDB *sqlite.DB
	pipeline  *vision.Pipeline
	processor *handler.Processor
}

// NewApp loads the model and opens the optional history store. The model is
// the single shared handle injected into every request path.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	detector, err := ai.NewDetector(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load detection model: %w", err)
	}

	a := &App{
		config:   cfg,
		logger:   log,
		detector: detector,
		pipeline: vision.NewPipeline(detector),
	}

	var recorder *history.Recorder
	if cfg.HistoryDB != "" {
		db, err := sqlite.New(cfg.HistoryDB)
		if err != nil {
			detector.Close()
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		a.historyDB = db
		recorder = history.NewRecorder(sqlite.NewHistoryRepository(db), log)
		log.Info("Detection history enabled: %s", cfg.HistoryDB)
	}

	a.processor = handler.NewProcessor(a.pipeline, recorder, log)
	return a, nil
}

// Pipeline exposes the detection pipeline for one-shot use from the CLI.
func (a *App) Pipeline() *vision.Pipeline {
	return a.pipeline
}

// Handler returns the fully wired HTTP handler.
func (a *App) Handler() http.Handler {
	return routes.SetupRoutes(a.processor, a.config, a.logger)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.config.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}

	a.logger.Info("🚀 Navigation Aid API listening on http://%s", a.config.Addr())
	a.logger.Info("🤖 AI Model: %s", a.config.ModelPath)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	a.logger.Info("Server stopped")
	return nil
}

// Close releases the model and the history database.
func (a *App) Close() error {
	var errs []error
	if a.historyDB != nil {
		errs = append(errs, a.historyDB.Close())
	}
	errs = append(errs, a.detector.Close())
	return errors.Join(errs...)
}
