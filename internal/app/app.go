// Package app is the composition root shared by the specdex binaries.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/config"
	dbRedis "github.com/kailas-cloud/specdex/internal/db/redis"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/specdex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/specdex/internal/repository/catalog"
	"github.com/kailas-cloud/specdex/internal/repository/ingestrun"
	"github.com/kailas-cloud/specdex/internal/transport/filesystem"
	openaiRec "github.com/kailas-cloud/specdex/internal/transport/openai"
	exportuc "github.com/kailas-cloud/specdex/internal/usecase/export"
	healthuc "github.com/kailas-cloud/specdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/specdex/internal/usecase/ingest"
	"github.com/kailas-cloud/specdex/internal/usecase/recognition"
	searchuc "github.com/kailas-cloud/specdex/internal/usecase/search"
)

// App holds the wired services.
type App struct {
	Store   *dbRedis.Store
	Catalog *catalogrepo.Repo
	Runs    *ingestrun.Store
	Search  *searchuc.Service
	Ingest  *ingestuc.Service
	Export  *exportuc.Service
	Health  *healthuc.Service
}

// New connects to the store, ensures the catalog index and wires every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	selectable, err := predicate.ParseSelection(cfg.Search.Selectable)
	if err != nil {
		return nil, fmt.Errorf("search selection: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	catalog := catalogrepo.New(store, cfg.Storage.KeyPrefix)
	if err := catalog.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure catalog index: %w", err)
	}
	logger.Info("Catalog index ready", zap.String("index", catalog.IndexName()))

	runs := ingestrun.New(store, cfg.Storage.RunKeyPrefix, time.Duration(cfg.Storage.RunTTLHours)*time.Hour)

	// Register metrics explicitly (no init())
	metrics.RegisterRecognizerMetrics()
	metrics.RegisterCatalogMetrics()

	rc := cfg.Recognizer
	base := openaiRec.NewRecognizer(&openaiRec.Config{
		APIKey:           rc.APIKey,
		BaseURL:          rc.BaseURL,
		Model:            rc.Model,
		Temperature:      rc.Temperature,
		MaxDocumentChars: rc.MaxDocumentChars,
		HTTPClient:       &http.Client{Timeout: time.Duration(rc.TimeoutSec) * time.Second},
		Provider:         rc.Provider,
		Logger:           logger,
	})
	nlu := recognition.NewInstrumented(base, base, rc.Provider, rc.Model, logger)
	logger.Info("Recognizer created",
		zap.String("provider", rc.Provider),
		zap.String("model", rc.Model),
	)

	reader := filesystem.NewReader(cfg.Ingest.Pdftotext, cfg.Ingest.Extensions).WithLogger(logger)

	return &App{
		Store:   store,
		Catalog: catalog,
		Runs:    runs,
		Search: searchuc.New(catalog, nlu).
			WithSelectable(selectable).
			WithLimit(cfg.Search.Limit).
			WithLogger(logger),
		Ingest: ingestuc.New(nlu, catalog, reader).
			WithWorkers(cfg.Ingest.Workers).
			WithMinConfidence(cfg.Ingest.MinConfidence).
			WithSkipExisting(cfg.Ingest.SkipExisting).
			WithRunStore(runs).
			WithLogger(logger),
		Export: exportuc.New(catalog).WithLogger(logger),
		Health: healthuc.New(store, base),
	}, nil
}

// Close releases the store connection.
func (a *App) Close() {
	a.Store.Close()
}
