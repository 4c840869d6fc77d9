// Command specdex-ingest runs one ingestion pass over a directory of spec
// sheets and optionally exports the resulting catalog to XLSX.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/app"
	"github.com/kailas-cloud/specdex/internal/config"
	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	logpkg "github.com/kailas-cloud/specdex/internal/logger"
	"github.com/kailas-cloud/specdex/internal/version"
)

func main() {
	var (
		configPath   = flag.String("config", "", "config file (defaults to config/<ENV>.yaml)")
		dir          = flag.String("dir", "", "directory of spec sheets (overrides ingest.directory)")
		out          = flag.String("out", "", "write the catalog as XLSX to this path after the run")
		skipExisting = flag.Bool("skip-existing", false, "skip files whose record already exists")
		workers      = flag.Int("workers", 0, "parallel documents (overrides ingest.workers)")
		reindex      = flag.Bool("reindex", false, "rebuild the catalog search index before the run")
	)
	flag.Parse()

	env := config.GetEnv()
	cfg, err := loadConfig(env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *dir != "" {
		cfg.Ingest.Directory = *dir
	}
	if *skipExisting {
		cfg.Ingest.SkipExisting = true
	}
	if *workers > 0 {
		cfg.Ingest.Workers = *workers
	}
	if cfg.Ingest.Directory == "" {
		fmt.Fprintln(os.Stderr, "Error: --dir or ingest.directory is required")
		os.Exit(2)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create logger: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, &cfg, logger, runOptions{out: *out, reindex: *reindex})
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func loadConfig(env, path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(env)
}

type runOptions struct {
	out     string
	reindex bool
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts runOptions) int {
	logger.Info("Starting specdex ingestion",
		zap.String("version", version.Version),
		zap.String("dir", cfg.Ingest.Directory),
		zap.Int("workers", cfg.Ingest.Workers),
		zap.Bool("skip_existing", cfg.Ingest.SkipExisting),
	)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", zap.Error(err))
		return 1
	}
	defer a.Close()

	if opts.reindex {
		if err := a.Catalog.Reindex(ctx); err != nil {
			logger.Error("Reindex failed", zap.Error(err))
			return 1
		}
		logger.Info("Catalog index rebuilt", zap.String("index", a.Catalog.IndexName()))
	}

	report, err := a.Ingest.IngestDirectory(ctx, cfg.Ingest.Directory)
	if err != nil {
		logger.Error("Ingestion failed", zap.Error(err))
		return 1
	}
	printSummary(&report)

	if out := opts.out; out != "" {
		data, err := a.Export.XLSX(ctx)
		if err != nil {
			logger.Error("Export failed", zap.Error(err))
			return 1
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			logger.Error("Failed to write export", zap.String("path", out), zap.Error(err))
			return 1
		}
		logger.Info("Catalog exported", zap.String("path", out), zap.Int("bytes", len(data)))
	}

	if report.Failed() {
		return 1
	}
	return 0
}

func printSummary(r *dombatch.Report) {
	for _, res := range r.Results {
		line := fmt.Sprintf("%-8s %s", res.Status(), res.Source())
		if err := res.Err(); err != nil {
			line += ": " + err.Error()
		}
		fmt.Println(line)
	}
	fmt.Printf("run %s: %d created, %d updated, %d skipped, %d failed in %s\n",
		r.RunID,
		r.Count(dombatch.StatusCreated),
		r.Count(dombatch.StatusUpdated),
		r.Count(dombatch.StatusSkipped),
		r.Count(dombatch.StatusError),
		r.Duration().Round(time.Millisecond),
	)
}
