package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/finsight/internal/ai"
	"github.com/myrjola/finsight/internal/broker"
	"github.com/myrjola/finsight/internal/envstruct"
	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/investigation"
	"github.com/myrjola/finsight/internal/logging"
	"github.com/myrjola/finsight/internal/pprofserver"
	"github.com/myrjola/finsight/internal/repositories"
	"github.com/myrjola/finsight/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	htmx           *htmx.HTMX
	aiClient       ai.Client
	sessionManager *scs.SessionManager
	sessions       *sessionRegistry
	aggregator     *investigation.Aggregator
	resultBroker   *broker.ChannelBroker[string, investigation.AggregatedResult]
	summaries      *repositories.SummaryRepository
	statistics     *repositories.StatisticsRepository
	bookmarkRepo   *repositories.BookmarkRepository
}

type config struct {
	Addr      string `env:"FINSIGHT_ADDR"       envDefault:"localhost:4000"`
	SqliteURL string `env:"FINSIGHT_SQLITE_URL" envDefault:"./finsight.sqlite"`
	PprofPort string `env:"FINSIGHT_PPROF_PORT" envDefault:""`
	Seed      string `env:"FINSIGHT_SEED"       envDefault:"false"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse config")
	}

	if cfg.PprofPort != "" {
		// pprof listens on localhost so that it's not open to the world.
		pprofserver.Launch(cfg.PprofPort, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	if cfg.Seed == "true" {
		if err = db.Seed(ctx); err != nil {
			return errors.Wrap(err, "seed database")
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "seeded example dataset")
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	transactions := repositories.NewTransactionRepository(db, logger)
	summaries := repositories.NewSummaryRepository(db, logger)
	statistics := repositories.NewStatisticsRepository(db, logger)
	patterns := repositories.NewPatternRepository(db, logger)
	budgets := repositories.NewBudgetRepository(db, logger)
	bookmarkRepo := repositories.NewBookmarkRepository(db, logger)

	aggregator := investigation.NewAggregator(investigation.Sources{
		Transactions: transactions,
		Summaries:    summaries,
		Overview:     statistics,
		Patterns:     patterns,
		Budget:       budgets,
	}, logger)

	resultBroker := broker.NewChannelBroker[string, investigation.AggregatedResult]()
	go resultBroker.Start()
	defer resultBroker.Stop()

	app := application{
		logger:         logger,
		htmx:           htmx.New(),
		aiClient:       ai.NewClient(),
		sessionManager: sessionManager,
		sessions:       newSessionRegistry(logger),
		aggregator:     aggregator,
		resultBroker:   resultBroker,
		summaries:      summaries,
		statistics:     statistics,
		bookmarkRepo:   bookmarkRepo,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})))
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "no .env file loaded")
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}
