package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"stayquote/internal/app/commands"
	catalogapp "stayquote/internal/app/handlers/catalog"
	"stayquote/internal/app/handlers/quotes"
	"stayquote/internal/app/middleware"
	appoutbox "stayquote/internal/app/outbox"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/queries"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/infra/broker/kafka"
	"stayquote/internal/infra/catalog"
	"stayquote/internal/infra/clock"
	"stayquote/internal/infra/config"
	mongostore "stayquote/internal/infra/db/mongo"
	ginserver "stayquote/internal/infra/http/gin"
	"stayquote/internal/infra/obs"
	outboxinfra "stayquote/internal/infra/outbox"
	"stayquote/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("stayquote stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	engine, err := domainpricing.NewEngine(
		domainpricing.WithCardFeeRate(cfg.CardFeeRate),
		domainpricing.WithTaxRate(cfg.TaxRate),
	)
	if err != nil {
		return fmt.Errorf("pricing engine: %w", err)
	}
	metrics := obs.NewMetrics()

	deps, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := seedCatalog(ctx, cfg, deps, logger); err != nil {
		return err
	}

	app := buildApplication(cfg, deps, engine, metrics, logger)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: metrics}, obs.HealthHandlers{
		Ready: deps.ready,
	}, app)

	if deps.worker != nil {
		go func() {
			if err := deps.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "currency", cfg.Currency, "timezone", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

// stores groups the provider and persistence adapters for one storage mode.
type stores struct {
	rates       policies.RateTableProvider
	discounts   policies.DiscountRegistry
	tierWriter  catalog.TierWriter
	ruleWriter  catalog.DiscountWriter
	idempotency middleware.IdempotencyStore
	outbox      appoutbox.Outbox
	worker      *outboxinfra.Worker
	ready       func(ctx context.Context) error
}

func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, func(), error) {
	if cfg.StorageMode == config.StorageMongo {
		return buildMongoStores(ctx, cfg, logger)
	}
	rates := memory.NewRateTable()
	discounts := memory.NewDiscountRegistry()
	box := memory.NewOutbox(func(ctx context.Context, records []appoutbox.EventRecord) error {
		for _, rec := range records {
			logger.InfoContext(ctx, "event emitted", "event", rec.Name, "id", rec.ID, "aggregate", rec.Aggregate)
		}
		return nil
	})
	return stores{
		rates:       rates,
		discounts:   discounts,
		tierWriter:  rates,
		ruleWriter:  discounts,
		idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		outbox:      box,
	}, func() {}, nil
}

func buildMongoStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, func(), error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, nil, fmt.Errorf("connect mongo: %w", err)
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaClientID, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return stores{}, nil, fmt.Errorf("kafka producer: %w", err)
	}
	rates := mongostore.NewRateTableRepository(client.DB)
	discounts := mongostore.NewDiscountRepository(client.DB)
	box := outboxinfra.NewStore(client.DB)
	worker := &outboxinfra.Worker{
		Store:       box,
		Producer:    producer,
		Logger:      logger.With("component", "outbox"),
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          "stayquote-" + uuid.NewString(),
		Backoff:     cfg.RetryBackoff,
	}
	cleanup := func() {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
	return stores{
		rates:       rates,
		discounts:   discounts,
		tierWriter:  rates,
		ruleWriter:  discounts,
		idempotency: mongostore.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL),
		outbox:      box,
		worker:      worker,
		ready:       client.Ping,
	}, cleanup, nil
}

func seedCatalog(ctx context.Context, cfg config.Config, deps stores, logger *slog.Logger) error {
	path := cfg.CatalogFile
	if path == "" {
		path = defaultCatalogPath()
		if _, err := os.Stat(path); err != nil {
			logger.Info("catalog file not found, skipping seed", "path", path)
			return nil
		}
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	res, err := cat.Seed(ctx, deps.tierWriter, deps.ruleWriter)
	if err != nil {
		return err
	}
	logger.Info("catalog seeded",
		"path", path,
		"categories", cat.Categories(),
		"tiers", res.Tiers,
		"discounts", res.Discounts,
		"skipped", res.Skipped,
	)
	return nil
}

func buildApplication(cfg config.Config, deps stores, engine *domainpricing.Engine, metrics *obs.Metrics, logger *slog.Logger) ginserver.Handlers {
	zoned := clock.New(cfg.Location)
	pricer := quotes.Pricer{
		Rates:     deps.rates,
		Discounts: deps.discounts,
		Engine:    engine,
		Clock:     zoned,
		Currency:  cfg.Currency,
	}

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, quotes.PreviewQuoteQuery{}.Key(), &quotes.PreviewQuoteHandler{Pricer: pricer})
	queries.RegisterHandler(queryBus, catalogapp.ListRatesQuery{}.Key(), &catalogapp.ListRatesHandler{
		Rates:    deps.rates,
		Currency: cfg.Currency,
	})
	queries.RegisterHandler(queryBus, catalogapp.ActiveDiscountsQuery{}.Key(), &catalogapp.ActiveDiscountsHandler{
		Discounts: deps.discounts,
		Clock:     zoned,
	})

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, quotes.IssueQuoteCommand{}.Key(), &quotes.IssueQuoteHandler{
		Pricer:  pricer,
		Outbox:  deps.outbox,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.InstrumentCommands(logger, metrics),
		middleware.Validation(),
		middleware.Idempotency(deps.idempotency, nil),
		middleware.OutboxFlush(deps.outbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.InstrumentQueries(logger, metrics),
		middleware.QueryValidation(),
	)
	logger.Debug("buses ready", "queries", queryBus.Keys())

	return ginserver.Handlers{
		Quotes: ginserver.QuoteHandler{
			Queries:  queryBusWithMiddleware,
			Commands: commandBusWithMiddleware,
		},
		Catalog: ginserver.CatalogHandler{Queries: queryBusWithMiddleware},
		Metrics: metrics.Handler(),
	}
}

func defaultCatalogPath() string {
	return filepath.Join("data", "catalog.yaml")
}
