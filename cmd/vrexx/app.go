package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vrexx/vrexx/internal/config"
	"github.com/vrexx/vrexx/internal/db/postgres"
	dbRedis "github.com/vrexx/vrexx/internal/db/redis"
	"github.com/vrexx/vrexx/internal/domain"
	"github.com/vrexx/vrexx/internal/domain/intent"
	"github.com/vrexx/vrexx/internal/domain/mortgage"
	logpkg "github.com/vrexx/vrexx/internal/logger"
	"github.com/vrexx/vrexx/internal/metrics"
	"github.com/vrexx/vrexx/internal/repository/embcache"
	interactionrepo "github.com/vrexx/vrexx/internal/repository/interaction"
	propertyrepo "github.com/vrexx/vrexx/internal/repository/property"
	openaiEmb "github.com/vrexx/vrexx/internal/transport/openai"
	agentuc "github.com/vrexx/vrexx/internal/usecase/agent"
	embeddinguc "github.com/vrexx/vrexx/internal/usecase/embedding"
	healthuc "github.com/vrexx/vrexx/internal/usecase/health"
	interactionuc "github.com/vrexx/vrexx/internal/usecase/interaction"
	propertyuc "github.com/vrexx/vrexx/internal/usecase/property"
	searchuc "github.com/vrexx/vrexx/internal/usecase/search"
)

// propertyIndex is what both storage backends provide for properties.
type propertyIndex interface {
	propertyuc.Repository
	searchuc.Index
}

// interactionStore is what both storage backends provide for the log.
type interactionStore interface {
	agentuc.InteractionLog
	interactionuc.Repository
}

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type storage struct {
	properties   propertyIndex
	interactions interactionStore
	pinger       healthuc.DBPinger
	cache        kvStore // nil when the backend cannot cache vectors
	close        func()
}

// app is the composition root shared by every command.
type app struct {
	cfg      config.Config
	env      string
	logger   *zap.Logger
	agent    *agentuc.Service
	catalog  *propertyuc.Service
	logs     *interactionuc.Service
	health   *healthuc.Service
	shutdown func()
}

func loadConfig() (config.Config, string, error) {
	env := viper.GetString("env")
	if path := viper.GetString("config"); path != "" {
		cfg, err := config.LoadFile(path)
		return cfg, env, err
	}
	cfg, err := config.Load(env)
	return cfg, env, err
}

// newApp loads config, connects storage and assembles the services.
// logEnv selects the logger flavour; "" reuses the config environment.
func newApp(ctx context.Context, logEnv string) (*app, error) {
	cfg, env, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if logEnv == "" {
		logEnv = env
	}
	logger, err := logpkg.NewLogger(logEnv, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterAgentMetrics()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	embedder := buildEmbedder(cfg, st.cache, logger)
	if err := embedder.Probe(ctx); err != nil {
		st.close()
		_ = logger.Sync()
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	logger.Info("Embedder ready",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", st.cache != nil),
	)

	keywords := cfg.Router.FinanceKeywords
	if len(keywords) == 0 {
		keywords = intent.DefaultFinanceKeywords
	}
	classifier := intent.NewClassifier(keywords)
	defaults := mortgage.Defaults{
		Principal:  cfg.Router.DefaultPrincipal,
		Years:      cfg.Router.DefaultYears,
		AnnualRate: *cfg.Router.AnnualRate,
	}

	searchSvc := searchuc.New(st.properties,
		withInstruction(embedder, cfg.Embedding.QueryInstruction), cfg.Router.BudgetThreshold)
	logger.Info("Router ready", routerFields(classifier, searchSvc, defaults)...)

	return &app{
		cfg:     cfg,
		env:     env,
		logger:  logger,
		agent:   agentuc.New(classifier, defaults, searchSvc, st.interactions),
		catalog: propertyuc.New(st.properties, withInstruction(embedder, cfg.Embedding.DocumentInstruction)),
		logs:    interactionuc.New(st.interactions),
		health:  healthuc.New(st.pinger, embedder),
		shutdown: func() {
			st.close()
			_ = logger.Sync()
		},
	}, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (*storage, error) {
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}

		props := propertyrepo.New(store, cfg.Storage.KeyPrefix, cfg.Embedding.Dimensions, propertyrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
		if err := props.EnsureIndex(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure property index: %w", err)
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
		)

		st := &storage{
			properties:   props,
			interactions: interactionrepo.New(store, cfg.Storage.KeyPrefix),
			pinger:       store,
			close:        store.Close,
		}
		if cfg.Embedding.Cache {
			st.cache = store
		}
		return st, nil

	case config.DriverPostgres:
		pg, err := postgres.Open(cfg.Database.DSN, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.WaitForReady(ctx, readiness); err != nil {
			pg.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		return &storage{
			properties:   pg.Properties(),
			interactions: pg.Interactions(),
			pinger:       pg,
			close:        pg.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(cfg config.Config, cache kvStore, logger *zap.Logger) *embeddinguc.InstrumentedEmbedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:         cfg.Embedding.APIKey,
		BaseURL:        cfg.Embedding.BaseURL,
		Model:          cfg.Embedding.Model,
		Dimensions:     cfg.Embedding.Dimensions,
		SendDimensions: cfg.Embedding.SendDimensions,
		Logger:         logger,
	})

	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, cfg.Storage.KeyPrefix, cfg.Embedding.Model,
			metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Model, cfg.Embedding.Dimensions, logger)
}

// routerFields reports the routing settings actually in effect.
func routerFields(c intent.Classifier, s *searchuc.Service, d mortgage.Defaults) []zap.Field {
	return []zap.Field{
		zap.Strings("finance_keywords", c.Keywords()),
		zap.Int64("budget_threshold", s.Threshold()),
		zap.Int64("default_principal", d.Principal),
		zap.Int64("default_years", d.Years),
		zap.Float64("annual_rate", d.AnnualRate),
	}
}

// withInstruction prefixes texts with instruction when one is configured.
func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}
