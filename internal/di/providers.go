package di

import (
	"context"
	"fmt"
	"time"

	"StressWatch/internal/domain/repository"
	internalrepo "StressWatch/internal/repository"
	"StressWatch/internal/service/cache"
	"StressWatch/internal/services/alerting"
	"StressWatch/internal/services/analytics"
	"StressWatch/internal/usecase"
	pkgch "StressWatch/pkg/clickhouse"
	"StressWatch/pkg/config"
	pkgkafka "StressWatch/pkg/kafka"
	applogger "StressWatch/pkg/logger"
	"StressWatch/pkg/metrics"
	"StressWatch/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// database exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideResultStore creates the ClickHouse result store and its tables.
func ProvideResultStore(chClient *pkgch.Client, cfg *config.Config) (repository.ResultStore, error) {
	store := internalrepo.NewClickHouseResultStore(chClient.DB(), cfg.ClickHouse.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("result store init: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer for the alerts topic.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher creates the Kafka alert publisher.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideKafkaConsumer creates the observation intake consumer.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(3, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideDedupStore picks Redis when configured so dedup markers survive
// restarts, in-process memory otherwise.
func ProvideDedupStore(cfg *config.Config, log *applogger.Logger) cache.Store {
	if !cfg.Redis.Enabled {
		return cache.NewMemory()
	}
	r := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		log.Warn("redis unavailable, falling back to memory dedup", applogger.Error(err))
		return cache.NewMemory()
	}
	return r
}

// ProvideDefinitions loads and validates indicator and composite
// definitions. Rejected definitions are logged and skipped; the engine runs
// with whatever survived.
func ProvideDefinitions(cfg *config.Config, log *applogger.Logger) (*config.DefinitionSet, error) {
	set, err := config.LoadDefinitions(cfg.Definitions.Indicators, cfg.Definitions.Composites)
	if err != nil {
		return nil, err
	}
	for _, rej := range set.Rejected {
		log.Warn("definition rejected", applogger.Error(rej))
	}
	log.Info("definitions loaded",
		applogger.Int("indicators", len(set.Indicators)),
		applogger.Int("composites", len(set.Composites)),
		applogger.Int("rejected", len(set.Rejected)))
	return set, nil
}

// ProvideClassifier creates the score classifier.
func ProvideClassifier(cfg *config.Config) *analytics.Classifier {
	return analytics.NewClassifier(cfg.Engine.ScoreScale)
}

// ProvideStrainCalculator creates the strain calculator.
func ProvideStrainCalculator(cfg *config.Config) *analytics.StrainCalculator {
	sc := cfg.Engine.Strain
	return analytics.NewStrainCalculator(analytics.StrainConfig{
		TrendLength:         sc.TrendLength,
		SmoothLength:        sc.SmoothLength,
		DivergenceScale:     sc.DivergenceScale,
		OutperformanceScale: sc.OutperformScale,
		DirectionThreshold:  sc.DirectionThreshold,
	})
}

// ProvideAlertEngine creates the alert engine.
func ProvideAlertEngine(cfg *config.Config, dedup cache.Store, m repository.Metrics, log *applogger.Logger) *alerting.Engine {
	return alerting.NewEngine(alerting.Config{
		MinStressCount: cfg.Engine.Alerts.MinStressCount,
		DedupWindow:    cfg.Engine.Alerts.DedupWindow,
	}, dedup, m, log)
}

// ProvideCycleRunner assembles the evaluation pipeline.
func ProvideCycleRunner(
	set *config.DefinitionSet,
	classifier *analytics.Classifier,
	strain *analytics.StrainCalculator,
	alerts *alerting.Engine,
	store repository.ResultStore,
	publisher repository.AlertPublisher,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.CycleRunner {
	return usecase.NewCycleRunner(
		set.Indicators,
		set.Composites,
		classifier,
		strain,
		alerts,
		store,
		publisher,
		m,
		log,
		usecase.Options{
			Workers:     cfg.Engine.Workers,
			SeriesDepth: cfg.Engine.SeriesDepth,
			StrainRefs: usecase.StrainRefs{
				Primary:   cfg.Engine.Strain.Primary,
				Secondary: cfg.Engine.Strain.Secondary,
				Tertiary:  cfg.Engine.Strain.Tertiary,
			},
			Liquidity: usecase.LiquidityRefs{
				Code:         cfg.Engine.Liquidity.Code,
				MoneyStock:   cfg.Engine.Liquidity.MoneyStock,
				BalanceSheet: cfg.Engine.Liquidity.BalanceSheet,
				ReserveDrain: cfg.Engine.Liquidity.ReserveDrain,
				GreenMax:     cfg.Engine.Liquidity.GreenMax,
				YellowMax:    cfg.Engine.Liquidity.YellowMax,
				Scale:        cfg.Engine.LiquidityScale,
			},
			Bond: usecase.BondRefs{
				Code:         cfg.Engine.Bond.Code,
				HighYield:    cfg.Engine.Bond.HighYield,
				InvestGrade:  cfg.Engine.Bond.InvestGrade,
				CurveSpreads: cfg.Engine.Bond.CurveSpreads,
				ShortYield:   cfg.Engine.Bond.ShortYield,
				LongYield:    cfg.Engine.Bond.LongYield,
				TermPremium:  cfg.Engine.Bond.TermPremium,
				GreenMax:     cfg.Engine.Bond.GreenMax,
				YellowMax:    cfg.Engine.Bond.YellowMax,
			},
		},
	)
}

// ProvideObservationsHandler registers the intake handler for the
// observations topic.
func ProvideObservationsHandler(runner *usecase.CycleRunner, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.ObservationsTopic, runner, m)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	runner *usecase.CycleRunner,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	store repository.ResultStore,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, runner, consumer, kh, store, chClient)
}
