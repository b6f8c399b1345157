package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/cache"
	"github.com/electometer/smart-meter/internal/cloud"
	"github.com/electometer/smart-meter/internal/config"
	"github.com/electometer/smart-meter/internal/database"
	httpHandlers "github.com/electometer/smart-meter/internal/http"
	"github.com/electometer/smart-meter/internal/logging"
	"github.com/electometer/smart-meter/internal/repository"
	"github.com/electometer/smart-meter/internal/service"
	"github.com/electometer/smart-meter/internal/simulation"
	"github.com/electometer/smart-meter/internal/worker"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogPretty())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx)
	defer closeStore()

	deps := service.Deps{}
	if config.LiveCacheEnabled() {
		client, err := cache.Connect(ctx, config.RedisAddr())
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		defer client.Close()
		deps.Cache = cache.NewLiveCache(client, config.LiveCacheTTL())
	}
	if config.UseCloudServices() {
		awsCfg, err := cloud.LoadConfig(ctx, config.AWSRegion())
		if err != nil {
			log.Fatal().Err(err).Msg("aws config failed")
		}
		deps.Mirror = cloud.NewDynamoDBClient(awsCfg, config.DynamoReadingsTable(), config.DynamoAlertsTable())
		deps.Objects = cloud.NewS3Client(awsCfg, config.S3Bucket())
		if arn := config.SNSTopicArn(); arn != "" {
			deps.Notifier = cloud.NewSNSClient(awsCfg, arn)
		}
		log.Info().Str("region", config.AWSRegion()).Msg("cloud services enabled")
	}

	opts := service.OptionsFromConfig()
	svcs := service.New(store, deps, opts)

	if err := svcs.Admin.EnsureDefaultAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("default admin setup failed")
	}
	if config.SeedOnStart() {
		if _, err := svcs.Seeder.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("seeding failed")
		}
	}

	scheduler := worker.NewScheduler()
	if config.SimulationEnabled() {
		sim := simulation.NewSimulator(store, simulation.NewGenerator(opts.Simulation, nil), svcs.Readings)
		scheduler.AddWorker(worker.NewTicker("simulation", config.SimulationInterval(), sim.Tick, worker.RunImmediately()))
	}
	scheduler.AddWorker(worker.NewTicker("billing", config.BillingInterval(), func(ctx context.Context) error {
		_, err := svcs.Billing.RunMonthly(ctx)
		return err
	}, worker.RunImmediately()))
	if deps.Objects != nil {
		scheduler.AddWorker(worker.NewTicker("archive", config.ArchiveInterval(), func(ctx context.Context) error {
			_, err := svcs.Archive.ArchiveDay(ctx)
			return err
		}))
	}
	go scheduler.Start()
	defer scheduler.Stop()

	app := httpHandlers.NewApp(svcs, httpHandlers.Options{RateLimitPerMinute: config.RateLimitPerMinute()})
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("server exit")
	}
}

func openStore(ctx context.Context) (repository.Store, func()) {
	if config.StorageDriver() == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return repository.NewMemory(), func() {}
	}

	db, err := database.Connect(config.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	return repository.New(db), func() { _ = db.Close() }
}
