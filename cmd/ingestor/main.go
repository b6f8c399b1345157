package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/cache"
	"github.com/electometer/smart-meter/internal/cloud"
	"github.com/electometer/smart-meter/internal/config"
	"github.com/electometer/smart-meter/internal/database"
	"github.com/electometer/smart-meter/internal/logging"
	"github.com/electometer/smart-meter/internal/mqtt"
	"github.com/electometer/smart-meter/internal/repository"
	"github.com/electometer/smart-meter/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogPretty())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(config.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	deps := service.Deps{}
	if config.LiveCacheEnabled() {
		rdb, err := cache.Connect(ctx, config.RedisAddr())
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		defer rdb.Close()
		deps.Cache = cache.NewLiveCache(rdb, config.LiveCacheTTL())
	}
	if config.UseCloudServices() {
		awsCfg, err := cloud.LoadConfig(ctx, config.AWSRegion())
		if err != nil {
			log.Fatal().Err(err).Msg("aws config failed")
		}
		deps.Mirror = cloud.NewDynamoDBClient(awsCfg, config.DynamoReadingsTable(), config.DynamoAlertsTable())
		if arn := config.SNSTopicArn(); arn != "" {
			deps.Notifier = cloud.NewSNSClient(awsCfg, arn)
		}
	}

	svcs := service.New(repository.New(db), deps, service.OptionsFromConfig())

	client, err := mqtt.Connect(config.MQTTBroker(), config.MQTTClientID())
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer mqtt.Disconnect(client)

	if err := mqtt.Subscribe(ctx, client, config.MQTTTopic(), svcs.Readings.FromMQTT); err != nil {
		log.Fatal().Err(err).Msg("subscribe failed")
	}

	log.Info().Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("ingestor stopped")
}
