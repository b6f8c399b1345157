package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/electometer/smart-meter/internal/config"
	"github.com/electometer/smart-meter/internal/database"
	"github.com/electometer/smart-meter/internal/logging"
	"github.com/electometer/smart-meter/internal/mqtt"
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

	// registered meters come from the database; without one, simulate the demo fleet
	var meters simulation.MeterLister = simulation.StaticMeters(service.DemoMeters())
	if config.StorageDriver() != "memory" {
		db, err := database.Connect(config.DatabaseDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("db connect failed")
		}
		defer db.Close()
		meters = repository.New(db)
	}

	client, err := mqtt.Connect(config.MQTTBroker(), config.MQTTClientID())
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer mqtt.Disconnect(client)

	gen := simulation.NewGenerator(simulation.ParamsFromConfig(config.SimulationSettings()), nil)
	sim := simulation.NewSimulator(meters, gen, mqtt.NewPublisher(client, config.MQTTTopic()))
	w := worker.NewTicker("simulation", config.SimulationInterval(), sim.Tick, worker.RunImmediately())

	go w.Start()
	log.Info().Str("topic", config.MQTTTopic()).Dur("interval", config.SimulationInterval()).Msg("simulator running")

	<-ctx.Done()
	w.Stop()
	<-w.Done()
	log.Info().Msg("simulation done")
}
