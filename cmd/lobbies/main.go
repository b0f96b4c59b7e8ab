package main

import (
	_ "time/tzdata"

	"huddle/internal/live"
	"huddle/internal/lobbies/handler"
	"huddle/internal/lobbies/repository"
	"huddle/internal/lobbies/service"
	"huddle/internal/lobbies/validator"
	"huddle/pkg/app"
	"huddle/pkg/config"
	"huddle/pkg/kafka"
	kafka_config "huddle/pkg/kafka/config"
	kafka_middleware "huddle/pkg/kafka/middleware"
)

const (
	ServiceName      = "lobbies"
	journalQueueSize = 1024
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()

	cfg.Log.Info("Starting Lobbies service")
	repo := repository.New(cfg)
	broker, metrics := initBroker(cfg)
	lobbyService := initServices(cfg, repo, broker)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(repo, metrics, cfg.Log),
		handler.NewLobbyHandler(lobbyService, cfg.Log),
		handler.NewEventsHandler(lobbyService, cfg.HeartbeatInterval, cfg.StreamRetry, cfg.Log),
		broker,
	)
	serverApp.Run()
}

// initBroker builds the in-process broker, journaling to Kafka when brokers
// are configured. Metrics are nil without a journal.
func initBroker(cfg *config.Config) (*live.Broker, *kafka_middleware.Metrics) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka journal disabled")
		return live.NewBroker(cfg.SubscriberBuffer, cfg.Log), nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	journal := live.NewKafkaJournal(producer, ServiceName, journalQueueSize, kafkaCfg.PublishTimeout, cfg.Log)
	cfg.Log.Info("Kafka journal enabled", "topic", producer.Topic(), "brokers", kafkaCfg.Brokers)
	return live.NewBroker(cfg.SubscriberBuffer, cfg.Log, live.WithJournal(journal)), metrics
}

func initServices(cfg *config.Config, repo repository.Repository, broker *live.Broker) service.LobbyService {
	lobbyValidator := validator.NewLobbyValidator(cfg.Log, cfg.UserCodeLength)
	lobbyService := service.NewLobbyService(repo, lobbyValidator, broker, cfg)

	cfg.Log.Info("Lobbies service initialized", "store", cfg.StoreDriver)
	return lobbyService
}
