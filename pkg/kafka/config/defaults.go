package kafka_config

import "time"

const (
	DefaultTopic = "huddle.lobby-events"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
	DefaultAutoCreateTopic      = false
	DefaultPublishTimeout       = 5 * time.Second
)
