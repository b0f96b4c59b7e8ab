package config

const (
	EnvStoreDriver = "STORE_DRIVER"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPostgresDSN          = "POSTGRES_DSN"
	EnvPostgresMaxOpenConns = "POSTGRES_MAX_OPEN_CONNS"
	EnvPostgresMaxIdleConns = "POSTGRES_MAX_IDLE_CONNS"

	EnvRedisURL = "REDIS_URL"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultTimeZone = "DEFAULT_TIME_ZONE"
	EnvLobbyCodeLength = "LOBBY_CODE_LENGTH"
	EnvUserCodeLength  = "USER_CODE_LENGTH"

	EnvHeartbeatInterval = "SSE_HEARTBEAT_INTERVAL"
	EnvStreamRetry       = "SSE_RETRY"
	EnvSubscriberBuffer  = "SSE_SUBSCRIBER_BUFFER"
)
