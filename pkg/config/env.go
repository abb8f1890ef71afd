package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTIssuer = "JWT_ISSUER"

	EnvOpeningTime             = "OPENING_TIME"
	EnvClosingTime             = "CLOSING_TIME"
	EnvSlotLength              = "SLOT_LENGTH"
	EnvSuggestionLookaheadDays = "SUGGESTION_LOOKAHEAD_DAYS"
	EnvTimeZone                = "TIMEZONE"

	EnvCodeTTL           = "CODE_TTL"
	EnvProvisionalGrace  = "PROVISIONAL_GRACE"
	EnvSweepSchedule     = "SWEEP_SCHEDULE"
	EnvSweepBatchSize    = "SWEEP_BATCH_SIZE"
	EnvLockTTL           = "LOCK_TTL"
	EnvLockRetryAttempts = "LOCK_RETRY_ATTEMPTS"
	EnvLockRetryDelay    = "LOCK_RETRY_DELAY"

	EnvNotificationTopic    = "NOTIFICATION_TOPIC"
	EnvNotificationDLQTopic = "NOTIFICATION_DLQ_TOPIC"
	EnvNotificationGroupID  = "NOTIFICATION_GROUP_ID"

	EnvMailerSendAPIKey = "MAILERSEND_API_KEY"
	EnvMailFromName     = "MAIL_FROM_NAME"
	EnvMailFromEmail    = "MAIL_FROM_EMAIL"

	EnvReservationsBaseURL = "RESERVATIONS_BASE_URL"
	EnvVenuesBaseURL       = "VENUES_BASE_URL"
	EnvServiceCallTimeout  = "SERVICE_CALL_TIMEOUT"
	EnvSlotTokenKey        = "SLOT_TOKEN_KEY"
)
