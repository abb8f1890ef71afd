package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "venuebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultJWTIssuer = "venuebook"

	DefaultOpeningTime             = "09:00"
	DefaultClosingTime             = "18:00"
	DefaultSlotLength              = 1 * time.Hour
	DefaultSuggestionLookaheadDays = 7
	DefaultTimeZone                = "UTC"
	DefaultMaxCalendarMonthsAhead  = 12

	DefaultCodeTTL           = 10 * time.Minute
	DefaultProvisionalGrace  = 30 * time.Minute
	DefaultSweepSchedule     = "@every 5m"
	DefaultSweepBatchSize    = 500
	DefaultLockTTL           = 10 * time.Second
	DefaultLockRetryAttempts = 5
	DefaultLockRetryDelay    = 100 * time.Millisecond

	DefaultNotificationTopic    = "reservation-notifications"
	DefaultNotificationDLQTopic = "dlq-reservation-notifications"
	DefaultNotificationGroupID  = "notifier"

	DefaultMailFromName  = "Venue Bookings"
	DefaultMailFromEmail = "bookings@example.com"

	DefaultReservationsBaseURL = "http://localhost:8080"
	DefaultVenuesBaseURL       = "http://localhost:8081"
	DefaultServiceCallTimeout  = 10 * time.Second

	DefaultPurpose = "General booking"
)
