package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"time"
	"venuebook/internal/scheduling"
	"venuebook/pkg/client"
	"venuebook/pkg/logger"
)

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	JWTSecret string
	JWTIssuer string

	OpeningTime             string
	ClosingTime             string
	SlotLength              time.Duration
	SuggestionLookaheadDays int
	TimeZone                string
	Location                *time.Location

	CodeTTL           time.Duration
	ProvisionalGrace  time.Duration
	SweepSchedule     string
	SweepBatchSize    int
	LockTTL           time.Duration
	LockRetryAttempts int
	LockRetryDelay    time.Duration

	NotificationTopic    string
	NotificationDLQTopic string
	NotificationGroupID  string

	MailerSendAPIKey string
	MailFromName     string
	MailFromEmail    string

	ReservationsBaseURL string
	VenuesBaseURL       string
	ServiceCallTimeout  time.Duration
	SlotTokenKey        string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		JWTIssuer: getEnvStr(EnvJWTIssuer, DefaultJWTIssuer),

		OpeningTime:             getEnvStr(EnvOpeningTime, DefaultOpeningTime),
		ClosingTime:             getEnvStr(EnvClosingTime, DefaultClosingTime),
		SlotLength:              getEnvDuration(EnvSlotLength, DefaultSlotLength),
		SuggestionLookaheadDays: getEnvNum(EnvSuggestionLookaheadDays, DefaultSuggestionLookaheadDays),
		TimeZone:                getEnvStr(EnvTimeZone, DefaultTimeZone),

		CodeTTL:           getEnvDuration(EnvCodeTTL, DefaultCodeTTL),
		ProvisionalGrace:  getEnvDuration(EnvProvisionalGrace, DefaultProvisionalGrace),
		SweepSchedule:     getEnvStr(EnvSweepSchedule, DefaultSweepSchedule),
		SweepBatchSize:    getEnvNum(EnvSweepBatchSize, DefaultSweepBatchSize),
		LockTTL:           getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockRetryAttempts: getEnvNum(EnvLockRetryAttempts, DefaultLockRetryAttempts),
		LockRetryDelay:    getEnvDuration(EnvLockRetryDelay, DefaultLockRetryDelay),

		NotificationTopic:    getEnvStr(EnvNotificationTopic, DefaultNotificationTopic),
		NotificationDLQTopic: getEnvStr(EnvNotificationDLQTopic, DefaultNotificationDLQTopic),
		NotificationGroupID:  getEnvStr(EnvNotificationGroupID, DefaultNotificationGroupID),

		MailerSendAPIKey: getEnvStr(EnvMailerSendAPIKey, ""),
		MailFromName:     getEnvStr(EnvMailFromName, DefaultMailFromName),
		MailFromEmail:    getEnvStr(EnvMailFromEmail, DefaultMailFromEmail),

		ReservationsBaseURL: getEnvStr(EnvReservationsBaseURL, DefaultReservationsBaseURL),
		VenuesBaseURL:       getEnvStr(EnvVenuesBaseURL, DefaultVenuesBaseURL),
		ServiceCallTimeout:  getEnvDuration(EnvServiceCallTimeout, DefaultServiceCallTimeout),
		SlotTokenKey:        getEnvStr(EnvSlotTokenKey, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positive := map[string]time.Duration{
		"MongoConnTimeout":   cfg.MongoConnTimeout,
		"RateLimitWindow":    cfg.RateLimitWindow,
		"RequestTimeout":     cfg.RequestTimeout,
		"IdempotencyTTL":     cfg.IdempotencyTTL,
		"ReadTimeout":        cfg.ReadTimeout,
		"WriteTimeout":       cfg.WriteTimeout,
		"IdleTimeout":        cfg.IdleTimeout,
		"ShutdownTimeout":    cfg.ShutdownTimeout,
		"SlotLength":         cfg.SlotLength,
		"CodeTTL":            cfg.CodeTTL,
		"ProvisionalGrace":   cfg.ProvisionalGrace,
		"LockTTL":            cfg.LockTTL,
		"LockRetryDelay":     cfg.LockRetryDelay,
		"ServiceCallTimeout": cfg.ServiceCallTimeout,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, positive[name]))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if !clockRegex.MatchString(cfg.OpeningTime) {
		errors = append(errors, fmt.Sprintf("OpeningTime must be in HH:MM format (00:00-23:59), got: %s", cfg.OpeningTime))
	}
	if !clockRegex.MatchString(cfg.ClosingTime) {
		errors = append(errors, fmt.Sprintf("ClosingTime must be in HH:MM format (00:00-23:59), got: %s", cfg.ClosingTime))
	}
	if clockRegex.MatchString(cfg.OpeningTime) && clockRegex.MatchString(cfg.ClosingTime) && cfg.OpeningTime >= cfg.ClosingTime {
		errors = append(errors, fmt.Sprintf("OpeningTime (%s) must be before ClosingTime (%s)", cfg.OpeningTime, cfg.ClosingTime))
	}
	if clockRegex.MatchString(cfg.OpeningTime) && clockRegex.MatchString(cfg.ClosingTime) && cfg.OpeningTime < cfg.ClosingTime && cfg.SlotLength > 0 {
		if _, err := scheduling.NewGrid(cfg.OpeningTime, cfg.ClosingTime, cfg.SlotLength); err != nil {
			errors = append(errors, err.Error())
		}
	}
	if cfg.SuggestionLookaheadDays < 0 || cfg.SuggestionLookaheadDays > 31 {
		errors = append(errors, fmt.Sprintf("SuggestionLookaheadDays must be between 0 and 31, got: %d", cfg.SuggestionLookaheadDays))
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be a valid IANA zone, got: %s", cfg.TimeZone))
	} else {
		cfg.Location = loc
	}

	if cfg.SweepSchedule == "" {
		errors = append(errors, "SweepSchedule cannot be empty")
	}
	if cfg.SweepBatchSize <= 0 {
		errors = append(errors, fmt.Sprintf("SweepBatchSize must be positive, got: %d", cfg.SweepBatchSize))
	}
	if cfg.LockRetryAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("LockRetryAttempts must be positive, got: %d", cfg.LockRetryAttempts))
	}

	if cfg.NotificationTopic == "" {
		errors = append(errors, "NotificationTopic cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_issuer", cfg.JWTIssuer,
		"opening_time", cfg.OpeningTime,
		"closing_time", cfg.ClosingTime,
		"slot_length", cfg.SlotLength,
		"suggestion_lookahead_days", cfg.SuggestionLookaheadDays,
		"timezone", cfg.TimeZone,
		"code_ttl", cfg.CodeTTL,
		"provisional_grace", cfg.ProvisionalGrace,
		"sweep_schedule", cfg.SweepSchedule,
		"lock_ttl", cfg.LockTTL,
		"notification_topic", cfg.NotificationTopic,
		"mailersend_key_set", cfg.MailerSendAPIKey != "",
		"reservations_base_url", cfg.ReservationsBaseURL,
		"venues_base_url", cfg.VenuesBaseURL,
		"slot_token_key_set", cfg.SlotTokenKey != "",
	)
}

// Now returns the current instant in the configured booking timezone.
func (cfg *Config) Now() time.Time {
	if cfg.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(cfg.Location)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func sortedKeys(m map[string]time.Duration) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
