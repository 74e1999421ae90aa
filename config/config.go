package config

// Config is the process-wide configuration loaded by ectoenv at startup.
// Thresholds/weights are not here: those travel per-request in
// EngineInput.options (pkg/models.Configuration) so a host can tune a
// single run without restarting the service.
type Config struct {
	AppName  string `env:"APP_NAME" env-default:"beneficiary-insight"`
	Port     int    `env:"PORT" env-default:"3002"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool `env:"PRETTY_LOGS" env-default:"false"`

	HttpServerWriteTimeoutSeconds int `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`

	AllowOrigins []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,DELETE"`

	// MaxRunRecords is the configured upper bound on the size of a single
	// EngineInput.records. The HTTP transport (pkg/routes/dedupe) does not
	// read it, so no run is rejected for its record count.
	MaxRunRecords int `env:"MAX_RUN_RECORDS" env-default:"200000" validate:"gt=0"`

	OtelExporterEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
	OtelServiceName      string `env:"OTEL_SERVICE_NAME" env-default:"beneficiary-insight"`
}
