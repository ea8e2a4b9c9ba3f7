package config

import (
	"strconv"
	"time"
)

// Server holds the settings of the HTTP merge service. Every field can be
// set through the environment.
type Server struct {
	HTTP    HTTPConfig
	Upload  UploadConfig
	Logging LoggingConfig
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds the graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// UploadConfig limits what a single request may upload.
type UploadConfig struct {
	// MaxBytes caps the whole multipart body; accepts KB/MB/GB (default: 100MB)
	MaxBytes int64 `env:"UPLOAD_MAX_BYTES" default:"100MB" unit:"bytes"`

	// MaxFiles caps the number of files per request (default: 20)
	MaxFiles int `env:"UPLOAD_MAX_FILES" default:"20"`

	// PreviewRows is the number of merged rows returned by /api/merge (default: 5)
	PreviewRows int `env:"PREVIEW_ROWS" default:"5"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL enables shipping logs to a Seq server when set
	SeqURL string `env:"LOG_SEQ_URL"`
}

// Addr returns the server listen address in host:port format.
func (c *HTTPConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
