package wsconn

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/arloliu/go-modcontrol/logger"
)

const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 3 * time.Second
)

// Config holds the settings of a WebSocket proxy connection.
type Config struct {
	url              string
	username         string
	password         string
	skipTLSVerify    bool
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	logger           logger.Logger
}

// NewConfig creates a configuration for the proxy at rawURL. Only ws:// and
// wss:// URLs are accepted.
func NewConfig(rawURL string, opts ...Option) (*Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("wsconn: invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("wsconn: unsupported URL scheme %q, use ws:// or wss://", u.Scheme)
	}

	cfg := &Config{
		url:              rawURL,
		handshakeTimeout: DefaultHandshakeTimeout,
		writeTimeout:     DefaultWriteTimeout,
		logger:           logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// URL returns the WebSocket URL.
func (cfg *Config) URL() string { return cfg.url }

// Option configures a Config.
type Option func(*Config) error

// WithBasicAuth sets HTTP Basic credentials for the handshake. They are only
// sent when both are non-empty.
func WithBasicAuth(username, password string) Option {
	return func(cfg *Config) error {
		cfg.username = username
		cfg.password = password

		return nil
	}
}

// WithSkipTLSVerify disables certificate verification for wss:// URLs.
func WithSkipTLSVerify(skip bool) Option {
	return func(cfg *Config) error {
		cfg.skipTLSVerify = skip
		return nil
	}
}

// WithHandshakeTimeout bounds the WebSocket handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("wsconn: handshake timeout must be positive, got %v", d)
		}
		cfg.handshakeTimeout = d

		return nil
	}
}

// WithWriteTimeout sets the write deadline of Send.
func WithWriteTimeout(d time.Duration) Option {
	return func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("wsconn: write timeout must be positive, got %v", d)
		}
		cfg.writeTimeout = d

		return nil
	}
}

// WithLogger sets the logger. A nil logger is rejected.
func WithLogger(l logger.Logger) Option {
	return func(cfg *Config) error {
		if l == nil {
			return errors.New("wsconn: logger is nil")
		}
		cfg.logger = l

		return nil
	}
}
