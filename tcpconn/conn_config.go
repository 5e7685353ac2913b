package tcpconn

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/arloliu/go-modcontrol/logger"
)

// ErrConnConfigNil indicates that a nil ConnectionConfig was provided.
var ErrConnConfigNil = errors.New("tcpconn: connection config is nil")

const (
	DefaultConnectTimeout      = 1 * time.Second
	DefaultKeepAliveIdle       = 2 * time.Second
	DefaultKeepAliveInterval   = 500 * time.Millisecond
	DefaultKeepAliveCount      = 10
	DefaultHealthCheckInterval = 5 * time.Second
	DefaultReconnectInterval   = 30 * time.Second
	DefaultSendTimeout         = 3 * time.Second
	DefaultReadBufferSize      = 2048
)

// ConnectionConfig represents the configuration of a TCP connection to a
// device or a serial device server.
type ConnectionConfig struct {
	mu sync.RWMutex

	// host specifies the host of the remote device.
	host string

	// port specifies the TCP port of the remote device.
	port int

	// connectTimeout bounds the dial of a connection attempt.
	// Defaults to 1 second.
	connectTimeout time.Duration

	// keepAliveIdle is the idle time before the first TCP keep-alive packet.
	// Defaults to 2 seconds.
	keepAliveIdle time.Duration
	// keepAliveInterval is the time between keep-alive packets. The peer is
	// declared dead after DefaultKeepAliveCount unanswered packets.
	// Defaults to 500 milliseconds.
	keepAliveInterval time.Duration

	// healthCheckInterval is the period of the connection health check.
	// Defaults to 5 seconds.
	healthCheckInterval time.Duration

	// reconnectInterval is the delay before the next health check after a
	// failed reconnect. Defaults to 30 seconds.
	reconnectInterval time.Duration

	// sendTimeout bounds a single write. Defaults to 3 seconds.
	sendTimeout time.Duration

	// readBufferSize is the size of the receive buffer; each read delivers
	// at most this many bytes. Defaults to 2048.
	readBufferSize int

	// autoReconnect makes the health check re-establish a lost connection.
	// Defaults to true.
	autoReconnect bool

	logger logger.Logger
}

// NewConnectionConfig creates a TCP connection configuration with the given
// host, port number and optional functional options.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		connectTimeout:      DefaultConnectTimeout,
		keepAliveIdle:       DefaultKeepAliveIdle,
		keepAliveInterval:   DefaultKeepAliveInterval,
		healthCheckInterval: DefaultHealthCheckInterval,
		reconnectInterval:   DefaultReconnectInterval,
		sendTimeout:         DefaultSendTimeout,
		readBufferSize:      DefaultReadBufferSize,
		autoReconnect:       true,
		logger:              logger.GetLogger(),
	}

	if err := withRemoteHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Address returns the "host:port" address of the remote device.
func (cfg *ConnectionConfig) Address() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
}

// ConnectTimeout returns the dial timeout.
func (cfg *ConnectionConfig) ConnectTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.connectTimeout
}

// KeepAlive returns the keep-alive idle time and packet interval.
func (cfg *ConnectionConfig) KeepAlive() (idle, interval time.Duration) {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.keepAliveIdle, cfg.keepAliveInterval
}

// HealthCheckInterval returns the health check interval.
func (cfg *ConnectionConfig) HealthCheckInterval() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.healthCheckInterval
}

// ReconnectInterval returns the delay before the next reconnect attempt after a failure.
func (cfg *ConnectionConfig) ReconnectInterval() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.reconnectInterval
}

// SendTimeout returns the write deadline of Send.
func (cfg *ConnectionConfig) SendTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.sendTimeout
}

// ReadBufferSize returns the size of the receive buffer.
func (cfg *ConnectionConfig) ReadBufferSize() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.readBufferSize
}

// AutoReconnect reports whether the health check reconnects a lost connection.
func (cfg *ConnectionConfig) AutoReconnect() bool {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.autoReconnect
}

// Logger returns the configured logger.
func (cfg *ConnectionConfig) Logger() logger.Logger {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.logger
}

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error {
	if cfg == nil {
		return ErrConnConfigNil
	}

	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	return c.applyFunc(cfg)
}

func newConnOptFunc(name string, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{name: name, applyFunc: f}
}

func withRemoteHost(host string) ConnOption {
	return newConnOptFunc("withRemoteHost", func(cfg *ConnectionConfig) error {
		if host == "" {
			return errors.New("invalid host")
		}
		cfg.host = host

		return nil
	})
}

func withPort(port int) ConnOption {
	return newConnOptFunc("withPort", func(cfg *ConnectionConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port is out of range [1, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithConnectTimeout sets the dial timeout.
func WithConnectTimeout(d time.Duration) ConnOption {
	return newConnOptFunc("WithConnectTimeout", func(cfg *ConnectionConfig) error {
		if d <= 0 {
			return fmt.Errorf("connect timeout must be positive, got %v", d)
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithKeepAlive sets the TCP keep-alive idle time and packet interval.
func WithKeepAlive(idle, interval time.Duration) ConnOption {
	return newConnOptFunc("WithKeepAlive", func(cfg *ConnectionConfig) error {
		if idle <= 0 || interval <= 0 {
			return fmt.Errorf("keep-alive idle and interval must be positive, got %v and %v", idle, interval)
		}
		cfg.keepAliveIdle = idle
		cfg.keepAliveInterval = interval

		return nil
	})
}

// WithHealthCheckInterval sets the period of the health check.
func WithHealthCheckInterval(d time.Duration) ConnOption {
	return newConnOptFunc("WithHealthCheckInterval", func(cfg *ConnectionConfig) error {
		if d <= 0 {
			return fmt.Errorf("health check interval must be positive, got %v", d)
		}
		cfg.healthCheckInterval = d

		return nil
	})
}

// WithReconnectInterval sets the delay after a failed reconnect.
func WithReconnectInterval(d time.Duration) ConnOption {
	return newConnOptFunc("WithReconnectInterval", func(cfg *ConnectionConfig) error {
		if d <= 0 {
			return fmt.Errorf("reconnect interval must be positive, got %v", d)
		}
		cfg.reconnectInterval = d

		return nil
	})
}

// WithSendTimeout sets the write deadline of Send.
func WithSendTimeout(d time.Duration) ConnOption {
	return newConnOptFunc("WithSendTimeout", func(cfg *ConnectionConfig) error {
		if d <= 0 {
			return fmt.Errorf("send timeout must be positive, got %v", d)
		}
		cfg.sendTimeout = d

		return nil
	})
}

// WithReadBufferSize sets the receive buffer size.
func WithReadBufferSize(size int) ConnOption {
	return newConnOptFunc("WithReadBufferSize", func(cfg *ConnectionConfig) error {
		if size < 1 {
			return fmt.Errorf("read buffer size must be positive, got %d", size)
		}
		cfg.readBufferSize = size

		return nil
	})
}

// WithAutoReconnect enables or disables reconnecting from the health check.
func WithAutoReconnect(enabled bool) ConnOption {
	return newConnOptFunc("WithAutoReconnect", func(cfg *ConnectionConfig) error {
		cfg.autoReconnect = enabled
		return nil
	})
}

// WithLogger sets the logger of the connection.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", func(cfg *ConnectionConfig) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
