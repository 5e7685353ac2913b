package serialconn

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/arloliu/go-modcontrol/logger"
)

const (
	// DefaultBaudRate is the line speed of the radio modems used with the devices.
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 100 * time.Millisecond
	DefaultReadBufSize = 256
)

// Config holds the settings of a serial connection. The line is always
// 8 data bits, no parity, one stop bit.
type Config struct {
	portName    string
	baudRate    int
	readTimeout time.Duration
	readBufSize int
	logger      logger.Logger
}

// NewConfig creates a serial configuration for portName, such as
// "/dev/ttyUSB0" or "COM3".
func NewConfig(portName string, opts ...Option) (*Config, error) {
	if portName == "" {
		return nil, errors.New("serialconn: port name is empty")
	}

	cfg := &Config{
		portName:    portName,
		baudRate:    DefaultBaudRate,
		readTimeout: DefaultReadTimeout,
		readBufSize: DefaultReadBufSize,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// PortName returns the serial port name.
func (cfg *Config) PortName() string { return cfg.portName }

// BaudRate returns the line speed.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// ReadTimeout returns the read timeout of the receive loop.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

func (cfg *Config) mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Option configures a Config.
type Option func(*Config) error

// WithBaudRate sets the line speed.
func WithBaudRate(baud int) Option {
	return func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("serialconn: invalid baud rate %d", baud)
		}
		cfg.baudRate = baud

		return nil
	}
}

// WithReadTimeout sets how long a single read waits for data before the
// receive loop checks for shutdown.
func WithReadTimeout(d time.Duration) Option {
	return func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("serialconn: read timeout must be positive, got %v", d)
		}
		cfg.readTimeout = d

		return nil
	}
}

// WithLogger sets the logger of the connection.
func WithLogger(l logger.Logger) Option {
	return func(cfg *Config) error {
		if l == nil {
			return errors.New("serialconn: logger is nil")
		}
		cfg.logger = l

		return nil
	}
}
