package mqttconn

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-modcontrol/logger"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultPublishTimeout = 3 * time.Second
	DefaultKeepAlive      = 60 * time.Second
	DefaultPingTimeout    = 10 * time.Second
)

// Config holds the settings of an MQTT gateway connection.
//
// The gateway forwards every message published on the command topic to its
// serial line, and publishes bytes read from the line on the response topic.
type Config struct {
	broker         string
	clientID       string
	username       string
	password       string
	cmdTopic       string
	rspTopic       string
	qos            byte
	connectTimeout time.Duration
	publishTimeout time.Duration
	keepAlive      time.Duration
	logger         logger.Logger
}

// NewConfig creates a configuration for the broker URL (for example
// "tcp://10.0.0.5:1883") and the gateway topics.
func NewConfig(broker, cmdTopic, rspTopic string, opts ...Option) (*Config, error) {
	if broker == "" {
		return nil, errors.New("mqttconn: broker is empty")
	}

	if cmdTopic == "" || rspTopic == "" {
		return nil, errors.New("mqttconn: command and response topics are required")
	}

	cfg := &Config{
		broker:         broker,
		clientID:       "modcontrol",
		cmdTopic:       cmdTopic,
		rspTopic:       rspTopic,
		connectTimeout: DefaultConnectTimeout,
		publishTimeout: DefaultPublishTimeout,
		keepAlive:      DefaultKeepAlive,
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Broker returns the broker URL.
func (cfg *Config) Broker() string { return cfg.broker }

// CommandTopic returns the topic requests are published to.
func (cfg *Config) CommandTopic() string { return cfg.cmdTopic }

// ResponseTopic returns the topic responses are received from.
func (cfg *Config) ResponseTopic() string { return cfg.rspTopic }

// QoS returns the MQTT quality of service level.
func (cfg *Config) QoS() byte { return cfg.qos }

// Option configures a Config.
type Option func(*Config) error

// WithClientID sets the MQTT client ID.
func WithClientID(id string) Option {
	return func(cfg *Config) error {
		if id == "" {
			return errors.New("mqttconn: client id is empty")
		}
		cfg.clientID = id

		return nil
	}
}

// WithCredentials sets the broker username and password.
func WithCredentials(username, password string) Option {
	return func(cfg *Config) error {
		cfg.username = username
		cfg.password = password

		return nil
	}
}

// WithQoS sets the QoS of publications and of the response subscription.
func WithQoS(qos byte) Option {
	return func(cfg *Config) error {
		if qos > 2 {
			return fmt.Errorf("mqttconn: invalid QoS %d", qos)
		}
		cfg.qos = qos

		return nil
	}
}

// WithConnectTimeout bounds the broker connect and subscribe calls.
func WithConnectTimeout(d time.Duration) Option {
	return func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("mqttconn: connect timeout must be positive, got %v", d)
		}
		cfg.connectTimeout = d

		return nil
	}
}

// WithPublishTimeout bounds each publish.
func WithPublishTimeout(d time.Duration) Option {
	return func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("mqttconn: publish timeout must be positive, got %v", d)
		}
		cfg.publishTimeout = d

		return nil
	}
}

// WithLogger sets the logger. A nil logger is rejected.
func WithLogger(l logger.Logger) Option {
	return func(cfg *Config) error {
		if l == nil {
			return errors.New("mqttconn: logger is nil")
		}
		cfg.logger = l

		return nil
	}
}
