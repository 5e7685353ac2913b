package modcontrol

import (
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/go-modcontrol/frame"
	"github.com/arloliu/go-modcontrol/logger"
)

const (
	DefaultAddress         uint16 = 0x0001
	DefaultResponseTimeout        = 500 * time.Millisecond
	DefaultRetryCount             = 3
	DefaultQuietPeriod            = 100 * time.Millisecond

	MinRetryCount = 1
	MaxRetryCount = 10
)

// ClientConfig holds the settings of a Client. The exchange settings may be
// changed at runtime through the Client setters.
type ClientConfig struct {
	mu sync.RWMutex

	// address is the device address requests are sent to. Defaults to 0x0001.
	address uint16

	// responseTimeout bounds the wait for the first byte of a response.
	// Defaults to 500 milliseconds.
	responseTimeout time.Duration

	// retryCount is the number of attempts per request, clamped to [1, 10].
	// Defaults to 3.
	retryCount int

	// quietPeriod is the silence after the last received chunk that ends a
	// response. Defaults to 100 milliseconds.
	quietPeriod time.Duration

	// responseMatching makes the client ignore frames whose address or
	// command code does not match the request. Defaults to true.
	responseMatching bool

	// addressPolicy validates the address before each request. Defaults to
	// rejecting the reserved addresses.
	addressPolicy frame.AddressPolicy

	logger logger.Logger
}

// NewClientConfig creates a client configuration with defaults, then applies opts.
func NewClientConfig(opts ...ClientOption) (*ClientConfig, error) {
	cfg := &ClientConfig{
		address:          DefaultAddress,
		responseTimeout:  DefaultResponseTimeout,
		retryCount:       DefaultRetryCount,
		quietPeriod:      DefaultQuietPeriod,
		responseMatching: true,
		addressPolicy:    frame.ReservedAddressPolicy(),
		logger:           logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Address returns the device address.
func (cfg *ClientConfig) Address() uint16 {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.address
}

// ResponseTimeout returns the default per-attempt response deadline.
func (cfg *ClientConfig) ResponseTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.responseTimeout
}

// RetryCount returns the number of attempts per request.
func (cfg *ClientConfig) RetryCount() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.retryCount
}

// QuietPeriod returns the silence that ends a response.
func (cfg *ClientConfig) QuietPeriod() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.quietPeriod
}

// ResponseMatching reports whether unrelated frames are ignored.
func (cfg *ClientConfig) ResponseMatching() bool {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.responseMatching
}

// AddressPolicy returns the address validation policy.
func (cfg *ClientConfig) AddressPolicy() frame.AddressPolicy {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.addressPolicy
}

// Logger returns the configured logger.
func (cfg *ClientConfig) Logger() logger.Logger {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.logger
}

// exchangeSettings is a consistent snapshot of the settings used by one Execute call.
type exchangeSettings struct {
	address     uint16
	timeout     time.Duration
	retries     int
	quietPeriod time.Duration
	matching    bool
	policy      frame.AddressPolicy
}

func (cfg *ClientConfig) snapshot() exchangeSettings {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return exchangeSettings{
		address:     cfg.address,
		timeout:     cfg.responseTimeout,
		retries:     cfg.retryCount,
		quietPeriod: cfg.quietPeriod,
		matching:    cfg.responseMatching,
		policy:      cfg.addressPolicy,
	}
}

// ClientOption represents a functional option for configuring a ClientConfig.
type ClientOption interface {
	apply(*ClientConfig) error
}

type clientOptFunc struct {
	name      string
	applyFunc func(*ClientConfig) error
}

func (c *clientOptFunc) apply(cfg *ClientConfig) error {
	if cfg == nil {
		return ErrClientConfigNil
	}

	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	return c.applyFunc(cfg)
}

func newClientOptFunc(name string, f func(*ClientConfig) error) *clientOptFunc {
	return &clientOptFunc{name: name, applyFunc: f}
}

// WithAddress sets the device address.
func WithAddress(address uint16) ClientOption {
	return newClientOptFunc("WithAddress", func(cfg *ClientConfig) error {
		cfg.address = address
		return nil
	})
}

// WithResponseTimeout sets the default response deadline. It must be positive.
func WithResponseTimeout(d time.Duration) ClientOption {
	return newClientOptFunc("WithResponseTimeout", func(cfg *ClientConfig) error {
		if d <= 0 {
			return fmt.Errorf("response timeout must be positive, got %v", d)
		}
		cfg.responseTimeout = d

		return nil
	})
}

// WithRetryCount sets the number of attempts per request. Values outside
// [MinRetryCount, MaxRetryCount] are clamped.
func WithRetryCount(n int) ClientOption {
	return newClientOptFunc("WithRetryCount", func(cfg *ClientConfig) error {
		cfg.retryCount = clampRetryCount(n)
		return nil
	})
}

// WithQuietPeriod sets the inter-chunk silence that ends a response. It must be positive.
func WithQuietPeriod(d time.Duration) ClientOption {
	return newClientOptFunc("WithQuietPeriod", func(cfg *ClientConfig) error {
		if d <= 0 {
			return fmt.Errorf("quiet period must be positive, got %v", d)
		}
		cfg.quietPeriod = d

		return nil
	})
}

// WithResponseMatching enables or disables the address and command code check
// on received frames.
func WithResponseMatching(enabled bool) ClientOption {
	return newClientOptFunc("WithResponseMatching", func(cfg *ClientConfig) error {
		cfg.responseMatching = enabled
		return nil
	})
}

// WithAddressPolicy sets the address validation applied before each request.
// A nil policy allows every address.
func WithAddressPolicy(policy frame.AddressPolicy) ClientOption {
	return newClientOptFunc("WithAddressPolicy", func(cfg *ClientConfig) error {
		if policy == nil {
			policy = frame.AllowAllAddresses
		}
		cfg.addressPolicy = policy

		return nil
	})
}

// WithLogger sets the logger of the client.
func WithLogger(l logger.Logger) ClientOption {
	return newClientOptFunc("WithLogger", func(cfg *ClientConfig) error {
		if l == nil {
			return fmt.Errorf("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

func clampRetryCount(n int) int {
	return min(max(n, MinRetryCount), MaxRetryCount)
}
