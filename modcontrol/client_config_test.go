package modcontrol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-modcontrol/frame"
	"github.com/arloliu/go-modcontrol/logger"
)

func TestNewClientConfig(t *testing.T) {
	require := require.New(t)

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewClientConfig()
		require.NoError(err)
		require.Equal(DefaultAddress, cfg.Address())
		require.Equal(500*time.Millisecond, cfg.ResponseTimeout())
		require.Equal(3, cfg.RetryCount())
		require.Equal(100*time.Millisecond, cfg.QuietPeriod())
		require.True(cfg.ResponseMatching())
		require.ErrorIs(cfg.AddressPolicy()(0x2B00), frame.ErrReservedAddress)
		require.NotNil(cfg.Logger())
	})

	t.Run("Options", func(t *testing.T) {
		cfg, err := NewClientConfig(
			WithAddress(0x0102),
			WithResponseTimeout(2*time.Second),
			WithRetryCount(5),
			WithQuietPeriod(50*time.Millisecond),
			WithResponseMatching(false),
			WithAddressPolicy(nil),
			WithLogger(logger.Nop()),
		)
		require.NoError(err)
		require.Equal(uint16(0x0102), cfg.Address())
		require.Equal(2*time.Second, cfg.ResponseTimeout())
		require.Equal(5, cfg.RetryCount())
		require.Equal(50*time.Millisecond, cfg.QuietPeriod())
		require.False(cfg.ResponseMatching())
		require.NoError(cfg.AddressPolicy()(0x2B00))
	})

	t.Run("Retry count is clamped", func(t *testing.T) {
		cfg, err := NewClientConfig(WithRetryCount(0))
		require.NoError(err)
		require.Equal(1, cfg.RetryCount())

		cfg, err = NewClientConfig(WithRetryCount(42))
		require.NoError(err)
		require.Equal(10, cfg.RetryCount())
	})

	t.Run("Invalid values", func(t *testing.T) {
		_, err := NewClientConfig(WithResponseTimeout(0))
		require.EqualError(err, "response timeout must be positive, got 0s")

		_, err = NewClientConfig(WithQuietPeriod(-time.Second))
		require.Error(err)

		_, err = NewClientConfig(WithLogger(nil))
		require.EqualError(err, "logger is nil")

		require.ErrorIs(WithAddress(1).apply(nil), ErrClientConfigNil)
	})
}
