package modcontrol

import "sync/atomic"

// ClientMetrics contains atomic metrics for a client.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ClientMetrics struct {
	// RequestCount indicates the number of Execute calls that sent a frame.
	RequestCount atomic.Uint64
	// AttemptCount indicates the number of frames sent, retries included.
	AttemptCount atomic.Uint64
	// RetryCount indicates the number of attempts after the first one.
	RetryCount atomic.Uint64
	// NoResponseCount indicates the number of requests that got no usable response.
	NoResponseCount atomic.Uint64
	// DiscardedFrameCount indicates the number of valid frames ignored because
	// their address or command code did not match the request.
	DiscardedFrameCount atomic.Uint64
	// DecodeErrCount indicates the number of received byte sequences that did not decode.
	DecodeErrCount atomic.Uint64
	// DroppedChunkCount indicates the number of chunks received with no request in flight.
	DroppedChunkCount atomic.Uint64
	// BytesReceived indicates the number of bytes received while a request was in flight.
	BytesReceived atomic.Uint64
}

func (m *ClientMetrics) incRequestCount()        { m.RequestCount.Add(1) }
func (m *ClientMetrics) incAttemptCount()        { m.AttemptCount.Add(1) }
func (m *ClientMetrics) incRetryCount()          { m.RetryCount.Add(1) }
func (m *ClientMetrics) incNoResponseCount()     { m.NoResponseCount.Add(1) }
func (m *ClientMetrics) incDiscardedFrameCount() { m.DiscardedFrameCount.Add(1) }
func (m *ClientMetrics) incDecodeErrCount()      { m.DecodeErrCount.Add(1) }
func (m *ClientMetrics) incDroppedChunkCount()   { m.DroppedChunkCount.Add(1) }

func (m *ClientMetrics) addBytesReceived(n int) {
	m.BytesReceived.Add(uint64(n)) //nolint:gosec
}
