package tcpconn

import "sync/atomic"

// ConnectionMetrics contains atomic metrics for a connection.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ConnectionMetrics struct {
	// BytesSent indicates the number of bytes written to the socket.
	BytesSent atomic.Uint64
	// BytesReceived indicates the number of bytes read from the socket.
	BytesReceived atomic.Uint64
	// SendErrCount indicates the number of failed writes.
	SendErrCount atomic.Uint64
	// HealthCheckFailCount indicates the number of failed health checks.
	HealthCheckFailCount atomic.Uint64
	// ReconnectCount indicates the number of successful reconnects.
	ReconnectCount atomic.Uint64
	// ReconnectErrCount indicates the number of failed reconnects.
	ReconnectErrCount atomic.Uint64
}

func (m *ConnectionMetrics) addBytesSent(n int) {
	m.BytesSent.Add(uint64(n)) //nolint:gosec
}

func (m *ConnectionMetrics) addBytesReceived(n int) {
	m.BytesReceived.Add(uint64(n)) //nolint:gosec
}

func (m *ConnectionMetrics) incSendErrCount()         { m.SendErrCount.Add(1) }
func (m *ConnectionMetrics) incHealthCheckFailCount() { m.HealthCheckFailCount.Add(1) }
func (m *ConnectionMetrics) incReconnectCount()       { m.ReconnectCount.Add(1) }
func (m *ConnectionMetrics) incReconnectErrCount()    { m.ReconnectErrCount.Add(1) }
