package serialconn

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/transport"
)

// fakePort implements the serial.Port methods used by Connection. Reads
// return queued chunks, or time out after the configured read timeout.
type fakePort struct {
	serial.Port

	mu          sync.Mutex
	incoming    chan []byte
	written     [][]byte
	readTimeout time.Duration
	closed      chan struct{}
	closeOnce   sync.Once
	writeErr    error
}

func newFakePort() *fakePort {
	return &fakePort{incoming: make(chan []byte, 8), closed: make(chan struct{})}
}

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.mu.Lock()
	p.readTimeout = d
	p.mu.Unlock()

	return nil
}

func (p *fakePort) ResetInputBuffer() error { return nil }

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	timeout := p.readTimeout
	p.mu.Unlock()

	select {
	case data := <-p.incoming:
		return copy(buf, data), nil
	case <-p.closed:
		return 0, &serial.PortError{}
	case <-time.After(timeout):
		return 0, nil
	}
}

func (p *fakePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), data...))

	return len(data), nil
}

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

func newTestConnection(t *testing.T, port *fakePort, openErr error) *Connection {
	t.Helper()

	cfg, err := NewConfig("/dev/ttyTEST", WithLogger(logger.Nop()), WithReadTimeout(10*time.Millisecond))
	require.NoError(t, err)

	conn := NewConnection(cfg)
	conn.open = func(name string, mode *serial.Mode) (serial.Port, error) {
		assert.Equal(t, "/dev/ttyTEST", name)
		assert.Equal(t, DefaultBaudRate, mode.BaudRate)
		assert.Equal(t, 8, mode.DataBits)
		assert.Equal(t, serial.NoParity, mode.Parity)
		assert.Equal(t, serial.OneStopBit, mode.StopBits)

		if openErr != nil {
			return nil, openErr
		}

		return port, nil
	}
	t.Cleanup(conn.Disconnect)

	return conn
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig("")
	require.Error(t, err)

	cfg, err := NewConfig("COM3", WithBaudRate(19200))
	require.NoError(t, err)
	assert.Equal(t, "COM3", cfg.PortName())
	assert.Equal(t, 19200, cfg.BaudRate())
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout())

	_, err = NewConfig("COM3", WithBaudRate(0))
	require.Error(t, err)

	_, err = NewConfig("COM3", WithReadTimeout(0))
	require.Error(t, err)
}

func TestConnection_ReceiveAndSend(t *testing.T) {
	port := newFakePort()
	conn := newTestConnection(t, port, nil)

	chunks := make(chan []byte, 4)
	conn.Subscribe(func(data []byte) { chunks <- data })

	require.NoError(t, conn.Connect())
	require.True(t, conn.IsConnected())

	port.incoming <- []byte{0x00, 0x01, 0x30}
	select {
	case data := <-chunks:
		assert.Equal(t, []byte{0x00, 0x01, 0x30}, data)
	case <-time.After(time.Second):
		t.Fatal("chunk not forwarded")
	}

	require.NoError(t, conn.Send(nil))
	require.NoError(t, conn.Send([]byte{0xAB}))

	port.mu.Lock()
	assert.Equal(t, [][]byte{{0xAB}}, port.written)
	port.mu.Unlock()
}

func TestConnection_OpenFailure(t *testing.T) {
	conn := newTestConnection(t, nil, errors.New("no such device"))

	require.Error(t, conn.Connect())
	assert.False(t, conn.IsConnected())
	require.ErrorIs(t, conn.Send([]byte{1}), transport.ErrNotConnected)
}

func TestConnection_Disconnect(t *testing.T) {
	port := newFakePort()
	conn := newTestConnection(t, port, nil)

	require.NoError(t, conn.Connect())
	conn.Disconnect()
	conn.Disconnect()

	assert.False(t, conn.IsConnected())
	assert.Equal(t, 0, conn.taskMgr.TaskCount())
	require.ErrorIs(t, conn.Send([]byte{1}), transport.ErrNotConnected)
}

func TestConnection_WriteFailureMarksBroken(t *testing.T) {
	port := newFakePort()
	port.writeErr = errors.New("i/o error")
	conn := newTestConnection(t, port, nil)

	require.NoError(t, conn.Connect())
	require.Error(t, conn.Send([]byte{1}))
	assert.False(t, conn.IsConnected())
}

func TestConnection_ConnectReopensBrokenPort(t *testing.T) {
	first := newFakePort()
	first.writeErr = errors.New("i/o error")
	second := newFakePort()
	conn := newTestConnection(t, nil, nil)

	opened := 0
	conn.open = func(string, *serial.Mode) (serial.Port, error) {
		opened++
		if opened == 1 {
			return first, nil
		}

		return second, nil
	}

	require.NoError(t, conn.Connect())
	require.Error(t, conn.Send([]byte{1}))
	require.False(t, conn.IsConnected())

	require.NoError(t, conn.Connect())
	assert.True(t, conn.IsConnected())
	assert.Equal(t, 2, opened)

	select {
	case <-first.closed:
	default:
		t.Fatal("broken port not closed")
	}

	require.NoError(t, conn.Send([]byte{0xAB}))
	second.mu.Lock()
	assert.Equal(t, [][]byte{{0xAB}}, second.written)
	second.mu.Unlock()
}
