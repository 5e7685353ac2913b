// Package serialconn provides a serial port transport, used for devices on
// an RS-485 bus or behind a radio modem.
package serialconn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"

	"github.com/arloliu/go-modcontrol/internal/task"
	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/transport"
)

type openFunc func(portName string, mode *serial.Mode) (serial.Port, error)

// Connection is a serial port transport.
type Connection struct {
	cfg     *Config
	logger  logger.Logger
	open    openFunc
	opState transport.AtomicOpState
	subs    *transport.Subscribers
	taskMgr *task.Manager

	mu     sync.Mutex
	port   serial.Port
	broken atomic.Bool
}

var _ transport.Transport = (*Connection)(nil)

// NewConnection creates a serial connection. The port is opened by Connect.
func NewConnection(cfg *Config) *Connection {
	l := cfg.logger.With("component", "serialconn", "port", cfg.portName)

	return &Connection{
		cfg:     cfg,
		logger:  l,
		open:    serial.Open,
		subs:    transport.NewSubscribers(),
		taskMgr: task.NewManager(context.Background(), l),
	}
}

// IsConnected reports whether the port is open and has not failed.
func (c *Connection) IsConnected() bool {
	return c.opState.IsOpened() && !c.broken.Load()
}

// Subscribe registers h for inbound data.
func (c *Connection) Subscribe(h transport.DataHandler) func() {
	return c.subs.Add(h)
}

// Connect opens the serial port and starts the receive loop. A port that
// failed since it was opened is closed and opened again.
func (c *Connection) Connect() error {
	if c.opState.IsOpened() {
		if !c.broken.Load() {
			return nil
		}

		c.logger.Info("port is broken, reopening")
		c.Disconnect()
	}

	if !c.opState.ToOpening() {
		if c.opState.IsOpened() && !c.broken.Load() {
			return nil
		}

		return fmt.Errorf("serialconn: port is %s", c.opState.String())
	}

	port, err := c.open(c.cfg.portName, c.cfg.mode())
	if err != nil {
		c.opState.ToClosing()
		c.opState.ToClosed()

		return fmt.Errorf("serialconn: open %s: %w", c.cfg.portName, err)
	}

	if err := port.SetReadTimeout(c.cfg.readTimeout); err != nil {
		_ = port.Close()
		c.opState.ToClosing()
		c.opState.ToClosed()

		return fmt.Errorf("serialconn: set read timeout: %w", err)
	}
	_ = port.ResetInputBuffer()

	c.mu.Lock()
	c.port = port
	c.mu.Unlock()
	c.broken.Store(false)

	buf := make([]byte, c.cfg.readBufSize)
	if err := c.taskMgr.StartReceiver("receiverTask", func() bool {
		return c.receiverTask(port, buf)
	}, nil); err != nil {
		c.opState.ToClosing()
		c.shutdown()
		c.opState.ToClosed()

		return fmt.Errorf("serialconn: %w", err)
	}

	c.opState.ToOpened()
	c.logger.Info("serial port opened", "baud", c.cfg.baudRate)

	return nil
}

// Disconnect stops the receive loop and closes the port.
func (c *Connection) Disconnect() {
	if !c.opState.ToClosing() {
		return
	}

	c.shutdown()
	c.opState.ToClosed()
	c.logger.Info("serial port closed")
}

func (c *Connection) shutdown() {
	c.taskMgr.Stop()

	c.mu.Lock()
	if c.port != nil {
		_ = c.port.Close()
		c.port = nil
	}
	c.mu.Unlock()

	c.taskMgr.Wait()
}

// Send writes data to the port. Empty data is not sent.
func (c *Connection) Send(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil || !c.opState.IsOpened() {
		return transport.ErrNotConnected
	}

	if _, err := c.port.Write(data); err != nil {
		c.broken.Store(true)
		return fmt.Errorf("serialconn: send: %w", err)
	}

	return nil
}

// receiverTask reads once. A read that times out returns no data and no error.
func (c *Connection) receiverTask(port serial.Port, buf []byte) bool {
	n, err := port.Read(buf)
	if n > 0 {
		c.subs.Publish(buf[:n])
	}

	if err != nil {
		var portErr *serial.PortError
		if !errors.As(err, &portErr) || portErr.Code() != serial.PortClosed {
			c.logger.Warn("serial read failed", "error", err)
		}
		c.broken.Store(true)

		return false
	}

	return true
}
