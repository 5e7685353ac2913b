// Package mqttconn provides a transport to devices behind an MQTT serial
// gateway.
package mqttconn

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/transport"
)

var ErrTimeout = errors.New("mqttconn: operation timed out")

// Connection is an MQTT gateway transport. The paho client reconnects on its
// own; the response subscription is restored after every reconnect.
type Connection struct {
	cfg     *Config
	logger  logger.Logger
	client  mqtt.Client
	opState transport.AtomicOpState
	subs    *transport.Subscribers

	connLost atomic.Bool
}

var _ transport.Transport = (*Connection)(nil)

// NewConnection creates an MQTT gateway connection. The broker is contacted by Connect.
func NewConnection(cfg *Config) *Connection {
	c := &Connection{
		cfg:    cfg,
		logger: cfg.logger.With("component", "mqttconn", "broker", cfg.broker),
		subs:   transport.NewSubscribers(),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.broker)
	opts.SetClientID(cfg.clientID)
	opts.SetUsername(cfg.username)
	opts.SetPassword(cfg.password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(cfg.keepAlive)
	opts.SetPingTimeout(DefaultPingTimeout)
	opts.SetConnectTimeout(cfg.connectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)

	return c
}

// IsConnected reports whether the connection is open and the broker link is up.
func (c *Connection) IsConnected() bool {
	return c.opState.IsOpened() && c.client.IsConnectionOpen()
}

// Subscribe registers h for messages received on the response topic.
func (c *Connection) Subscribe(h transport.DataHandler) func() {
	return c.subs.Add(h)
}

// Connect connects to the broker and subscribes to the response topic. A
// connection whose broker link is down is dropped and established again.
func (c *Connection) Connect() error {
	if c.opState.IsOpened() {
		if c.client.IsConnectionOpen() {
			return nil
		}

		c.logger.Info("broker link is down, reconnecting")
		c.Disconnect()
	}

	if !c.opState.ToOpening() {
		if c.IsConnected() {
			return nil
		}

		return fmt.Errorf("mqttconn: connection is %s", c.opState.String())
	}

	if err := c.connect(); err != nil {
		c.opState.ToClosing()
		c.client.Disconnect(250)
		c.opState.ToClosed()

		return err
	}

	c.opState.ToOpened()
	c.logger.Info("connected to broker", "cmd_topic", c.cfg.cmdTopic, "rsp_topic", c.cfg.rspTopic)

	return nil
}

func (c *Connection) connect() error {
	if err := c.wait(c.client.Connect(), c.cfg.connectTimeout); err != nil {
		return fmt.Errorf("mqttconn: connect: %w", err)
	}

	if err := c.subscribeResponses(c.client); err != nil {
		return fmt.Errorf("mqttconn: subscribe %s: %w", c.cfg.rspTopic, err)
	}

	return nil
}

func (c *Connection) subscribeResponses(client mqtt.Client) error {
	return c.wait(client.Subscribe(c.cfg.rspTopic, c.cfg.qos, c.onMessage), c.cfg.connectTimeout)
}

// Disconnect unsubscribes and disconnects from the broker.
func (c *Connection) Disconnect() {
	if !c.opState.ToClosing() {
		return
	}

	if c.client.IsConnectionOpen() {
		_ = c.wait(c.client.Unsubscribe(c.cfg.rspTopic), c.cfg.publishTimeout)
	}
	c.client.Disconnect(250)

	c.opState.ToClosed()
	c.logger.Info("disconnected from broker")
}

// Send publishes data on the command topic. Empty data is not sent.
func (c *Connection) Send(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if !c.IsConnected() {
		return transport.ErrNotConnected
	}

	if err := c.wait(c.client.Publish(c.cfg.cmdTopic, c.cfg.qos, false, data), c.cfg.publishTimeout); err != nil {
		return fmt.Errorf("mqttconn: publish: %w", err)
	}

	return nil
}

func (c *Connection) wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}

	return token.Error()
}

func (c *Connection) onMessage(_ mqtt.Client, msg mqtt.Message) {
	data := msg.Payload()
	if len(data) == 0 {
		return
	}

	c.subs.Publish(data)
}

// onConnect restores the response subscription after an automatic reconnect.
// The first connect subscribes in Connect.
func (c *Connection) onConnect(client mqtt.Client) {
	if !c.connLost.CompareAndSwap(true, false) {
		return
	}

	c.logger.Info("reconnected to broker")
	if err := c.subscribeResponses(client); err != nil {
		c.logger.Error("failed to restore response subscription", "topic", c.cfg.rspTopic, "error", err)
	}
}

func (c *Connection) onConnectionLost(_ mqtt.Client, err error) {
	c.connLost.Store(true)
	c.logger.Warn("connection to broker lost", "error", err)
}
