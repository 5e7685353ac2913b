package modcontrol

import (
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/go-modcontrol/command"
	"github.com/arloliu/go-modcontrol/frame"
	"github.com/arloliu/go-modcontrol/internal/timer"
	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/transport"
)

// fallbackGrace is added to the response timeout to bound the wait of a
// caller even if no timer callback ever completes the exchange.
const fallbackGrace = time.Second

// Client executes request/response exchanges with a device over a Transport.
//
// At most one exchange is in flight per client: Connect, Disconnect and
// Execute are serialised. A Client can be used from multiple goroutines.
type Client struct {
	cfg     *ClientConfig
	logger  logger.Logger
	state   *sessionState
	metrics ClientMetrics

	// opMu serialises Connect, Disconnect and Execute.
	opMu sync.Mutex

	// mu guards the fields below. Timer callbacks and the transport
	// notification goroutine only take mu.
	mu          sync.Mutex
	transport   transport.Transport
	unsubscribe func()
	ex          *exchange
	stopping    bool
}

// exchange is the state of one request attempt.
type exchange struct {
	address  uint16
	code     byte
	matching bool
	quiet    time.Duration

	buf       []byte
	expiresAt time.Time
	deadline  *timer.Countdown
	quietTmr  *timer.Countdown

	// armed and armedAt describe the current deadline arming. A deadline
	// callback that is not backed by them is stale.
	armed   bool
	armedAt time.Time

	done     chan struct{}
	finished bool
	aborted  bool
	result   *frame.Frame
}

// NewClient creates a client. The client starts disconnected.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrClientConfigNil
	}

	l := cfg.Logger().With("component", "modcontrol")

	return &Client{
		cfg:    cfg,
		logger: l,
		state:  newSessionState(l),
	}, nil
}

// Connect binds t to the client and opens it if it is not connected yet.
//
// A previously bound transport is unsubscribed and disconnected first. When
// verify is true, a GetVersion request checks the device and
// ErrDeviceNotResponding is returned if it does not answer; the transport
// stays bound in that case.
func (c *Client) Connect(t transport.Transport, verify bool) error {
	if t == nil {
		return ErrNilTransport
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.unbind(t)
	c.state.fire(evConnect)

	unsubscribe := t.Subscribe(c.onData)
	c.mu.Lock()
	c.transport = t
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	if !t.IsConnected() {
		err := t.Connect()
		if err == nil && !t.IsConnected() {
			err = transport.ErrNotConnected
		}

		if err != nil {
			c.unbind(nil)
			c.state.fire(evConnectFailed)

			return fmt.Errorf("%w: %w", ErrConnectFailed, err)
		}
	}

	c.state.fire(evConnected)
	c.logger.Info("transport connected", "address", fmt.Sprintf("0x%04X", c.cfg.Address()))

	if !verify {
		return nil
	}

	f, err := c.execute(command.GetVersion{}, 0)
	if err != nil {
		return err
	}

	if resp := (command.GetVersion{}).ParseResponse(f); resp.ErrorKind() == command.Timeout {
		return ErrDeviceNotResponding
	}

	return nil
}

// unbind detaches the bound transport. It is disconnected unless it is keep.
func (c *Client) unbind(keep transport.Transport) {
	c.mu.Lock()
	old, unsubscribe := c.transport, c.unsubscribe
	c.transport, c.unsubscribe = nil, nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	if old != nil && old != keep {
		old.Disconnect()
	}
}

// Disconnect releases a caller blocked in Execute, which then returns without
// further retries, and closes the bound transport. It is idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopping = true
	if ex := c.ex; ex != nil && !ex.finished {
		ex.aborted = true
		c.finish(ex, nil)
	}
	c.mu.Unlock()

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.unbind(nil)

	c.mu.Lock()
	c.stopping = false
	c.mu.Unlock()

	c.state.fire(evDisconnect)
	c.logger.Debug("client disconnected")
}

// IsConnected reports whether a connected transport is bound.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()

	return t != nil && t.IsConnected()
}

// State returns the session state.
func (c *Client) State() State {
	return c.state.current()
}

// GetMetrics returns the metrics of the client.
func (c *Client) GetMetrics() *ClientMetrics {
	return &c.metrics
}

// Address returns the device address requests are sent to.
func (c *Client) Address() uint16 { return c.cfg.Address() }

// SetAddress changes the device address used by subsequent requests.
func (c *Client) SetAddress(address uint16) {
	_ = WithAddress(address).apply(c.cfg)
}

// RetryCount returns the number of attempts per request.
func (c *Client) RetryCount() int { return c.cfg.RetryCount() }

// SetRetryCount sets the number of attempts per request, clamped to [1, 10].
func (c *Client) SetRetryCount(n int) {
	_ = WithRetryCount(n).apply(c.cfg)
}

// ResponseTimeout returns the default per-attempt response deadline.
func (c *Client) ResponseTimeout() time.Duration { return c.cfg.ResponseTimeout() }

// SetResponseTimeout sets the default response deadline. Non-positive values are ignored.
func (c *Client) SetResponseTimeout(d time.Duration) {
	_ = WithResponseTimeout(d).apply(c.cfg)
}

// Execute sends cmd to the device and waits for its response frame.
//
// timeout is the per-attempt response deadline; zero selects the configured
// default. The request is attempted up to RetryCount times until a response
// frame is decoded.
//
// Execute returns (nil, nil) when the device did not answer. An error is only
// returned for misuse or a transport failure; send errors are not retried.
func (c *Client) Execute(cmd command.Command, timeout time.Duration) (*frame.Frame, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.execute(cmd, timeout)
}

// Send executes req and decodes its response. A device that does not answer
// yields a response whose ErrorKind is Timeout.
func Send[R any](c *Client, req command.Request[R]) (R, error) {
	f, err := c.Execute(req, 0)
	if err != nil {
		var zero R
		return zero, err
	}

	return req.ParseResponse(f), nil
}

// execute must be called with opMu held.
func (c *Client) execute(cmd command.Command, timeout time.Duration) (*frame.Frame, error) {
	settings := c.cfg.snapshot()
	if timeout <= 0 {
		timeout = settings.timeout
	}

	if err := settings.policy(settings.address); err != nil {
		return nil, fmt.Errorf("modcontrol: %w", err)
	}

	req, err := command.NewFrame(settings.address, cmd)
	if err != nil {
		return nil, fmt.Errorf("modcontrol: %w", err)
	}

	data, err := frame.Encode(req)
	if err != nil {
		return nil, fmt.Errorf("modcontrol: %w", err)
	}

	c.metrics.incRequestCount()
	c.state.fire(evRequest)
	defer c.state.fire(evComplete)

	for attempt := 1; attempt <= settings.retries; attempt++ {
		if attempt > 1 {
			c.metrics.incRetryCount()
		}

		c.logger.Debug("send request", "attempt", attempt, "frame", req.String())

		rsp, aborted, err := c.attempt(data, req, settings, timeout)
		if err != nil {
			return nil, err
		}

		if rsp != nil {
			c.logger.Debug("response received", "attempt", attempt, "frame", rsp.String())
			return rsp, nil
		}

		if aborted {
			c.logger.Debug("request aborted by disconnect", "command", command.Code(req.Code()).String())
			break
		}

		c.logger.Debug("no response", "attempt", attempt, "timeout", timeout)
	}

	c.metrics.incNoResponseCount()

	return nil, nil //nolint:nilnil
}

// attempt performs one send and wait cycle.
func (c *Client) attempt(data []byte, req *frame.Frame, settings exchangeSettings, timeout time.Duration) (*frame.Frame, bool, error) {
	ex := &exchange{
		address:   req.Address,
		code:      req.Code(),
		matching:  settings.matching,
		quiet:     settings.quietPeriod,
		expiresAt: time.Now().Add(timeout),
		done:      make(chan struct{}),
	}
	ex.deadline = timer.NewCountdown(func() { c.onDeadline(ex) })
	ex.quietTmr = timer.NewCountdown(func() { c.onQuiet(ex) })

	// buffer reset and deadline arming happen before the send
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return nil, true, nil
	}

	t := c.transport
	if t == nil || !t.IsConnected() {
		c.mu.Unlock()
		return nil, false, ErrNotConnected
	}

	c.ex = ex
	ex.armDeadline(timeout)
	c.mu.Unlock()

	c.metrics.incAttemptCount()

	if err := t.Send(data); err != nil {
		c.mu.Lock()
		c.finish(ex, nil)
		c.ex = nil
		c.mu.Unlock()

		return nil, false, fmt.Errorf("modcontrol: send failed: %w", err)
	}

	fallback := timer.Get(timeout + fallbackGrace)
	defer timer.Put(fallback)

	select {
	case <-ex.done:
	case <-fallback.C:
		c.logger.Warn("response wait exceeded fallback bound", "timeout", timeout)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !ex.finished {
		c.finish(ex, nil)
	}
	c.ex = nil

	return ex.result, ex.aborted, nil
}

// onData is the transport data handler.
func (c *Client) onData(chunk []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ex := c.ex
	if ex == nil || ex.finished {
		c.metrics.incDroppedChunkCount()
		c.logger.Debug("drop chunk received with no request in flight", "len", len(chunk))

		return
	}

	c.metrics.addBytesReceived(len(chunk))
	ex.disarmDeadline()
	ex.buf = append(ex.buf, chunk...)
	ex.quietTmr.Restart(ex.quiet)
}

func (c *Client) onDeadline(ex *exchange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ex != ex || ex.finished || !ex.armed || time.Now().Before(ex.armedAt) {
		return
	}

	c.finish(ex, nil)
}

// onQuiet decodes the bytes gathered since the exchange started, or since the
// last discarded frame.
func (c *Client) onQuiet(ex *exchange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ex != ex || ex.finished {
		return
	}

	data := ex.buf
	ex.buf = nil

	f, err := frame.Decode(data)
	if err != nil {
		c.metrics.incDecodeErrCount()
		c.logger.Debug("discard undecodable response", "error", err, "data", fmt.Sprintf("% X", data))
		c.finish(ex, nil)

		return
	}

	if ex.matching && (f.Address != ex.address || f.Code() != ex.code) {
		c.metrics.incDiscardedFrameCount()
		c.logger.Debug("discard unrelated frame", "frame", f.String())

		remaining := time.Until(ex.expiresAt)
		if remaining <= 0 {
			c.finish(ex, nil)
			return
		}
		ex.armDeadline(remaining)

		return
	}

	c.finish(ex, f)
}

// finish completes ex with f. It must be called with mu held.
func (c *Client) finish(ex *exchange, f *frame.Frame) {
	ex.disarmDeadline()
	ex.quietTmr.Stop()
	ex.result = f
	ex.finished = true
	close(ex.done)
}

// armDeadline starts the deadline countdown. It must be called with mu held.
func (ex *exchange) armDeadline(d time.Duration) {
	ex.armed = true
	ex.armedAt = time.Now().Add(d)
	ex.deadline.Restart(d)
}

// disarmDeadline stops the deadline countdown. A callback already past the
// countdown's own check sees armed == false and returns. It must be called
// with mu held.
func (ex *exchange) disarmDeadline() {
	ex.armed = false
	ex.deadline.Stop()
}
