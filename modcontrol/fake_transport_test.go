package modcontrol

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-modcontrol/frame"
	"github.com/arloliu/go-modcontrol/transport"
)

type reply struct {
	delay time.Duration
	data  []byte
}

// fakeTransport is an in-memory transport. Replies produced by replyFn are
// published asynchronously, in order, each after its delay.
type fakeTransport struct {
	mu          sync.Mutex
	connected   bool
	connectErr  error
	connectNoop bool
	sendErr     error
	sent        [][]byte
	connects    int
	disconnects int
	replyFn     func(req []byte) []reply

	subs *transport.Subscribers
}

var _ transport.Transport = (*fakeTransport)(nil)

func newFakeTransport(replyFn func(req []byte) []reply) *fakeTransport {
	return &fakeTransport{replyFn: replyFn, subs: transport.NewSubscribers()}
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.connected
}

func (f *fakeTransport) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = !f.connectNoop

	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disconnects++
	f.connected = false
}

func (f *fakeTransport) Send(data []byte) error {
	f.mu.Lock()
	f.sent = append(f.sent, append([]byte(nil), data...))
	sendErr, replyFn := f.sendErr, f.replyFn
	f.mu.Unlock()

	if sendErr != nil {
		return sendErr
	}

	if replyFn != nil {
		replies := replyFn(data)
		go func() {
			for _, r := range replies {
				time.Sleep(r.delay)
				f.subs.Publish(r.data)
			}
		}()
	}

	return nil
}

func (f *fakeTransport) Subscribe(h transport.DataHandler) func() {
	return f.subs.Add(h)
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

func (f *fakeTransport) disconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.disconnects
}

func encodeFrame(t *testing.T, address uint16, cmdByte byte, payload ...byte) []byte {
	t.Helper()

	f, err := frame.New(address, cmdByte, payload)
	require.NoError(t, err)

	data, err := frame.Encode(f)
	require.NoError(t, err)

	return data
}

// answerWith replies to every request with a frame carrying the request's
// address and command byte and the given payload.
func answerWith(t *testing.T, payload ...byte) func([]byte) []reply {
	return func(req []byte) []reply {
		f, err := frame.Decode(req)
		if err != nil {
			t.Errorf("device received invalid frame: %v", err)
			return nil
		}

		return []reply{{delay: 5 * time.Millisecond, data: encodeFrame(t, f.Address, f.CommandByte, payload...)}}
	}
}
