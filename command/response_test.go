package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-modcontrol/frame"
)

func mustFrame(t *testing.T, address uint16, cmdByte byte, payload ...byte) *frame.Frame {
	t.Helper()

	f, err := frame.New(address, cmdByte, payload)
	require.NoError(t, err)

	return f
}

func TestNewResponse(t *testing.T) {
	tests := []struct {
		name     string
		frame    *frame.Frame
		wantKind ErrorKind
	}{
		{name: "nil frame", frame: nil, wantKind: Timeout},
		{name: "no error flag", frame: mustFrame(t, 1, 0x01, 0x02, 0, 0, 0, 1), wantKind: None},
		{name: "unknown command", frame: mustFrame(t, 1, 0x81, 0x01), wantKind: UnknownCommand},
		{name: "crc mismatch", frame: mustFrame(t, 1, 0x81, 0x02), wantKind: CrcMismatch},
		{name: "invalid parameter", frame: mustFrame(t, 1, 0x83, 0x10), wantKind: InvalidParameterFormat},
		{name: "execution failed", frame: mustFrame(t, 1, 0x83, 0x11), wantKind: ExecutionFailed},
		{name: "unlisted code", frame: mustFrame(t, 1, 0x83, 0x55), wantKind: Other},
		{name: "error flag with empty payload", frame: mustFrame(t, 1, 0x83), wantKind: Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewResponse(tt.frame)
			assert.Equal(t, tt.wantKind, resp.ErrorKind())
			assert.Equal(t, tt.wantKind == None, resp.OK())
		})
	}
}

func TestNewResponse_TimeoutHasNoData(t *testing.T) {
	resp := NewResponse(nil)
	assert.Nil(t, resp.Data())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "Timeout", Timeout.String())
	assert.Equal(t, "InvalidResponseFormat", InvalidResponseFormat.String())
	assert.Equal(t, "ErrorKind(0x42)", ErrorKind(0x42).String())
}

func TestCode(t *testing.T) {
	assert.Equal(t, "GetVersion", GetVersionCode.String())
	assert.Equal(t, byte(0x7F), InvalidCode.WireByte())
	assert.Equal(t, byte(0x45), GetSerialCode.WireByte())
}

func TestNewFrame(t *testing.T) {
	f, err := NewFrame(0x0102, SetOutput{Channel: 1, On: true})
	require.NoError(t, err)

	data, err := frame.Encode(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x02, 0x01, 0x01}, data[:6])
}

func TestMatches(t *testing.T) {
	cmd := GetCounter{Channel: 1}

	assert.True(t, Matches(mustFrame(t, 7, 0x01, 1, 0, 0, 0, 0), 7, cmd))
	assert.True(t, Matches(mustFrame(t, 7, 0x81, 0x10), 7, cmd), "error flag is ignored")
	assert.False(t, Matches(mustFrame(t, 8, 0x01), 7, cmd), "other address")
	assert.False(t, Matches(mustFrame(t, 7, 0x02), 7, cmd), "other command")
}

func TestRaw(t *testing.T) {
	payload := []byte{1, 2, 3}
	raw := NewRaw(Code(0x33), payload)
	payload[0] = 9

	assert.Equal(t, Code(0x33), raw.Code())
	assert.Equal(t, []byte{1, 2, 3}, raw.Payload())

	resp := raw.ParseResponse(mustFrame(t, 1, 0x33, 0xAA))
	assert.True(t, resp.OK())
	assert.Equal(t, []byte{0xAA}, resp.Data())

	assert.Equal(t, Timeout, raw.ParseResponse(nil).ErrorKind())
}
