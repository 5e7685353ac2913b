package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloads(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		code Code
		want []byte
	}{
		{"SetCounter", SetCounter{Channel: 2, Value: 0x01020304}, SetCounterCode, []byte{2, 1, 2, 3, 4}},
		{"GetCounter", GetCounter{Channel: 5}, GetCounterCode, []byte{5}},
		{"GetAllCounters", GetAllCounters{}, GetAllCountersCode, []byte{}},
		{"SetOutput on", SetOutput{Channel: 1, On: true}, SetOutputCode, []byte{1, 1}},
		{"SetOutput off", SetOutput{Channel: 3}, SetOutputCode, []byte{3, 0}},
		{"SetOutput limit", SetOutput{Channel: 1, On: true, Limit: LimitTo10Ampere}, SetOutputCode, []byte{1, 1, 10}},
		{"SetOutput disabled limit", SetOutput{Channel: 0, Limit: LimitDisabled}, SetOutputCode, []byte{0, 0, 255}},
		{"GetAllOutputs", GetAllOutputs{}, GetAllOutputsCode, []byte{}},
		{"GetVersion", GetVersion{}, GetVersionCode, []byte{}},
		{"GetSerial", GetSerial{}, GetSerialCode, []byte{}},
		{"GetSetCredits", GetSetCredits{Channel: 1, Action: CreditAdd, Value: 0x0102}, GetSetCreditsCode, []byte{1, 2, 1, 2}},
		{"GetCardID", GetCardID{Channel: 4}, GetCardIDCode, []byte{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.cmd.Code())
			assert.Equal(t, tt.want, tt.cmd.Payload())
		})
	}
}

func TestCounterResponse(t *testing.T) {
	resp := GetCounter{}.ParseResponse(mustFrame(t, 1, 0x01, 2, 0, 0, 0x01, 0x00))
	require.True(t, resp.OK())
	assert.Equal(t, byte(2), resp.Channel)
	assert.Equal(t, uint32(256), resp.Value)

	resp = GetCounter{}.ParseResponse(mustFrame(t, 1, 0x01, 2, 0, 0))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())
	assert.Zero(t, resp.Channel)
	assert.Zero(t, resp.Value)

	resp = SetCounter{}.ParseResponse(mustFrame(t, 1, 0x80, 0x11))
	assert.Equal(t, ExecutionFailed, resp.ErrorKind())
	assert.Zero(t, resp.Value)

	assert.Equal(t, Timeout, GetCounter{}.ParseResponse(nil).ErrorKind())
}

func TestAllCountersResponse(t *testing.T) {
	resp := GetAllCounters{}.ParseResponse(mustFrame(t, 1, 0x02, 0, 0, 0, 1, 0, 0, 0, 2))
	require.True(t, resp.OK())
	assert.Equal(t, []uint32{1, 2}, resp.Values)

	resp = GetAllCounters{}.ParseResponse(mustFrame(t, 1, 0x02))
	require.True(t, resp.OK())
	assert.Empty(t, resp.Values)

	resp = GetAllCounters{}.ParseResponse(mustFrame(t, 1, 0x02, 0, 0, 1))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())
	assert.Nil(t, resp.Values)
}

func TestSetOutputResponse(t *testing.T) {
	resp := SetOutput{}.ParseResponse(mustFrame(t, 1, 0x03, 1, 1))
	require.True(t, resp.OK())
	assert.Equal(t, byte(1), resp.Channel)
	assert.True(t, resp.On)
	assert.Equal(t, DoNotChange, resp.Limit)

	resp = SetOutput{}.ParseResponse(mustFrame(t, 1, 0x03, 2, 0, 16))
	require.True(t, resp.OK())
	assert.False(t, resp.On)
	assert.Equal(t, LimitTo16Ampere, resp.Limit)

	resp = SetOutput{}.ParseResponse(mustFrame(t, 1, 0x03, 1))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())
	assert.Zero(t, resp.Channel)
}

func TestOutputsResponse_Bitmask(t *testing.T) {
	resp := GetAllOutputs{}.ParseResponse(mustFrame(t, 1, 0x04, 0b1000_0101))
	require.True(t, resp.OK())
	assert.Equal(t, []OutputState{
		OutputOn, OutputOff, OutputOn, OutputOff,
		OutputOff, OutputOff, OutputOff, OutputOn,
	}, resp.States())
	assert.Empty(t, resp.InvalidChannels())
}

func TestOutputsResponse_PerChannel(t *testing.T) {
	resp := GetAllOutputs{}.ParseResponse(mustFrame(t, 1, 0x04, 0, 1, 2, 7))
	require.True(t, resp.OK(), "an invalid channel does not fail the response")
	require.Len(t, resp.Channels, 4)

	assert.Equal(t, OutputOff, resp.Channels[0].State)
	assert.Equal(t, OutputOn, resp.Channels[1].State)
	assert.Equal(t, OutputOverload, resp.Channels[2].State)
	assert.ErrorIs(t, resp.Channels[3].Err, ErrInvalidOutputState)
	assert.Equal(t, OutputState(7), resp.Channels[3].State)
	assert.Equal(t, []int{3}, resp.InvalidChannels())
}

func TestOutputsResponse_Empty(t *testing.T) {
	resp := GetAllOutputs{}.ParseResponse(mustFrame(t, 1, 0x04))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())
	assert.Nil(t, resp.Channels)
}

func TestVersionResponse(t *testing.T) {
	resp := GetVersion{}.ParseResponse(mustFrame(t, 1, 0x30, 100))
	require.True(t, resp.OK())
	assert.Equal(t, byte(100), resp.Version)

	resp = GetVersion{}.ParseResponse(mustFrame(t, 1, 0x30))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())

	resp = GetVersion{}.ParseResponse(mustFrame(t, 1, 0xB0, 0x01))
	assert.Equal(t, UnknownCommand, resp.ErrorKind())
	assert.Zero(t, resp.Version)
}

func TestSerialResponse(t *testing.T) {
	resp := GetSerial{}.ParseResponse(mustFrame(t, 1, 0x45, []byte("MC-2024-000042")...))
	require.True(t, resp.OK())
	assert.Equal(t, "MC-2024-000042", resp.Serial)

	resp = GetSerial{}.ParseResponse(mustFrame(t, 1, 0x45, []byte("SN123\x00\x00\x00\x00\x00\x00\x00\x00\x00")...))
	require.True(t, resp.OK())
	assert.Equal(t, "SN123", resp.Serial)

	resp = GetSerial{}.ParseResponse(mustFrame(t, 1, 0x45, []byte("short")...))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())
	assert.Empty(t, resp.Serial)
}

func TestCreditsResponse(t *testing.T) {
	resp := GetSetCredits{}.ParseResponse(mustFrame(t, 1, 0x50, 3, 2, 0x01, 0xF4))
	require.True(t, resp.OK())
	assert.Equal(t, byte(3), resp.Channel)
	assert.Equal(t, CreditAdd, resp.Action)
	assert.Equal(t, uint16(500), resp.Value)

	resp = GetSetCredits{}.ParseResponse(mustFrame(t, 1, 0x50, 3, 2, 0x01))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())
	assert.Zero(t, resp.Value)

	assert.Equal(t, "Subtract", CreditSubtract.String())
}

func TestCardIDResponse(t *testing.T) {
	resp := GetCardID{}.ParseResponse(mustFrame(t, 1, 0x51, 1, 0, 0, 0, 0, 0xDE, 0xAD, 0xBE, 0xEF))
	require.True(t, resp.OK())
	assert.Equal(t, byte(1), resp.Channel)
	assert.Equal(t, uint64(0xDEADBEEF), resp.CardID)

	resp = GetCardID{}.ParseResponse(mustFrame(t, 1, 0x51, 1, 0))
	assert.Equal(t, InvalidResponseFormat, resp.ErrorKind())
	assert.Zero(t, resp.CardID)
}

func TestOutputsResponse_InvalidSecondEntry(t *testing.T) {
	resp := GetAllOutputs{}.ParseResponse(mustFrame(t, 1, 0x04, 0x00, 0xFF))
	require.Equal(t, None, resp.ErrorKind())
	require.Len(t, resp.Channels, 2)

	assert.Equal(t, OutputOff, resp.Channels[0].State)
	assert.NoError(t, resp.Channels[0].Err)
	assert.ErrorIs(t, resp.Channels[1].Err, ErrInvalidOutputState)
}
