package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-modcontrol/command"
	"github.com/arloliu/go-modcontrol/frame"
	"github.com/arloliu/go-modcontrol/logger"
)

func TestParseAddress(t *testing.T) {
	require := require.New(t)

	v, err := parseAddress("0x0001")
	require.NoError(err)
	require.Equal(uint16(1), v)

	v, err = parseAddress("513")
	require.NoError(err)
	require.Equal(uint16(0x0201), v)

	_, err = parseAddress("0x10000")
	require.Error(err)

	_, err = parseAddress("abc")
	require.Error(err)
}

func TestParseChannel(t *testing.T) {
	require := require.New(t)

	ch, err := parseChannel("7")
	require.NoError(err)
	require.Equal(byte(7), ch)

	_, err = parseChannel("256")
	require.Error(err)
}

func TestParseSwitch(t *testing.T) {
	require := require.New(t)

	on, err := parseSwitch("ON")
	require.NoError(err)
	require.True(on)

	on, err = parseSwitch("off")
	require.NoError(err)
	require.False(on)

	_, err = parseSwitch("maybe")
	require.Error(err)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    command.LoadLimit
		wantErr bool
	}{
		{in: "", want: command.DoNotChange},
		{in: "disabled", want: command.LimitDisabled},
		{in: "4", want: command.LimitTo4Ampere},
		{in: "16A", want: command.LimitTo16Ampere},
		{in: "3", wantErr: true},
		{in: "17", wantErr: true},
		{in: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLimit(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResponseError(t *testing.T) {
	require := require.New(t)

	timeout := command.NewResponse(nil)
	require.ErrorContains(responseError(&timeout), "no response")

	f, err := frame.New(1, 0x30|frame.ErrorFlag, []byte{byte(command.ExecutionFailed)})
	require.NoError(err)
	failed := command.NewResponse(f)
	require.ErrorContains(responseError(&failed), "ExecutionFailed")

	f, err = frame.New(1, 0x30, []byte{0x02})
	require.NoError(err)
	ok := command.NewResponse(f)
	require.NoError(responseError(&ok))
}

func TestOpenTransportModes(t *testing.T) {
	require := require.New(t)
	l := logger.Nop()

	reset := func() { tcpAddr, portName, wsURL, mqttBroker = "", "", "", "" }
	t.Cleanup(reset)

	reset()
	_, _, err := openTransport(l)
	require.ErrorContains(err, "no connection given")

	tcpAddr, portName = "127.0.0.1:5000", "/dev/ttyUSB0"
	_, _, err = openTransport(l)
	require.ErrorContains(err, "only one of")

	reset()
	tcpAddr = "127.0.0.1"
	_, _, err = openTransport(l)
	require.Error(err)

	tcpAddr = "127.0.0.1:5000"
	tr, desc, err := openTransport(l)
	require.NoError(err)
	require.NotNil(tr)
	require.Equal("TCP 127.0.0.1:5000", desc)
	require.False(tr.IsConnected())
}
