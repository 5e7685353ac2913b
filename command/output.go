package command

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-modcontrol/frame"
)

// ErrInvalidOutputState marks a channel whose state byte is not Off, On or Overload.
var ErrInvalidOutputState = errors.New("command: invalid output state")

// LoadLimit is the current limit of an output channel. If it is exceeded for a
// prolonged duration the channel switches itself off.
type LoadLimit byte

const (
	DoNotChange     LoadLimit = 0
	LimitTo4Ampere  LoadLimit = 4
	LimitTo5Ampere  LoadLimit = 5
	LimitTo6Ampere  LoadLimit = 6
	LimitTo7Ampere  LoadLimit = 7
	LimitTo8Ampere  LoadLimit = 8
	LimitTo9Ampere  LoadLimit = 9
	LimitTo10Ampere LoadLimit = 10
	LimitTo11Ampere LoadLimit = 11
	LimitTo12Ampere LoadLimit = 12
	LimitTo13Ampere LoadLimit = 13
	LimitTo14Ampere LoadLimit = 14
	LimitTo15Ampere LoadLimit = 15
	LimitTo16Ampere LoadLimit = 16
	LimitDisabled   LoadLimit = 255
)

// SetOutput switches one output channel and optionally changes its load limit.
type SetOutput struct {
	Channel byte
	On      bool
	Limit   LoadLimit
}

var _ Request[*SetOutputResponse] = SetOutput{}

// Code returns SetOutputCode.
func (SetOutput) Code() Code { return SetOutputCode }

// Payload encodes [channel][state] and appends the limit unless it is DoNotChange.
func (c SetOutput) Payload() []byte {
	data := []byte{c.Channel, 0}
	if c.On {
		data[1] = 1
	}

	if c.Limit != DoNotChange {
		data = append(data, byte(c.Limit))
	}

	return data
}

// ParseResponse decodes f into the response of SetOutput.
func (SetOutput) ParseResponse(f *frame.Frame) *SetOutputResponse {
	return ParseSetOutputResponse(f)
}

// SetOutputResponse is the response to SetOutput.
type SetOutputResponse struct {
	Response
	Channel byte
	On      bool
	// Limit is DoNotChange when the device did not report a limit.
	Limit LoadLimit
}

// ParseSetOutputResponse decodes [channel][state][limit?].
func ParseSetOutputResponse(f *frame.Frame) *SetOutputResponse {
	resp := &SetOutputResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	if len(resp.data) < 2 {
		resp.invalidFormat()
		return resp
	}

	resp.Channel = resp.data[0]
	resp.On = resp.data[1] != 0
	if len(resp.data) >= 3 {
		resp.Limit = LoadLimit(resp.data[2])
	}

	return resp
}

// OutputState is the state of one output channel.
type OutputState byte

const (
	OutputOff      OutputState = 0x00
	OutputOn       OutputState = 0x01
	OutputOverload OutputState = 0x02
)

// String returns the name of the output state.
func (s OutputState) String() string {
	switch s {
	case OutputOff:
		return "Off"
	case OutputOn:
		return "On"
	case OutputOverload:
		return "Overload"
	default:
		return fmt.Sprintf("OutputState(0x%02X)", byte(s))
	}
}

// OutputChannel is one decoded entry of an outputs response. Err is non-nil
// when the state byte of this channel could not be decoded; State then holds
// the raw byte.
type OutputChannel struct {
	State OutputState
	Err   error
}

// OutputsResponse is the response to GetAllOutputs.
type OutputsResponse struct {
	Response
	Channels []OutputChannel
}

// bitmaskChannels is the channel count of the single-byte output format.
const bitmaskChannels = 8

// ParseOutputsResponse decodes either wire format:
//
//   - one byte: bitmask of 8 channels, bit i set means channel i is On;
//   - two or more bytes: one state byte per channel (0 Off, 1 On, 2 Overload).
//
// An unknown state byte only fails its own channel.
func ParseOutputsResponse(f *frame.Frame) *OutputsResponse {
	resp := &OutputsResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	switch n := len(resp.data); {
	case n == 0:
		resp.invalidFormat()

	case n == 1:
		mask := resp.data[0]
		resp.Channels = make([]OutputChannel, bitmaskChannels)
		for i := range bitmaskChannels {
			if mask&(1<<i) != 0 {
				resp.Channels[i].State = OutputOn
			}
		}

	default:
		resp.Channels = make([]OutputChannel, n)
		for i, b := range resp.data {
			resp.Channels[i].State = OutputState(b)
			if b > byte(OutputOverload) {
				resp.Channels[i].Err = fmt.Errorf("%w: channel %d, value 0x%02X", ErrInvalidOutputState, i, b)
			}
		}
	}

	return resp
}

// States returns the state of every channel.
func (r *OutputsResponse) States() []OutputState {
	states := make([]OutputState, len(r.Channels))
	for i, ch := range r.Channels {
		states[i] = ch.State
	}

	return states
}

// InvalidChannels returns the indexes of channels that failed to decode.
func (r *OutputsResponse) InvalidChannels() []int {
	var idx []int
	for i, ch := range r.Channels {
		if ch.Err != nil {
			idx = append(idx, i)
		}
	}

	return idx
}

// GetAllOutputs requests the state of every output channel.
type GetAllOutputs struct{}

var _ Request[*OutputsResponse] = GetAllOutputs{}

// Code returns GetAllOutputsCode.
func (GetAllOutputs) Code() Code { return GetAllOutputsCode }

// Payload is empty.
func (GetAllOutputs) Payload() []byte { return []byte{} }

// ParseResponse decodes f into the response of GetAllOutputs.
func (GetAllOutputs) ParseResponse(f *frame.Frame) *OutputsResponse {
	return ParseOutputsResponse(f)
}
