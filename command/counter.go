package command

import (
	"encoding/binary"

	"github.com/arloliu/go-modcontrol/frame"
)

const counterResponseSize = 5

// CounterResponse is the response to GetCounter and SetCounter.
type CounterResponse struct {
	Response
	Channel byte
	Value   uint32
}

// ParseCounterResponse decodes [channel][value:4].
func ParseCounterResponse(f *frame.Frame) *CounterResponse {
	resp := &CounterResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	if len(resp.data) != counterResponseSize {
		resp.invalidFormat()
		return resp
	}

	resp.Channel = resp.data[0]
	resp.Value = binary.BigEndian.Uint32(resp.data[1:5])

	return resp
}

// GetCounter requests the counter value of one channel.
type GetCounter struct {
	Channel byte
}

var _ Request[*CounterResponse] = GetCounter{}

// Code returns GetCounterCode.
func (GetCounter) Code() Code { return GetCounterCode }

// Payload encodes the request parameters.
func (c GetCounter) Payload() []byte { return []byte{c.Channel} }

// ParseResponse decodes f into the response of GetCounter.
func (GetCounter) ParseResponse(f *frame.Frame) *CounterResponse {
	return ParseCounterResponse(f)
}

// SetCounter sets the counter value of one channel. The device answers with
// the new value.
type SetCounter struct {
	Channel byte
	Value   uint32
}

var _ Request[*CounterResponse] = SetCounter{}

// Code returns SetCounterCode.
func (SetCounter) Code() Code { return SetCounterCode }

// Payload encodes the request parameters.
func (c SetCounter) Payload() []byte {
	return binary.BigEndian.AppendUint32([]byte{c.Channel}, c.Value)
}

// ParseResponse decodes f into the response of SetCounter.
func (SetCounter) ParseResponse(f *frame.Frame) *CounterResponse {
	return ParseCounterResponse(f)
}

// AllCountersResponse is the response to GetAllCounters.
type AllCountersResponse struct {
	Response
	Values []uint32
}

// ParseAllCountersResponse decodes a sequence of 4-byte counter values.
func ParseAllCountersResponse(f *frame.Frame) *AllCountersResponse {
	resp := &AllCountersResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	if len(resp.data)%4 != 0 {
		resp.invalidFormat()
		return resp
	}

	resp.Values = make([]uint32, 0, len(resp.data)/4)
	for i := 0; i < len(resp.data); i += 4 {
		resp.Values = append(resp.Values, binary.BigEndian.Uint32(resp.data[i:i+4]))
	}

	return resp
}

// GetAllCounters requests the counter values of every channel.
type GetAllCounters struct{}

var _ Request[*AllCountersResponse] = GetAllCounters{}

// Code returns GetAllCountersCode.
func (GetAllCounters) Code() Code { return GetAllCountersCode }

// Payload is empty.
func (GetAllCounters) Payload() []byte { return []byte{} }

// ParseResponse decodes f into the response of GetAllCounters.
func (GetAllCounters) ParseResponse(f *frame.Frame) *AllCountersResponse {
	return ParseAllCountersResponse(f)
}
