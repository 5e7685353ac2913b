package command

import (
	"strings"

	"github.com/arloliu/go-modcontrol/frame"
)

const serialNumberSize = 14

// VersionResponse is the response to GetVersion.
type VersionResponse struct {
	Response
	Version byte
}

// ParseVersionResponse decodes [version].
func ParseVersionResponse(f *frame.Frame) *VersionResponse {
	resp := &VersionResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	if len(resp.data) != 1 {
		resp.invalidFormat()
		return resp
	}
	resp.Version = resp.data[0]

	return resp
}

// GetVersion requests the firmware version. It is also used to check that a device answers.
type GetVersion struct{}

var _ Request[*VersionResponse] = GetVersion{}

// Code returns GetVersionCode.
func (GetVersion) Code() Code { return GetVersionCode }

// Payload is empty.
func (GetVersion) Payload() []byte { return []byte{} }

// ParseResponse decodes f into the response of GetVersion.
func (GetVersion) ParseResponse(f *frame.Frame) *VersionResponse {
	return ParseVersionResponse(f)
}

// SerialResponse is the response to GetSerial.
type SerialResponse struct {
	Response
	Serial string
}

// ParseSerialResponse decodes a 14 byte ASCII serial number. Trailing NUL and
// space padding is removed.
func ParseSerialResponse(f *frame.Frame) *SerialResponse {
	resp := &SerialResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	if len(resp.data) != serialNumberSize {
		resp.invalidFormat()
		return resp
	}
	resp.Serial = strings.TrimRight(string(resp.data), "\x00 ")

	return resp
}

// GetSerial requests the device serial number.
type GetSerial struct{}

var _ Request[*SerialResponse] = GetSerial{}

// Code returns GetSerialCode.
func (GetSerial) Code() Code { return GetSerialCode }

// Payload is empty.
func (GetSerial) Payload() []byte { return []byte{} }

// ParseResponse decodes f into the response of GetSerial.
func (GetSerial) ParseResponse(f *frame.Frame) *SerialResponse {
	return ParseSerialResponse(f)
}
