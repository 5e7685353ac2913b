package command

import (
	"fmt"

	"github.com/arloliu/go-modcontrol/frame"
)

// Code identifies a command on the wire. Values are stable protocol constants.
type Code byte

const (
	SetCounterCode     Code = 0x00
	GetCounterCode     Code = 0x01
	GetAllCountersCode Code = 0x02
	SetOutputCode      Code = 0x03
	GetAllOutputsCode  Code = 0x04
	GetVersionCode     Code = 0x30
	GetSerialCode      Code = 0x45
	GetSetCreditsCode  Code = 0x50
	GetCardIDCode      Code = 0x51
	InvalidCode        Code = 0xFF
)

// String returns the command name.
func (c Code) String() string {
	switch c {
	case SetCounterCode:
		return "SetCounter"
	case GetCounterCode:
		return "GetCounter"
	case GetAllCountersCode:
		return "GetAllCounters"
	case SetOutputCode:
		return "SetOutput"
	case GetAllOutputsCode:
		return "GetAllOutputs"
	case GetVersionCode:
		return "GetVersion"
	case GetSerialCode:
		return "GetSerial"
	case GetSetCreditsCode:
		return "GetSetCredits"
	case GetCardIDCode:
		return "GetCardId"
	case InvalidCode:
		return "Invalid"
	default:
		return fmt.Sprintf("Code(0x%02X)", byte(c))
	}
}

// WireByte returns the command byte sent in a request frame. The error flag
// (bit 7) is always cleared.
func (c Code) WireByte() byte {
	return byte(c) & frame.CodeMask
}

// Command is an immutable request value: a command code and its encoded payload.
type Command interface {
	Code() Code
	Payload() []byte
}

// Request is a Command that also knows how to decode its response.
//
// ParseResponse accepts a nil frame, meaning that no response was received.
type Request[R any] interface {
	Command
	ParseResponse(f *frame.Frame) R
}

// NewFrame builds the request frame for cmd addressed to address.
func NewFrame(address uint16, cmd Command) (*frame.Frame, error) {
	return frame.New(address, cmd.Code().WireByte(), cmd.Payload())
}

// Matches reports whether f can be the response to cmd sent to address: same
// address and same 7-bit command code. The error flag is ignored.
func Matches(f *frame.Frame, address uint16, cmd Command) bool {
	return f.Address == address && f.Code() == cmd.Code().WireByte()
}

// Raw is a command with an arbitrary code and payload. Its response is the
// generic Response.
type Raw struct {
	code    Code
	payload []byte
}

var _ Request[*Response] = (*Raw)(nil)

// NewRaw creates a Raw command. The payload is copied.
func NewRaw(code Code, payload []byte) *Raw {
	p := make([]byte, len(payload))
	copy(p, payload)

	return &Raw{code: code, payload: p}
}

// Code returns the command code.
func (r *Raw) Code() Code { return r.code }

// Payload returns a copy of the payload.
func (r *Raw) Payload() []byte {
	p := make([]byte, len(r.payload))
	copy(p, r.payload)

	return p
}

// ParseResponse decodes only the error status of f.
func (r *Raw) ParseResponse(f *frame.Frame) *Response {
	resp := NewResponse(f)
	return &resp
}
