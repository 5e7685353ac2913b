package command

import (
	"fmt"

	"github.com/arloliu/go-modcontrol/frame"
)

// ErrorKind is the error status carried by a response.
//
// The values of the device-reported kinds are their wire codes.
type ErrorKind byte

const (
	None                   ErrorKind = 0x00
	UnknownCommand         ErrorKind = 0x01
	CrcMismatch            ErrorKind = 0x02
	InvalidParameterFormat ErrorKind = 0x10
	ExecutionFailed        ErrorKind = 0x11
	Timeout                ErrorKind = 0x20
	InvalidResponseFormat  ErrorKind = 0x21
	Other                  ErrorKind = 0xFF
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case None:
		return "None"
	case UnknownCommand:
		return "UnknownCommand"
	case CrcMismatch:
		return "CrcMismatch"
	case InvalidParameterFormat:
		return "InvalidParameterFormat"
	case ExecutionFailed:
		return "ExecutionFailed"
	case Timeout:
		return "Timeout"
	case InvalidResponseFormat:
		return "InvalidResponseFormat"
	case Other:
		return "Other"
	default:
		return fmt.Sprintf("ErrorKind(0x%02X)", byte(k))
	}
}

// errorKindFromWire maps a device error code to an ErrorKind. Codes that are
// not part of the protocol map to Other.
func errorKindFromWire(b byte) ErrorKind {
	switch k := ErrorKind(b); k {
	case None, UnknownCommand, CrcMismatch, InvalidParameterFormat,
		ExecutionFailed, Timeout, InvalidResponseFormat:
		return k
	default:
		return Other
	}
}

// Response is the part shared by every response variant: the error status
// and the raw command data.
//
// Callers must check ErrorKind before reading variant fields; when it is not
// None, variant fields hold their zero values.
type Response struct {
	kind ErrorKind
	data []byte
}

// NewResponse derives the error status from f.
//
//   - nil frame: Timeout, no data.
//   - error flag set: the first payload byte is the error code; an empty
//     payload or an unknown code yields Other.
//   - error flag clear: None, the whole payload is command data.
func NewResponse(f *frame.Frame) Response {
	if f == nil {
		return Response{kind: Timeout}
	}

	if f.HasErrorFlag() {
		if len(f.Payload) == 0 {
			return Response{kind: Other, data: f.Payload}
		}

		return Response{kind: errorKindFromWire(f.Payload[0]), data: f.Payload}
	}

	return Response{kind: None, data: f.Payload}
}

// ErrorKind returns the error status of the response.
func (r *Response) ErrorKind() ErrorKind { return r.kind }

// OK reports whether the response carries no error.
func (r *Response) OK() bool { return r.kind == None }

// Data returns the raw payload of the response frame, or nil on timeout.
func (r *Response) Data() []byte { return r.data }

// invalidFormat marks the response as malformed.
func (r *Response) invalidFormat() {
	r.kind = InvalidResponseFormat
}
