package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxPayloadSize is the maximum number of payload bytes a frame can carry.
const MaxPayloadSize = 122

// Overhead is the number of wire bytes surrounding the payload:
// address(2) + command byte(1) + length(1) + CRC(2).
const Overhead = 2 + 1 + 1 + 2

// ErrorFlag is bit 7 of the command byte. In a response it marks the first
// payload byte as an error code.
const ErrorFlag byte = 0x80

// CodeMask selects the command code bits of the command byte.
const CodeMask byte = 0x7F

const (
	headerSize = 4
	crcSize    = 2
)

var (
	ErrPayloadTooLarge = fmt.Errorf("frame: payload exceeds %d bytes", MaxPayloadSize)
	ErrFrameTooShort   = errors.New("frame: data shorter than frame overhead")
	ErrCRCMismatch     = errors.New("frame: CRC mismatch")
	ErrLengthMismatch  = errors.New("frame: length byte does not match data length")
)

// Frame is one addressed, checksummed protocol message.
//
// Frames are values: once constructed they are not modified by this package.
// The length byte and the CRC only exist on the wire.
type Frame struct {
	Address     uint16
	CommandByte byte
	Payload     []byte
}

// New creates a frame. The payload is copied.
func New(address uint16, commandByte byte, payload []byte) (*Frame, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: got %d", ErrPayloadTooLarge, len(payload))
	}

	p := make([]byte, len(payload))
	copy(p, payload)

	return &Frame{Address: address, CommandByte: commandByte, Payload: p}, nil
}

// HasErrorFlag reports whether bit 7 of the command byte is set.
func (f *Frame) HasErrorFlag() bool {
	return f.CommandByte&ErrorFlag != 0
}

// Code returns the 7-bit command code.
func (f *Frame) Code() byte {
	return f.CommandByte & CodeMask
}

// String returns a compact hex representation for logging.
func (f *Frame) String() string {
	return fmt.Sprintf("addr=0x%04X cmd=0x%02X len=%d data=% X", f.Address, f.CommandByte, len(f.Payload), f.Payload)
}

// MarshalBinary encodes the frame to its wire format:
//
//	[Address_Hi][Address_Lo][CommandByte][Length][Payload(0-122)][CRC_Hi][CRC_Lo]
func (f *Frame) MarshalBinary() ([]byte, error) {
	return Encode(f)
}

// Encode serializes f. The CRC covers every preceding byte.
func Encode(f *Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: got %d", ErrPayloadTooLarge, len(f.Payload))
	}

	buf := make([]byte, headerSize, Overhead+len(f.Payload))
	binary.BigEndian.PutUint16(buf[0:2], f.Address)
	buf[2] = f.CommandByte
	buf[3] = byte(len(f.Payload))
	buf = append(buf, f.Payload...)

	return binary.BigEndian.AppendUint16(buf, CRC16(buf)), nil
}

// Decode parses one complete frame from data.
//
// data must hold exactly one frame. Decode validates, in order, the minimum
// size, the trailing CRC and the length byte.
func Decode(data []byte) (*Frame, error) {
	if len(data) < Overhead {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d", ErrFrameTooShort, len(data), Overhead)
	}

	body := data[:len(data)-crcSize]
	wireCRC := binary.BigEndian.Uint16(data[len(data)-crcSize:])
	if calc := CRC16(body); wireCRC != calc {
		return nil, fmt.Errorf("%w: wire=0x%04X, computed=0x%04X", ErrCRCMismatch, wireCRC, calc)
	}

	length := int(data[3])
	if length != len(data)-Overhead {
		return nil, fmt.Errorf("%w: length byte %d, payload bytes %d", ErrLengthMismatch, length, len(data)-Overhead)
	}

	return New(binary.BigEndian.Uint16(data[0:2]), data[2], data[headerSize:headerSize+length])
}
