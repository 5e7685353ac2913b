package command

import (
	"encoding/binary"

	"github.com/arloliu/go-modcontrol/frame"
)

const cardIDResponseSize = 9

// GetCardID requests the ID of the card present at a reader channel.
type GetCardID struct {
	Channel byte
}

var _ Request[*CardIDResponse] = GetCardID{}

// Code returns GetCardIDCode.
func (GetCardID) Code() Code { return GetCardIDCode }

// Payload encodes the request parameters.
func (c GetCardID) Payload() []byte { return []byte{c.Channel} }

// ParseResponse decodes f into the response of GetCardID.
func (GetCardID) ParseResponse(f *frame.Frame) *CardIDResponse {
	return ParseCardIDResponse(f)
}

// CardIDResponse is the response to GetCardID. CardID is zero when no card
// is present.
type CardIDResponse struct {
	Response
	Channel byte
	CardID  uint64
}

// ParseCardIDResponse decodes [channel][id:8].
func ParseCardIDResponse(f *frame.Frame) *CardIDResponse {
	resp := &CardIDResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	if len(resp.data) != cardIDResponseSize {
		resp.invalidFormat()
		return resp
	}

	resp.Channel = resp.data[0]
	resp.CardID = binary.BigEndian.Uint64(resp.data[1:9])

	return resp
}
