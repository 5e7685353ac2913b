package command

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/go-modcontrol/frame"
)

// CreditAction selects what GetSetCredits does with the value.
type CreditAction byte

const (
	CreditGet      CreditAction = 0
	CreditSet      CreditAction = 1
	CreditAdd      CreditAction = 2
	CreditSubtract CreditAction = 3
)

// String returns the name of the credit action.
func (a CreditAction) String() string {
	switch a {
	case CreditGet:
		return "Get"
	case CreditSet:
		return "Set"
	case CreditAdd:
		return "Add"
	case CreditSubtract:
		return "Subtract"
	default:
		return fmt.Sprintf("CreditAction(%d)", byte(a))
	}
}

const creditsResponseSize = 4

// GetSetCredits reads or modifies the credit counter of one channel.
// Value is ignored by the device for CreditGet.
type GetSetCredits struct {
	Channel byte
	Action  CreditAction
	Value   uint16
}

var _ Request[*CreditsResponse] = GetSetCredits{}

// Code returns GetSetCreditsCode.
func (GetSetCredits) Code() Code { return GetSetCreditsCode }

// Payload encodes the request parameters.
func (c GetSetCredits) Payload() []byte {
	return binary.BigEndian.AppendUint16([]byte{c.Channel, byte(c.Action)}, c.Value)
}

// ParseResponse decodes f into the response of GetSetCredits.
func (GetSetCredits) ParseResponse(f *frame.Frame) *CreditsResponse {
	return ParseCreditsResponse(f)
}

// CreditsResponse is the response to GetSetCredits. Value is the credit
// balance after the action.
type CreditsResponse struct {
	Response
	Channel byte
	Action  CreditAction
	Value   uint16
}

// ParseCreditsResponse decodes [channel][action][value:2].
func ParseCreditsResponse(f *frame.Frame) *CreditsResponse {
	resp := &CreditsResponse{Response: NewResponse(f)}
	if !resp.OK() {
		return resp
	}

	if len(resp.data) != creditsResponseSize {
		resp.invalidFormat()
		return resp
	}

	resp.Channel = resp.data[0]
	resp.Action = CreditAction(resp.data[1])
	resp.Value = binary.BigEndian.Uint16(resp.data[2:4])

	return resp
}
