package modcontrol

import "github.com/arloliu/go-modcontrol/command"

// Device exposes the device commands as methods of a connected Client.
//
// Every method returns the decoded response; check its ErrorKind before
// reading the fields. The error is only non-nil for transport failures and
// misuse, as with Client.Execute.
type Device struct {
	client *Client
}

// NewDevice returns a Device using c.
func NewDevice(c *Client) *Device {
	return &Device{client: c}
}

// Client returns the underlying client.
func (d *Device) Client() *Client { return d.client }

// GetVersion reads the firmware version.
func (d *Device) GetVersion() (*command.VersionResponse, error) {
	return Send(d.client, command.GetVersion{})
}

// GetSerial reads the serial number.
func (d *Device) GetSerial() (*command.SerialResponse, error) {
	return Send(d.client, command.GetSerial{})
}

// GetCounter reads the counter of channel.
func (d *Device) GetCounter(channel byte) (*command.CounterResponse, error) {
	return Send(d.client, command.GetCounter{Channel: channel})
}

// SetCounter writes value to the counter of channel.
func (d *Device) SetCounter(channel byte, value uint32) (*command.CounterResponse, error) {
	return Send(d.client, command.SetCounter{Channel: channel, Value: value})
}

// GetAllCounters reads every counter.
func (d *Device) GetAllCounters() (*command.AllCountersResponse, error) {
	return Send(d.client, command.GetAllCounters{})
}

// GetAllOutputs reads the state of every output.
func (d *Device) GetAllOutputs() (*command.OutputsResponse, error) {
	return Send(d.client, command.GetAllOutputs{})
}

// SetOutput switches an output. Pass command.DoNotChange to keep the current load limit.
func (d *Device) SetOutput(channel byte, on bool, limit command.LoadLimit) (*command.SetOutputResponse, error) {
	return Send(d.client, command.SetOutput{Channel: channel, On: on, Limit: limit})
}

// GetCardID reads the ID of the card at reader channel. The ID is zero when no card is present.
func (d *Device) GetCardID(channel byte) (*command.CardIDResponse, error) {
	return Send(d.client, command.GetCardID{Channel: channel})
}

// GetCredits reads the credits of channel.
func (d *Device) GetCredits(channel byte) (*command.CreditsResponse, error) {
	return d.credits(channel, command.CreditGet, 0)
}

// SetCredits sets the credits of channel to value.
func (d *Device) SetCredits(channel byte, value uint16) (*command.CreditsResponse, error) {
	return d.credits(channel, command.CreditSet, value)
}

// AddCredits adds value to the credits of channel.
func (d *Device) AddCredits(channel byte, value uint16) (*command.CreditsResponse, error) {
	return d.credits(channel, command.CreditAdd, value)
}

// SubtractCredits subtracts value from the credits of channel.
func (d *Device) SubtractCredits(channel byte, value uint16) (*command.CreditsResponse, error) {
	return d.credits(channel, command.CreditSubtract, value)
}

func (d *Device) credits(channel byte, action command.CreditAction, value uint16) (*command.CreditsResponse, error) {
	return Send(d.client, command.GetSetCredits{Channel: channel, Action: action, Value: value})
}
