package frame

import (
	"errors"
	"fmt"
)

// ErrReservedAddress is returned by a reserved-address policy for an address it rejects.
var ErrReservedAddress = errors.New("frame: address is reserved")

// DefaultReservedAddresses lists the addresses reserved by early firmware revisions.
var DefaultReservedAddresses = []uint16{0x2B00, 0x002B, 0x2F00}

// AddressPolicy decides whether a device address may be used as a request target.
type AddressPolicy func(address uint16) error

// AllowAllAddresses accepts every address. Later firmware revisions lifted the
// reserved address restriction.
func AllowAllAddresses(uint16) error { return nil }

// ReservedAddressPolicy rejects the given addresses, or DefaultReservedAddresses
// when none are given.
func ReservedAddressPolicy(reserved ...uint16) AddressPolicy {
	if len(reserved) == 0 {
		reserved = DefaultReservedAddresses
	}

	set := make(map[uint16]struct{}, len(reserved))
	for _, addr := range reserved {
		set[addr] = struct{}{}
	}

	return func(address uint16) error {
		if _, ok := set[address]; ok {
			return fmt.Errorf("%w: 0x%04X", ErrReservedAddress, address)
		}

		return nil
	}
}
