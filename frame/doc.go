// Package frame implements the Mod-Control wire frame codec.
//
// A frame on the wire is:
//
//	[address:2][command_byte:1][length:1][payload:0..122][crc16:2]
//
// All multi-byte integers are big-endian. The CRC-16 (polynomial 0xA001 reflected,
// initial value 0xFFFF) is computed over every byte preceding it. Bit 7 of the
// command byte is the error flag: requests always clear it, and a response with the
// flag set carries an error code in its first payload byte.
//
// The package knows nothing about individual commands; see package command for the
// command and response abstraction built on top of it.
package frame
