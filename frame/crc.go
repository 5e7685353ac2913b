package frame

import "github.com/sigurn/crc16"

// The protocol checksum is CRC-16 with the reflected polynomial 0xA001
// (0x8005 normal form), initial value 0xFFFF, LSB-first and no final XOR.
// These are the CRC-16/MODBUS parameters.
var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// CRC16 computes the protocol checksum over data.
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
