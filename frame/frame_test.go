package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC16(t *testing.T) {
	assert.Equal(t, uint16(0xE445), CRC16([]byte{0x00, 0x01, 0x30, 0x00}))
	assert.Equal(t, uint16(0x4554), CRC16([]byte{0x00, 0x01, 0x83, 0x01, 0x02}))
	assert.Equal(t, uint16(0xFFFF), CRC16(nil), "empty input returns the initial value")
}

func TestNew_PayloadLimit(t *testing.T) {
	f, err := New(1, 0x30, make([]byte, MaxPayloadSize))
	require.NoError(t, err)
	assert.Len(t, f.Payload, MaxPayloadSize)

	_, err = New(1, 0x30, make([]byte, MaxPayloadSize+1))
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestNew_CopiesPayload(t *testing.T) {
	payload := []byte{1, 2, 3}
	f, err := New(1, 0x01, payload)
	require.NoError(t, err)

	payload[0] = 0xFF
	assert.Equal(t, []byte{1, 2, 3}, f.Payload)
}

func TestFrame_Flags(t *testing.T) {
	f := &Frame{Address: 1, CommandByte: 0x83}
	assert.True(t, f.HasErrorFlag())
	assert.Equal(t, byte(0x03), f.Code())

	f = &Frame{Address: 1, CommandByte: 0x51}
	assert.False(t, f.HasErrorFlag())
	assert.Equal(t, byte(0x51), f.Code())
}

func TestEncode_Layout(t *testing.T) {
	f, err := New(0x0001, 0x30, nil)
	require.NoError(t, err)

	data, err := Encode(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x30, 0x00, 0xE4, 0x45}, data)

	f, err = New(0x0001, 0x03, []byte{0x01, 0x01})
	require.NoError(t, err)

	data, err = f.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x03, 0x02, 0x01, 0x01, 0x0F, 0x5C}, data)
}

func TestEncode_RejectsOversizedPayload(t *testing.T) {
	f := &Frame{Address: 1, CommandByte: 0x00, Payload: make([]byte, 123)}

	_, err := Encode(f)
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 5, 14, 64, MaxPayloadSize}

	for _, size := range sizes {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i * 7)
		}

		f, err := New(0xBEEF, 0x45, payload)
		require.NoError(t, err)

		data, err := Encode(f)
		require.NoError(t, err)
		assert.Len(t, data, Overhead+size)

		got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, f, got, "payload size %d", size)
	}
}

func TestDecode_Rejects(t *testing.T) {
	valid := []byte{0x00, 0x01, 0x03, 0x02, 0x01, 0x01, 0x0F, 0x5C}

	t.Run("truncated", func(t *testing.T) {
		for n := 0; n < Overhead; n++ {
			_, err := Decode(valid[:n])
			require.ErrorIs(t, err, ErrFrameTooShort, "len %d", n)
		}
	})

	t.Run("corrupted CRC byte", func(t *testing.T) {
		data := bytes.Clone(valid)
		data[len(data)-1] ^= 0x01

		_, err := Decode(data)
		require.ErrorIs(t, err, ErrCRCMismatch)
	})

	t.Run("corrupted payload byte", func(t *testing.T) {
		data := bytes.Clone(valid)
		data[4] ^= 0x80

		_, err := Decode(data)
		require.ErrorIs(t, err, ErrCRCMismatch)
	})

	t.Run("length mismatch", func(t *testing.T) {
		// length byte claims 3 payload bytes but only 2 follow; CRC recomputed.
		body := []byte{0x00, 0x01, 0x03, 0x03, 0x01, 0x01}
		crc := CRC16(body)
		data := append(body, byte(crc>>8), byte(crc))

		_, err := Decode(data)
		require.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		data := append(bytes.Clone(valid), 0x00)

		_, err := Decode(data)
		require.Error(t, err)
	})
}

func TestReservedAddressPolicy(t *testing.T) {
	policy := ReservedAddressPolicy()
	for _, addr := range DefaultReservedAddresses {
		require.ErrorIs(t, policy(addr), ErrReservedAddress)
	}
	require.NoError(t, policy(1))

	custom := ReservedAddressPolicy(0x0063)
	require.ErrorIs(t, custom(0x0063), ErrReservedAddress)
	require.NoError(t, custom(0x2B00))

	require.NoError(t, AllowAllAddresses(0x2B00))
}
