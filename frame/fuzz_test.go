package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzDecode(f *testing.F) {
	f.Add([]byte{0x00, 0x01, 0x30, 0x00, 0xE4, 0x45})
	f.Add([]byte{0x00, 0x01, 0x03, 0x02, 0x01, 0x01, 0x0F, 0x5C})
	f.Add([]byte{0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		fr, err := Decode(data)
		if err != nil {
			return
		}

		encoded, err := Encode(fr)
		require.NoError(t, err)
		require.Equal(t, data, encoded)
	})
}
