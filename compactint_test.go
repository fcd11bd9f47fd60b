package solana

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutCompactU16(t *testing.T) {
	cases := []struct {
		val  int
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{65535, []byte{0xff, 0xff, 0x03}},
	}

	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, putCompactU16(&buf, c.val))
		assert.Equal(t, c.want, buf.Bytes(), "val=%d", c.val)
	}
}

func TestPutCompactU16OutOfRange(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, putCompactU16(&buf, -1))
	assert.Error(t, putCompactU16(&buf, 65536))
}

func TestReadCompactU16RoundTrip(t *testing.T) {
	for _, val := range []int{0, 1, 127, 128, 255, 300, 16383, 16384, 65535} {
		var buf bytes.Buffer
		require.NoError(t, putCompactU16(&buf, val))

		got, n, err := readCompactU16(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, val, got)
		assert.Equal(t, buf.Len(), n)
	}
}

func TestReadCompactU16RejectsAliasForm(t *testing.T) {
	// 0x80, 0x00 encodes zero the long way; the canonical encoding is just 0x00.
	_, _, err := readCompactU16([]byte{0x80, 0x00})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrDeserialization))
}

func TestReadCompactU16RejectsFourthByte(t *testing.T) {
	_, _, err := readCompactU16([]byte{0x80, 0x80, 0x80, 0x01})
	require.Error(t, err)
}

func TestReadCompactU16RejectsTruncation(t *testing.T) {
	_, _, err := readCompactU16([]byte{0x80})
	require.Error(t, err)
}

func TestReadCompactU16RejectsOverflow(t *testing.T) {
	// Three full continuation groups accumulate 2,097,151, well past the
	// 16-bit domain CI-16 is defined over.
	_, _, err := readCompactU16([]byte{0xff, 0xff, 0x7f})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrDeserialization))
}

func TestReadCompactU16IgnoresTrailingBytes(t *testing.T) {
	got, n, err := readCompactU16([]byte{0x01, 0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, n)
}
