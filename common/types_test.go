package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashConversions(t *testing.T) {
	h := HexToHash("0x2a8de2adf89af77358250bf908bf04ba94a6e8c3ba87775564a41d269a05e4ce")
	assert.Equal(t, byte(0x2a), h[0])
	assert.Equal(t, byte(0xce), h[31])
	assert.Equal(t, "0x2a8de2adf89af77358250bf908bf04ba94a6e8c3ba87775564a41d269a05e4ce", h.Hex())

	short := BytesToHash([]byte{1, 2})
	assert.Equal(t, byte(1), short[30])
	assert.Equal(t, byte(2), short[31])
	assert.False(t, short.IsZero())
	assert.True(t, Hash{}.IsZero())
}

func TestParseHex(t *testing.T) {
	b, err := ParseHex(" 0xabc ")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0xbc}, b)

	_, err = ParseHex("zz")
	assert.Error(t, err)
	assert.Nil(t, FromHex("zz"))
}

func TestPrettyDuration(t *testing.T) {
	assert.Equal(t, "1.234s", PrettyDuration(1234567891*time.Nanosecond).String())
	assert.Equal(t, "2ms", PrettyDuration(2*time.Millisecond).String())
}
