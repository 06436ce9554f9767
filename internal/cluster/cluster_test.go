package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameInit(t *testing.T) {
	f := FrameFromUint64(0x40_0000)
	assert.Equal(t, Frame{0, 0, 0x40, 0, 0, 0, 0, 0}, f)

	f = FrameFromUint64(0x400_0000)
	assert.Equal(t, Frame{0, 0, 0, 4, 0, 0, 0, 0}, f)
}

func TestFrameAdd(t *testing.T) {
	f := FrameFromUint64(0x40_0000)
	assert.Equal(t, Frame{0, 1, 0x40, 0, 0, 0, 0, 0}, f.Add(256))
}

func TestFrameAnd(t *testing.T) {
	f := FrameFromUint64(0x1234_5678_90AB_CDEF)
	assert.Equal(t, uint64(0x1234_5678_0000_0000), f.And(0xFFFF_FFFF_0000_0000).Uint64())
}

func TestFrameRoundTrip(t *testing.T) {
	for _, u := range []uint64{0, 1, 0xDEAD_BEEF_DEAD_BEEF, 0x7F454C46} {
		f := FrameFromUint64(u)
		assert.Equal(t, u, f.Uint64())
		assert.Equal(t, f, FrameFromBytes(f.Bytes()))
	}
}

func TestFrameString(t *testing.T) {
	f := FrameFromUint64(0x400_0A20)
	assert.Equal(t, "0x0000000004000A20", f.String())
}

func TestAppend(t *testing.T) {
	base := make([]byte, 100)
	base = Append(base, FrameCluster(FrameFromUint64(0xDEAD_BEEF_DEAD_BEEF)))
	assert.Equal(t, 108, len(base))

	base = Append(base, ByteCluster(0x41))
	assert.Equal(t, 109, len(base))

	base = Append(base, WordCluster(Word{1, 2, 3}))
	assert.Equal(t, 112, len(base))
}

func TestWordString(t *testing.T) {
	w := Word{0x41, 0x42, 0x43}
	assert.Equal(t, "41 42 43", w.String())
}
