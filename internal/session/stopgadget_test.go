package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidspace-sec/brop/internal/cluster"
)

func TestComputeStopGadgetDirect(t *testing.T) {
	canary := cluster.FrameFromUint64(0x00AABBCCDDEEFF11)
	padding := cluster.Word{0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41}
	gadgetAddr := cluster.FrameFromUint64(0x4000A20)
	baseLen := 58

	tr := &mockTransport{
		respond: func(payload []byte) (bool, bool, []byte) {
			pos := len(payload) - baseLen - 1
			if pos < 0 || pos >= 8 {
				return true, false, nil
			}
			if payload[len(payload)-1] == gadgetAddr[pos] {
				return false, true, nil
			}
			return true, false, nil
		},
	}
	s := New(tr)
	overflow := 42
	s.overflowLength = &overflow
	s.canaryComputed = true
	s.canaryExists = true
	s.canaryValue = canary
	s.padding = &padding

	g, ok := s.computeStopGadget()
	require.True(t, ok)
	assert.Equal(t, cluster.GadgetFromFrame(gadgetAddr), g)
}

func TestComputeStopGadgetFailsWhenSequenceBreaks(t *testing.T) {
	canary := cluster.FrameFromUint64(0x00AABBCCDDEEFF11)
	padding := cluster.Word{0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41}
	baseLen := 58

	// First byte comes back Infinite, but the second byte never does,
	// which means the discovery went wrong partway through.
	tr := &mockTransport{
		respond: func(payload []byte) (bool, bool, []byte) {
			pos := len(payload) - baseLen - 1
			guess := payload[len(payload)-1]
			if pos == 0 && guess == 0x10 {
				return false, true, nil
			}
			if pos == 1 && guess == 0x20 {
				return false, false, []byte("ok")
			}
			return true, false, nil
		},
	}
	s := New(tr)
	overflow := 42
	s.overflowLength = &overflow
	s.canaryComputed = true
	s.canaryExists = true
	s.canaryValue = canary
	s.padding = &padding

	_, ok := s.computeStopGadget()
	assert.False(t, ok)
}
