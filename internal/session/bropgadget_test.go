package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidspace-sec/brop/internal/cluster"
)

func TestComputeBROPGadgetsClassifiesCandidates(t *testing.T) {
	canary := cluster.FrameFromUint64(0x00AABBCCDDEEFF11)
	padding := cluster.Word{0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41}
	stopGadget := cluster.GadgetFromUint64(0x4000A20)
	realBrop := cluster.GadgetFromUint64(0x4001234)
	notBrop := cluster.GadgetFromUint64(0x4009999)

	const stopCheckLen = 58 + 8 + 80
	const bropLen = 58 + 8 + 48 + 8 + 40

	tr := &mockTransport{
		respond: func(payload []byte) (bool, bool, []byte) {
			if len(payload) < 66 {
				return true, false, nil
			}
			candidate := cluster.FrameFromBytes(payload[58:66])
			switch len(payload) {
			case stopCheckLen:
				if candidate == realBrop.Frame() {
					return true, false, nil // Crash: proceed to stage 2.
				}
				if candidate == notBrop.Frame() {
					return false, false, []byte("ok") // NoCrash: disqualified early.
				}
			case bropLen:
				if candidate == realBrop.Frame() {
					return false, true, nil // Infinite: confirmed BROP gadget.
				}
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
	s.stopGadget = &stopGadget
	s.gadgetsComputed = true
	s.gadgets = cluster.Gadgets{realBrop, notBrop}

	gadgets, ok := s.GetBROPGadgets()
	require.True(t, ok)
	assert.Equal(t, cluster.Gadgets{realBrop}, gadgets)
}
