package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGadgetOffsets(t *testing.T) {
	g := GadgetFromUint64(0x400000)
	assert.Equal(t, uint64(0x400007), g.ToRSIGadget().Uint64())
	assert.Equal(t, uint64(0x400009), g.ToRDIGadget().Uint64())
}

func TestGadgetsContains(t *testing.T) {
	gs := Gadgets{GadgetFromUint64(1), GadgetFromUint64(2)}
	assert.True(t, gs.Contains(GadgetFromUint64(1)))
	assert.False(t, gs.Contains(GadgetFromUint64(3)))
}
