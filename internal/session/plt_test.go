package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidspace-sec/brop/internal/cluster"
)

func TestComputePLTItemsFindsAlignedEntryWithNeighbor(t *testing.T) {
	base := uint64(0x401000)
	plt1 := cluster.GadgetFromUint64(base)
	plt1Jump := cluster.GadgetFromUint64(base + 6)
	plt2 := cluster.GadgetFromUint64(base + 0x10)
	unaligned := cluster.GadgetFromUint64(base + 3)

	s := New(&mockTransport{})
	s.gadgetsComputed = true
	s.gadgets = cluster.Gadgets{plt1, plt1Jump, plt2, unaligned}

	items, ok := s.GetPLTItems()
	require.True(t, ok)
	// plt2 sits one slot over from plt1 but has no +6 internal-jump
	// neighbor of its own in this gadget set, so only plt1 qualifies.
	assert.Equal(t, cluster.Gadgets{plt1}, items)
}

func TestComputePLTItemsEmptyWhenNoneQualify(t *testing.T) {
	s := New(&mockTransport{})
	s.gadgetsComputed = true
	s.gadgets = cluster.Gadgets{cluster.GadgetFromUint64(0x401003)}

	_, ok := s.GetPLTItems()
	assert.False(t, ok)
}
