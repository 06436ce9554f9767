package session

import "github.com/voidspace-sec/brop/internal/cluster"

// pltSuccessor and pltPredecessor are the neighboring 16-byte-aligned
// PLT slots a genuine entry is expected to sit beside.
func pltSuccessor(g cluster.Gadget) cluster.Gadget { return g.Add(0x10) }
func pltPredecessor(g cluster.Gadget) cluster.Gadget { return g.Sub(0x10) }

// computePLTItems filters GetGadgets down to addresses that look like
// PLT stub entries: 16-byte aligned, with code 6 bytes in (the internal
// jmp past the lazy-binding stub header) and a neighboring entry one
// slot away in either direction (C10).
func (s *Session) computePLTItems() (cluster.Gadgets, bool) {
	gadgets, ok := s.GetGadgets()
	if !ok {
		return nil, false
	}

	var plt cluster.Gadgets
	for _, g := range gadgets {
		if g.Uint64()&0xf != 0 {
			continue
		}
		inner := g.Add(6)
		if gadgets.Contains(inner) && (gadgets.Contains(pltSuccessor(g)) || gadgets.Contains(pltPredecessor(g))) {
			plt = append(plt, g)
		}
	}

	if len(plt) == 0 {
		return nil, false
	}
	return plt, true
}
