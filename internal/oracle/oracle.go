// Package oracle implements the three-valued crash oracle BROP relies
// on (Crash / NoCrash / Infinite) and the incremental byte-at-a-time
// stack readers built on top of it.
package oracle

import (
	"time"

	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/transport"
)

// ReturnCode is the outcome of a single probe.
type ReturnCode int

const (
	// Crash means the peer closed the connection (zero-byte read):
	// the payload overran something the process cared about.
	Crash ReturnCode = iota
	// NoCrash means the server replied: the payload did not disturb
	// the control flow enough to kill or hang the process.
	NoCrash
	// Infinite means the read timed out: the server accepted the
	// input, didn't crash, and didn't reply — the signature of a
	// stop-gadget-style dead end (infinite loop or long sleep).
	Infinite
)

func (rc ReturnCode) String() string {
	switch rc {
	case Crash:
		return "Crash"
	case NoCrash:
		return "NoCrash"
	case Infinite:
		return "Infinite"
	default:
		return "Unknown"
	}
}

// Response carries a ReturnCode together with whatever partial byte or
// word value an interrupted read managed to recover before surrendering.
type Response struct {
	Code  ReturnCode
	Value cluster.Cluster
}

// ProbeTimeout is the bounded read used to detect Infinite. Spec.md §4.1
// fixes this at roughly 1 second.
const ProbeTimeout = time.Second

// Probe sends payload over t and classifies the reply. ok is false only
// on an unrecoverable transport failure (spec.md §4.1's "None" case):
// connection refused, a write error, or any read error that isn't a
// plain timeout. Probe also returns the raw bytes read on NoCrash, which
// most callers ignore but the binary-leak stage (C13) needs.
func Probe(t transport.Transport, payload []byte) (rc ReturnCode, data []byte, ok bool) {
	if err := t.Connect(); err != nil {
		return 0, nil, false
	}
	if err := t.WriteAll(payload); err != nil {
		return 0, nil, false
	}

	buf := make([]byte, cluster.OverflowBufferSize)
	n, err := t.ReadTimeout(buf, ProbeTimeout)
	switch {
	case err == nil && n == 0:
		return Crash, nil, true
	case err == nil && n > 0:
		return NoCrash, buf[:n], true
	case err != nil && transport.IsTimeout(err):
		return Infinite, nil, true
	default:
		return 0, nil, false
	}
}
