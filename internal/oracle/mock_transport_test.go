package oracle

import "time"

// mockTimeout satisfies transport.IsTimeout's duck-typed Timeout() bool.
type mockTimeout struct{}

func (mockTimeout) Error() string { return "i/o timeout" }
func (mockTimeout) Timeout() bool { return true }

// mockTransport simulates a remote target for oracle tests: respond is
// given the last payload written and decides whether the "server"
// crashes, replies, or hangs — the same three outcomes spec.md §8's
// "simulated target" scenarios describe.
type mockTransport struct {
	respond     func(payload []byte) (crash, infinite bool, data []byte)
	lastPayload []byte
	connects    int
}

func (m *mockTransport) Connect() error {
	m.connects++
	return nil
}

func (m *mockTransport) WriteAll(payload []byte) error {
	m.lastPayload = append([]byte(nil), payload...)
	return nil
}

func (m *mockTransport) ReadTimeout(buf []byte, _ time.Duration) (int, error) {
	crash, infinite, data := m.respond(m.lastPayload)
	switch {
	case infinite:
		return 0, mockTimeout{}
	case crash:
		return 0, nil
	default:
		return copy(buf, data), nil
	}
}

func (m *mockTransport) Shutdown() error { return nil }
