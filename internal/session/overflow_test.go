package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOverflowLength(t *testing.T) {
	tr := &mockTransport{
		respond: func(payload []byte) (bool, bool, []byte) {
			return len(payload) > 42, false, []byte("ok")
		},
	}
	s := New(tr)

	n, ok := s.GetOverflowLength()
	require.True(t, ok)
	assert.Equal(t, 42, n)
}

func TestGetOverflowLengthCachesResult(t *testing.T) {
	calls := 0
	tr := &mockTransport{
		respond: func(payload []byte) (bool, bool, []byte) {
			calls++
			return len(payload) > 16, false, []byte("ok")
		},
	}
	s := New(tr)

	n1, ok := s.GetOverflowLength()
	require.True(t, ok)
	callsAfterFirst := calls

	n2, ok := s.GetOverflowLength()
	require.True(t, ok)
	assert.Equal(t, n1, n2)
	assert.Equal(t, callsAfterFirst, calls, "second call should not re-probe the target")
}

func TestGetOverflowLengthFailsOnInfinite(t *testing.T) {
	tr := &mockTransport{
		respond: func(payload []byte) (bool, bool, []byte) {
			return false, true, nil
		},
	}
	s := New(tr)

	_, ok := s.GetOverflowLength()
	assert.False(t, ok)
}
