package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedTraceIDs_ReturnsSameID(t *testing.T) {
	gen := NewFixedTraceIDs("trace-123")

	assert.Equal(t, "trace-123", gen.Generate())
	assert.Equal(t, "trace-123", gen.Generate())
}

func TestFixedTraceIDs_EmptyIDDefault(t *testing.T) {
	gen := NewFixedTraceIDs("")
	assert.Equal(t, "00000000-0000-7000-8000-000000000000", gen.Generate())
}

func TestFixedTraceIDs_ThreadSafe(t *testing.T) {
	gen := NewFixedTraceIDs("thread-safe")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe", gen.Generate())
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
