package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedTraceGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedTraceGenerator("trace-123")

	assert.Equal(t, "trace-123", gen.Generate())
	assert.Equal(t, "trace-123", gen.Generate())
}

func TestFixedTraceGenerator_EmptyIDDefault(t *testing.T) {
	assert.Equal(t, "test-trace-default", NewFixedTraceGenerator("").Generate())
}

func TestFixedTraceGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedTraceGenerator("thread-safe-id")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe-id", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestSchemas(t *testing.T) {
	assert.Contains(t, Schema().Scopes(), "item")
	assert.Equal(t, []string{"archive", "museum", "person"}, MixedSchema().Scopes())
	assert.Equal(t, []string{"archive", "museum", "person"}, MixedSchema().CandidateScopes("name"))
}
