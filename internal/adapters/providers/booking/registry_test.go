package booking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodsxwu/WalkInNow/pkg/config"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	first := NewMockAdapter(nil)
	second := NewMockAdapter(nil)

	r.Register(" Mock ", first)
	got, ok := r.Resolve("mock")
	require.True(t, ok)
	assert.Same(t, first, got)

	r.Register("mock", second)
	got, ok = r.Resolve("MOCK")
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = r.Resolve("cliniko")
	assert.False(t, ok)

	r.Register("", first)
	r.Register("nil-adapter", nil)
	assert.Equal(t, []string{"mock"}, r.Names())
}

func TestRegistry_ConcurrentResolve(t *testing.T) {
	r := NewRegistry()
	r.Register(MockName, NewMockAdapter(nil))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Resolve(MockName)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestNewDefaultRegistry(t *testing.T) {
	cfg := &config.Config{}

	r := NewDefaultRegistry(cfg, nil)
	assert.Equal(t, []string{CarefinitiName, OceanName}, r.Names())

	cfg.Booking.EnableMockProvider = true
	r = NewDefaultRegistry(cfg, nil)
	assert.Equal(t, []string{CarefinitiName, MockName, OceanName}, r.Names())
}
