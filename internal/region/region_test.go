package region_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	"github.com/cedrou/rangeallocator/internal/alloc"
	"github.com/cedrou/rangeallocator/internal/region"
)

// fakeMemory is a minimal stand-in for a wazero api.Memory: it satisfies
// region.Memory without instantiating a real WASM module or runtime.
type fakeMemory struct {
	size       uint32
	maxPages   uint32
	growCalled int
}

func newFakeMemory(initialPages, maxPages uint32) *fakeMemory {
	return &fakeMemory{size: initialPages * api.MemoryPageSize, maxPages: maxPages}
}

func (m *fakeMemory) Size() uint32 { return m.size }

func (m *fakeMemory) Grow(deltaPages uint32) (uint32, bool) {
	m.growCalled++
	prevPages := m.size / api.MemoryPageSize
	if prevPages+deltaPages > m.maxPages {
		return 0, false
	}
	m.size += deltaPages * api.MemoryPageSize
	return prevPages, true
}

func TestNewRejectsMemoryOfOnlyOnePage(t *testing.T) {
	mem := newFakeMemory(1, 16)
	r, err := region.New(mem, 64)
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestNewRejectsBoundedStrategy(t *testing.T) {
	mem := newFakeMemory(2, 16)
	r, err := region.New(mem, 64, alloc.WithStrategy(alloc.StrategyBounded))
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestNewManagesEverythingAfterPageZero(t *testing.T) {
	mem := newFakeMemory(2, 16)
	r, err := region.New(mem, 64)
	require.NoError(t, err)

	stats := r.Stats()
	assert.Equal(t, uint64(api.MemoryPageSize), stats.Base)
	assert.Equal(t, uint64(api.MemoryPageSize), stats.Length)
}

func TestReserveNeverReturnsPageZero(t *testing.T) {
	mem := newFakeMemory(1+4, 32)
	r, err := region.New(mem, 64)
	require.NoError(t, err)

	addr, err := r.Reserve(64, alloc.Any, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, addr, uint64(api.MemoryPageSize))
}

func TestReserveGrowsBackingMemoryOnExhaustion(t *testing.T) {
	mem := newFakeMemory(2, 16) // one usable page, 65536 bytes
	r, err := region.New(mem, 64)
	require.NoError(t, err)

	// Exhaust the single managed page.
	addr1, err := r.Reserve(api.MemoryPageSize, alloc.Any, 0)
	require.NoError(t, err)

	// The next request cannot fit without growing.
	addr2, err := r.Reserve(64, alloc.Any, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.growCalled)
	assert.NotEqual(t, addr1, addr2)
	assert.Equal(t, addr1+api.MemoryPageSize, addr2)
}

func TestReserveSurfacesGrowFailure(t *testing.T) {
	mem := newFakeMemory(2, 2) // already at the cap, cannot grow
	r, err := region.New(mem, 64)
	require.NoError(t, err)

	_, err = r.Reserve(api.MemoryPageSize, alloc.Any, 0)
	require.NoError(t, err) // fits in the initial page, no grow needed

	_, err = r.Reserve(64, alloc.Any, 0)
	assert.Error(t, err)
}

func TestReserveDoesNotGrowForExactAboveBelow(t *testing.T) {
	mem := newFakeMemory(2, 16)
	r, err := region.New(mem, 64)
	require.NoError(t, err)

	_, err = r.Reserve(api.MemoryPageSize+64, alloc.Exact, api.MemoryPageSize)
	assert.Error(t, err)
	_, err = r.Reserve(api.MemoryPageSize+64, alloc.Above, api.MemoryPageSize)
	assert.Error(t, err)
	_, err = r.Reserve(api.MemoryPageSize+64, alloc.Below, 2*api.MemoryPageSize)
	assert.Error(t, err)
	assert.Equal(t, 0, mem.growCalled)
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	mem := newFakeMemory(2, 16)
	r, err := region.New(mem, 64)
	require.NoError(t, err)

	addr, err := r.Reserve(128, alloc.Any, 0)
	require.NoError(t, err)

	r.Release(addr, 128)
	addr2, err := r.Reserve(128, alloc.Any, 0)
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)
}

func TestClose(t *testing.T) {
	mem := newFakeMemory(2, 16)
	r, err := region.New(mem, 64)
	require.NoError(t, err)
	r.Close()
	assert.Equal(t, 0, r.Stats().FreeSpans)
}
