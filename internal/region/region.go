// Package region adapts the free-list engine in internal/alloc to a
// growable WebAssembly linear memory: a Region hands out sub-ranges of a
// wazero api.Memory-shaped backing store through the engine, and grows the
// backing store in page-sized steps instead of failing outright when the
// engine reports exhaustion.
//
// This mirrors how the teacher's internal/wasm.Runtime.WriteToMemory grows
// r.memory on demand before writing: the same "compute the shortfall in
// pages, Grow, then proceed" sequence, but driving internal/alloc's engine
// rather than a bump pointer.
package region

import (
	"fmt"
	"log"
	"sync"

	"github.com/tetratelabs/wazero/api"

	"github.com/cedrou/rangeallocator/internal/alloc"
	rerrors "github.com/cedrou/rangeallocator/internal/errors"
)

// Memory is the subset of wazero's api.Memory that Region depends on. A
// live api.Memory obtained from an instantiated module satisfies it
// directly; tests substitute a fake.
type Memory interface {
	Size() uint32
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
}

// Region manages sub-ranges of a growable Memory through an internal/alloc
// engine. Page 0 is never handed out: it is reserved so that a successful
// Reserve can never return the address conventionally used as a null
// pointer across the WASM ABI.
type Region struct {
	mu  sync.Mutex
	mem Memory
	a   *alloc.Allocator
}

// New constructs a Region over mem's current size, reserving page 0 and
// managing [api.MemoryPageSize, mem.Size()) with the given granularity.
//
// Region requires the amortized node-storage strategy: Reserve grows the
// engine's managed length via Allocator.Grow on exhaustion, and Grow cannot
// hand a bounded pool (sized once, at construction, for a fixed length) a
// node for the new tail span. Passing alloc.WithStrategy(alloc.StrategyBounded)
// is rejected rather than left to silently drop the grown span.
func New(mem Memory, granularity uint64, opts ...alloc.Option) (*Region, error) {
	if alloc.ResolveStrategy(opts...) != alloc.StrategyAmortized {
		return nil, rerrors.ErrBoundedStrategyUnsupported
	}
	size := uint64(mem.Size())
	if size <= api.MemoryPageSize {
		return nil, rerrors.ErrMemoryTooSmall
	}
	a, err := alloc.New(api.MemoryPageSize, size-api.MemoryPageSize, granularity, opts...)
	if err != nil {
		return nil, err
	}
	return &Region{mem: mem, a: a}, nil
}

// Reserve allocates length bytes under flag/hint (spec section 4.2.2),
// growing the backing memory by whole pages and extending the engine's
// managed range if the current free list cannot satisfy the request.
// Growth is only attempted for flag Any: Exact, Above, and Below all name a
// specific placement that growing the tail cannot help satisfy.
func (r *Region) Reserve(length uint64, flag alloc.Flag, hint uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if addr := r.a.Allocate(length, flag, hint); addr != alloc.SentinelAddr {
		return addr, nil
	}
	if flag != alloc.Any {
		return 0, rerrors.ErrAllocationFailed
	}

	deltaPages := uint32((length + api.MemoryPageSize - 1) / api.MemoryPageSize)
	if deltaPages == 0 {
		deltaPages = 1
	}
	prevPages, ok := r.mem.Grow(deltaPages)
	if !ok {
		log.Printf("[Region] grow refused: %d page(s) requested, memory already at %d page(s)", deltaPages, prevPages)
		return 0, rerrors.ErrGrowFailed
	}
	log.Printf("[Region] grew backing memory by %d page(s), %d -> %d", deltaPages, prevPages, prevPages+deltaPages)
	r.a.Grow(uint64(deltaPages) * api.MemoryPageSize)

	addr := r.a.Allocate(length, flag, hint)
	if addr == alloc.SentinelAddr {
		return 0, rerrors.ErrAllocationFailed
	}
	return addr, nil
}

// Release returns [base, base+length) to the region, per spec section
// 4.2.3/7. Invalid or overlapping requests are silently ignored, matching
// the underlying engine's Free.
func (r *Region) Release(base, length uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.a.Free(base, length)
}

// Close releases the region's node storage. The backing Memory is not
// touched: Region never owned it.
func (r *Region) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.a.Close()
}

// Stats reports the region's current managed extent, for diagnostics.
type Stats struct {
	Base, Length, Granularity uint64
	FreeSpans                 int
}

func (r *Region) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Base:        r.a.Base,
		Length:      r.a.Length,
		Granularity: r.a.Granularity,
		FreeSpans:   len(r.a.Spans()),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("region[base=0x%x length=%d granularity=%d free_spans=%d]", s.Base, s.Length, s.Granularity, s.FreeSpans)
}
