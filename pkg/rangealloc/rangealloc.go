// Package rangealloc is the public boundary shim over the free-list engine
// in internal/alloc: a Handle wraps one allocator, and Create/Destroy/
// Allocate/Free route to it. It carries no logic of its own beyond
// validating the handle - the four entry points mirror the C-style
// create/destroy/allocate/free API this module generalizes, expressed as a
// Go struct with an unexported field instead of an opaque pointer and a
// separate destructor.
//
// rangealloc.Handle is not safe for concurrent use, the same as the engine
// it wraps (spec section 5): callers embedding it in a multi-threaded
// program must serialize access themselves.
package rangealloc

import (
	"github.com/cedrou/rangeallocator/internal/alloc"
)

// Flag selects the placement policy used by Allocate.
type Flag = alloc.Flag

// Placement flags, re-exported from the engine.
const (
	Any   = alloc.Any
	Exact = alloc.Exact
	Above = alloc.Above
	Below = alloc.Below
)

// Strategy selects the node-storage backing. The default, used when Create
// is called without WithStrategy, is amortized.
type Strategy = alloc.Strategy

// Node-storage strategies, re-exported from the engine.
const (
	StrategyAmortized = alloc.StrategyAmortized
	StrategyBounded   = alloc.StrategyBounded
)

// SentinelAddr is returned by Allocate when no span satisfies the request.
const SentinelAddr = alloc.SentinelAddr

// Option configures Handle construction.
type Option = alloc.Option

// WithStrategy selects the node-storage strategy for the new Handle.
func WithStrategy(s Strategy) Option {
	return alloc.WithStrategy(s)
}

// Span describes one free extent, as reported by Handle.Spans.
type Span = alloc.Span

// Handle is an opaque reference to one Allocator, the only thing this
// package's callers ever hold.
type Handle struct {
	a *alloc.Allocator
}

// Create constructs a Handle managing [base, base+length), per spec
// section 6.1. It fails (returns a nil *Handle and a non-nil error) if
// base, length, or granularity is zero, or granularity exceeds length.
func Create(base, length, granularity uint64, opts ...Option) (*Handle, error) {
	a, err := alloc.New(base, length, granularity, opts...)
	if err != nil {
		return nil, err
	}
	return &Handle{a: a}, nil
}

// Destroy releases the handle's internal storage. It is a no-op on a nil
// *Handle and is idempotent.
func (h *Handle) Destroy() {
	if h == nil || h.a == nil {
		return
	}
	h.a.Close()
	h.a = nil
}

// Allocate requests length bytes under the given flag and hint, returning
// the chosen address or SentinelAddr on failure. A nil or already-destroyed
// Handle always returns SentinelAddr.
func (h *Handle) Allocate(length uint64, flag Flag, hint uint64) uint64 {
	if h == nil || h.a == nil {
		return SentinelAddr
	}
	return h.a.Allocate(length, flag, hint)
}

// Free returns [base, base+length) to the handle's free list. Invalid or
// overlapping requests are silently ignored, per spec section 4.2.3/7. A
// nil or already-destroyed Handle is a no-op.
func (h *Handle) Free(base, length uint64) {
	if h == nil || h.a == nil {
		return
	}
	h.a.Free(base, length)
}

// Base returns the managed region's inclusive low address.
func (h *Handle) Base() uint64 {
	if h == nil || h.a == nil {
		return 0
	}
	return h.a.Base
}

// Length returns the managed region's usable length (rounded down to a
// granularity multiple at construction).
func (h *Handle) Length() uint64 {
	if h == nil || h.a == nil {
		return 0
	}
	return h.a.Length
}

// Granularity returns the handle's accounting unit.
func (h *Handle) Granularity() uint64 {
	if h == nil || h.a == nil {
		return 0
	}
	return h.a.Granularity
}

// Spans returns the handle's free list in address order, for diagnostics
// and for callers (such as the demo command) that want to report on the
// region's fragmentation without tracking allocations themselves.
func (h *Handle) Spans() []Span {
	if h == nil || h.a == nil {
		return nil
	}
	return h.a.Spans()
}
