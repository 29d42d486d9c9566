package alloc

// Span is a maximal contiguous free interval tracked by the engine:
// [Base, Base+Length).
//
// Spans form a singly-linked, address-ordered list. Grounded on the
// teacher's AllocationBlock (internal/wasm/allocator.go), but simplified
// from a doubly-linked list to singly-linked: the engine only ever walks
// forward and keeps a trailing (prev, cur) pair while it does, the same way
// CustomAllocator.insertIntoFreeList/coalesce track prev/current rather than
// relying on back-pointers.
type Span struct {
	Base, Length uint64
	next         *Span
}

// End returns the exclusive upper bound of the span.
func (s *Span) End() uint64 { return s.Base + s.Length }

// alignUp rounds v up to the nearest multiple of granularity.
func alignUp(v, granularity uint64) uint64 {
	if granularity == 0 {
		return v
	}
	return ((v + granularity - 1) / granularity) * granularity
}

// alignDown rounds v down to the nearest multiple of granularity.
func alignDown(v, granularity uint64) uint64 {
	if granularity == 0 {
		return v
	}
	return (v / granularity) * granularity
}
