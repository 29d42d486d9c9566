// Package alloc is the free-list engine: it carves [base, base+length) into
// disjoint Spans on Allocate and reclaims them on Free. It is the core
// described by the spec this module implements - everything outside this
// package (pkg/rangealloc, internal/region) is a thin consumer.
//
// The engine is single-threaded and non-reentrant: it does no locking and
// expects callers to serialize access, exactly like the teacher's
// CustomAllocator guards its own state with a mutex only at its own
// boundary, never inside the split/coalesce math itself.
package alloc

import (
	rerrors "github.com/cedrou/rangeallocator/internal/errors"
)

// SentinelAddr is returned by Allocate when no span satisfies the request.
const SentinelAddr = ^uint64(0)

// Strategy selects the node-storage implementation. It does not affect the
// engine's observable contract (spec section 4.1), only its memory profile.
type Strategy int

const (
	// StrategyAmortized lazily allocates Span nodes from the Go heap and
	// recycles them through a freelist; smaller steady-state footprint.
	StrategyAmortized Strategy = iota
	// StrategyBounded pre-allocates a fixed pool of Span nodes sized to the
	// worst-case fragmentation count; zero node allocation after construction.
	StrategyBounded
)

// Option configures Allocator construction.
type Option func(*config)

type config struct {
	strategy Strategy
}

// WithStrategy selects the node-storage strategy. The default is
// StrategyAmortized.
func WithStrategy(s Strategy) Option {
	return func(c *config) { c.strategy = s }
}

// ResolveStrategy applies opts the same way New does and reports the
// strategy they select, without constructing an Allocator. Callers that
// need to reject a strategy before paying construction's cost (internal/
// region.New requires StrategyAmortized because Grow cannot hand a bounded
// pool a node) use this instead of duplicating the Option-folding logic.
func ResolveStrategy(opts ...Option) Strategy {
	cfg := config{strategy: StrategyAmortized}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.strategy
}

// Allocator manages one contiguous address range.
type Allocator struct {
	Base        uint64
	Length      uint64 // usable length, rounded down to a multiple of Granularity
	Granularity uint64

	head    *Span
	storage nodeStorage
}

// New constructs an Allocator over [base, base+length), rounding length
// down to a multiple of granularity (spec section 4.2.1). base must be
// pre-aligned by the caller - this is the stricter of the two readings spec
// section 9 leaves open, adopted here as a construction precondition.
func New(base, length, granularity uint64, opts ...Option) (*Allocator, error) {
	if base == 0 {
		return nil, rerrors.ErrZeroBase
	}
	if length == 0 {
		return nil, rerrors.ErrZeroLength
	}
	if granularity == 0 {
		return nil, rerrors.ErrZeroGranularity
	}
	if granularity > length {
		return nil, rerrors.ErrGranularityExceedsLength
	}

	cfg := config{strategy: StrategyAmortized}
	for _, opt := range opts {
		opt(&cfg)
	}

	usable := alignDown(length, granularity)

	var storage nodeStorage
	switch cfg.strategy {
	case StrategyBounded:
		storage = newBoundedPool(usable, granularity)
	default:
		storage = newAmortizedPool()
	}

	head := storage.acquire()
	*head = Span{Base: base, Length: usable}

	return &Allocator{
		Base:        base,
		Length:      usable,
		Granularity: granularity,
		head:        head,
		storage:     storage,
	}, nil
}

// Allocate finds the first qualifying span per flag (first-fit,
// address-ordered) and returns the address chosen within it, or
// SentinelAddr if length rounds to zero, exceeds the allocator's usable
// length, or no span qualifies.
func (a *Allocator) Allocate(length uint64, flag Flag, hint uint64) uint64 {
	rl := alignUp(length, a.Granularity)
	if rl == 0 || rl > a.Length {
		return SentinelAddr
	}

	var prev *Span
	for cur := a.head; cur != nil; prev, cur = cur, cur.next {
		addr, ok := qualifies(cur, rl, flag, hint)
		if !ok {
			continue
		}
		if !a.commit(prev, cur, addr, rl) {
			// Node storage exhausted mid-split: a programmer error per
			// spec section 7 (the pool is sized so this cannot occur).
			return SentinelAddr
		}
		return addr
	}
	return SentinelAddr
}

// qualifies evaluates the per-flag predicate of spec section 4.2.2 against
// span s and, if it qualifies, returns the address the allocation should
// occupy within it.
func qualifies(s *Span, length uint64, flag Flag, hint uint64) (uint64, bool) {
	switch flag {
	case Any:
		if s.Length >= length {
			return s.Base, true
		}
	case Exact:
		if s.Base <= hint && hint+length <= s.End() {
			return hint, true
		}
	case Above:
		end := s.End()
		switch {
		case s.Base >= hint:
			if s.Length >= length {
				return end - length, true
			}
		case end >= hint:
			if end >= hint+length {
				return end - length, true
			}
		}
	case Below:
		// Strictly below hint: spec section 8's worked example (upper
		// quarter occupied, BELOW(2048, hint) must fail when the
		// candidate's top edge lands exactly on hint) only holds under a
		// strict bound. See DESIGN.md for this spec-text discrepancy.
		if s.Length >= length && s.Base+length < hint {
			return s.Base, true
		}
	}
	return 0, false
}

// commit applies the span mutation for a successful allocation of [b, b+L)
// within cur (spec section 4.2.2's four cases: remove, shrink-low,
// shrink-high, split-in-three). prev is cur's predecessor in the free list,
// or nil if cur is the head. Returns false only if node storage is
// exhausted during a split.
func (a *Allocator) commit(prev, cur *Span, b, length uint64) bool {
	end := cur.End()
	switch {
	case b == cur.Base && length == cur.Length:
		if prev == nil {
			a.head = cur.next
		} else {
			prev.next = cur.next
		}
		a.storage.release(cur)
	case b == cur.Base:
		cur.Base += length
		cur.Length -= length
	case b+length == end:
		cur.Length -= length
	default:
		tail := a.storage.acquire()
		if tail == nil {
			return false
		}
		*tail = Span{Base: b + length, Length: end - (b + length), next: cur.next}
		cur.Length = b - cur.Base
		cur.next = tail
	}
	return true
}

// Free returns [base, base+length) to the free list, rounding base down
// and length up to a granularity multiple. Invalid requests (zero length,
// out-of-range extent, or overlap with an already-free region) are
// silently ignored - the engine holds no record of live allocations and
// cannot distinguish a spurious free from a legitimate one beyond range and
// overlap checks (spec section 7).
func (a *Allocator) Free(base, length uint64) {
	if length == 0 {
		return
	}
	b := alignDown(base, a.Granularity)
	l := alignUp(length, a.Granularity)
	if l == 0 {
		return
	}
	e := b + l
	if b < a.Base || b >= a.Base+a.Length || e > a.Base+a.Length {
		return
	}

	var prev *Span
	for cur := a.head; cur != nil; prev, cur = cur, cur.next {
		switch {
		case e < cur.Base:
			a.insert(prev, cur, b, e)
			return
		case e == cur.Base:
			cur.Base = b
			cur.Length += l
			return
		case b < cur.End():
			// Overlaps cur: invalid double-free, ignore.
			return
		case b == cur.End():
			next := cur.next
			switch {
			case next != nil && e > next.Base:
				// Overlaps the far neighbor too.
				return
			case next != nil && e == next.Base:
				cur.Length += l + next.Length
				cur.next = next.next
				a.storage.release(next)
			default:
				cur.Length += l
			}
			return
		default:
			// b > cur.End(): fully past cur, keep scanning.
		}
	}
	// Exhausted the list without placement: append at the tail.
	a.insert(prev, nil, b, e)
}

// insert splices a new span [base, end) between prev and next, acquiring a
// node from storage. A nil result from storage (node-storage exhaustion)
// is dropped silently: it cannot occur if the pool was sized per spec
// section 4.1, and Free has no sentinel to report it through.
func (a *Allocator) insert(prev, next *Span, base, end uint64) {
	s := a.storage.acquire()
	if s == nil {
		return
	}
	*s = Span{Base: base, Length: end - base, next: next}
	if prev == nil {
		a.head = s
	} else {
		prev.next = s
	}
}

// Close returns every span to node storage and drops the allocator's
// references, per spec section 4.2.4. No callbacks run for holders of live
// allocations - the engine never had a record of them.
func (a *Allocator) Close() {
	for cur := a.head; cur != nil; {
		next := cur.next
		a.storage.release(cur)
		cur = next
	}
	a.head = nil
	a.storage = nil
}

// Spans returns the free list as a slice, in address order, for
// inspection and invariant checking by tests and by pkg/rangealloc's
// boundary shim. It does not mutate the allocator.
func (a *Allocator) Spans() []Span {
	var out []Span
	for cur := a.head; cur != nil; cur = cur.next {
		out = append(out, Span{Base: cur.Base, Length: cur.Length})
	}
	return out
}

// Grow extends the managed range by additional bytes (rounded up to a
// granularity multiple), appending the new extent to the free list as if it
// had just been returned by Free. It is not part of the core engine spec
// describes: it exists for callers like internal/region that back the
// managed range with a resizable store and want the engine's usable length
// to track it instead of rejecting requests past the original capacity.
//
// Grow is only safe under StrategyAmortized: a StrategyBounded pool is
// sized at construction for the fragmentation worst case of the original
// length and does not grow with it.
func (a *Allocator) Grow(additional uint64) {
	if additional == 0 {
		return
	}
	add := alignUp(additional, a.Granularity)
	newBase := a.Base + a.Length
	a.Length += add

	if a.head == nil {
		s := a.storage.acquire()
		if s == nil {
			return
		}
		*s = Span{Base: newBase, Length: add}
		a.head = s
		return
	}
	tail := a.head
	for tail.next != nil {
		tail = tail.next
	}
	if tail.End() == newBase {
		tail.Length += add
		return
	}
	s := a.storage.acquire()
	if s == nil {
		return
	}
	*s = Span{Base: newBase, Length: add}
	tail.next = s
}
