// Package errors defines the construction-failure taxonomy for the
// allocator, plus the errors internal/region reports. The free-list engine
// itself never returns an error: an unsatisfiable allocate returns
// alloc.SentinelAddr and an invalid free is a silent no-op, per the
// allocator's contract. Within the engine, only construction can fail.
package errors

// Errno is a small code-keyed error, the same shape the teacher's
// internal/errors.Errno uses: a numeric code and an Error() switch over it,
// rather than a stored message string.
type Errno struct {
	code uint16
}

// NewErrno creates an Errno for the given code.
func NewErrno(code uint16) *Errno {
	return &Errno{code: code}
}

// Code returns the numeric error code.
func (e *Errno) Code() uint16 { return e.code }

func (e *Errno) Error() string {
	switch e.code {
	case codeZeroBase:
		return "rangealloc: base must be non-zero"
	case codeZeroLength:
		return "rangealloc: length must be non-zero"
	case codeZeroGranularity:
		return "rangealloc: granularity must be non-zero"
	case codeGranularityExceedsLength:
		return "rangealloc: granularity must not exceed length"
	case codeMemoryTooSmall:
		return "rangealloc: backing memory must exceed one page"
	case codeGrowFailed:
		return "rangealloc: backing memory grow was refused"
	case codeAllocationFailed:
		return "rangealloc: allocation failed after growing backing memory"
	case codeBoundedStrategyUnsupported:
		return "rangealloc: region requires the amortized node-storage strategy: a bounded pool cannot supply a node to Grow"
	default:
		return "rangealloc: unknown error"
	}
}

// Error codes: construction failures, then region failures.
const (
	codeZeroBase uint16 = 0x0001 + iota
	codeZeroLength
	codeZeroGranularity
	codeGranularityExceedsLength
	codeMemoryTooSmall
	codeGrowFailed
	codeAllocationFailed
	codeBoundedStrategyUnsupported
)

// Construction-invalid errors, returned by internal/alloc.New and
// pkg/rangealloc.Create. Each corresponds to one of the parameter checks in
// spec section 4.2.1: base > 0, length > 0, granularity > 0, granularity <=
// length.
var (
	ErrZeroBase                 = NewErrno(codeZeroBase)
	ErrZeroLength               = NewErrno(codeZeroLength)
	ErrZeroGranularity          = NewErrno(codeZeroGranularity)
	ErrGranularityExceedsLength = NewErrno(codeGranularityExceedsLength)
)

// Region errors, returned by internal/region.New and Region.Reserve when the
// backing store cannot supply the space the engine needs.
var (
	ErrMemoryTooSmall             = NewErrno(codeMemoryTooSmall)
	ErrGrowFailed                 = NewErrno(codeGrowFailed)
	ErrAllocationFailed           = NewErrno(codeAllocationFailed)
	ErrBoundedStrategyUnsupported = NewErrno(codeBoundedStrategyUnsupported)
)
