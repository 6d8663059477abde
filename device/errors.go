package device

import "errors"

// Error taxonomy for the primitive surface. Library errors wrap exactly one of
// these sentinels; callers test with errors.Is.
var (
	// ErrInvalidArgument covers malformed bit ranges, undersized temporary
	// storage on an execution call, nil buffers with a nonzero element count,
	// and unsupported type configurations. Detected before any device work.
	ErrInvalidArgument = errors.New("rocprim: invalid argument")

	// ErrResourceExhausted reports a failed device memory allocation.
	ErrResourceExhausted = errors.New("rocprim: resource exhausted")

	// ErrDeviceFault reports a kernel build or launch failure. Fatal for the
	// invocation; the caller decides whether to retry after checking device
	// health.
	ErrDeviceFault = errors.New("rocprim: device fault")
)
