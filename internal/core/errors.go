package core

import "errors"

// Error classes. Concrete errors wrap one of these with fmt.Errorf("%w: ...").
var (
	// ErrInput marks unreadable or malformed input. The pipeline never starts.
	ErrInput = errors.New("input error")

	// ErrConfig marks a configuration that cannot be carried out, such as a
	// seam count that would consume the image.
	ErrConfig = errors.New("configuration error")

	// ErrInvariant marks an internal defect detected by invariant checks.
	ErrInvariant = errors.New("internal invariant violated")
)
