package ustream

import "errors"

// End of stream is signaled with io.EOF, so streams compose with the standard
// io machinery. Everything else maps to one of the sentinels below. Operations
// return nil on success.
var (
	// Nil stream, foreign media type, position outside the representable
	// range, empty read buffer or offset arithmetic overflow
	ErrIllegalArgument = errors.New("illegal argument")

	// Position references already released bytes, or no unreleased byte
	// remains to reset to
	ErrNoSuchElement = errors.New("no such element")

	// A caller-supplied allocator returned nothing
	ErrOutOfMemory = errors.New("out of memory")

	// Reserved for media implementations
	ErrBusy      = errors.New("busy")
	ErrCancelled = errors.New("cancelled")
	ErrSecurity  = errors.New("security violation")
	ErrSystem    = errors.New("system failure")
)
