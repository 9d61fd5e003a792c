package ustream

import (
	"math"
	"sync/atomic"
)

// Called exactly once when the storage it guards is no longer referenced
type ReleaseFunc func()

// Provider exposes one kind of media as a stream. Every operation receives
// the stream it operates on, works in logical positions and follows the
// contracts documented on the equally named Stream methods. Implementations
// for byte-addressable media can embed Base and only supply Read.
type Provider interface {
	SetPosition(s *Stream, pos int64) error
	Reset(s *Stream) error
	Read(s *Stream, p []byte) (int, error)
	RemainingSize(s *Stream) (int64, error)
	Position(s *Stream) (int64, error)
	Release(s *Stream, pos int64) error
	Clone(dst, src *Stream, offset int64) error
	Dispose(s *Stream) error
}

// ControlBlock is the shared descriptor of a stream's backing media. All
// streams cloned from one another point to the same control block; the block
// and its media are released when the last of them is disposed.
//
// Callers only allocate ControlBlocks and pass them to Init, InitProvider or
// Concat. The contents are private to the stream implementation.
type ControlBlock struct {
	api          Provider
	data         interface{}
	refs         int32
	releaseData  ReleaseFunc
	releaseBlock ReleaseFunc
}

// Register one more stream referencing the block
func (b *ControlBlock) acquire() {
	atomic.AddInt32(&b.refs, 1)
}

// Drop one stream's reference. On the last drop the media release callback
// runs first, then the block release callback, each exactly once.
func (b *ControlBlock) release() {
	if atomic.AddInt32(&b.refs, -1) != 0 {
		return
	}
	if b.releaseData != nil {
		b.releaseData()
	}
	if b.releaseBlock != nil {
		b.releaseBlock()
	}
}

// Stream is a single consumer's cursor into a control block. A stream is
// owned by exactly one consumer; to share content, clone it. The zero value
// is invalid until passed to Init, InitProvider, Concat or Clone.
//
// Positions come in two coordinate systems: the media's native (inner)
// positions, and the logical positions the consumer sees, shifted by the
// offset chosen at clone time. All methods take and return logical
// positions.
type Stream struct {
	block *ControlBlock

	// Added to an inner position to produce the logical position
	offsetDiff int64

	// Inner position of the next byte a read will return
	innerCurrent int64

	// Inner position of the earliest byte not yet released. Only ever
	// increases.
	innerFirstValid int64

	// Inner position one past the last byte. Fixed at init/clone time.
	end int64
}

func (s *Stream) valid() bool {
	return s != nil && s.block != nil && s.block.api != nil
}

// SetPosition moves the read cursor to the logical position pos. The end of
// the stream is addressable, so a following read reports EOF. Returns
// ErrNoSuchElement for positions that were released or lie past the end, and
// ErrIllegalArgument for positions before the stream's logical origin.
func (s *Stream) SetPosition(pos int64) error {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return ErrIllegalArgument
	}
	return s.block.api.SetPosition(s, pos)
}

// Reset moves the read cursor back to the first byte not yet released.
// Returns ErrNoSuchElement once every byte has been released.
func (s *Stream) Reset() error {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return ErrIllegalArgument
	}
	return s.block.api.Reset(s)
}

// Read copies up to len(p) bytes into p, starting at the current position,
// and advances the cursor by the amount copied. Returns (0, io.EOF) at the
// end of the stream and ErrIllegalArgument for an empty p. Short reads are
// legal. The cursor does not move on error.
func (s *Stream) Read(p []byte) (int, error) {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return 0, ErrIllegalArgument
	}
	return s.block.api.Read(s, p)
}

// RemainingSize reports the number of bytes between the current position and
// the end of the stream.
func (s *Stream) RemainingSize() (int64, error) {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return 0, ErrIllegalArgument
	}
	return s.block.api.RemainingSize(s)
}

// Position reports the logical position of the next byte a read will return.
func (s *Stream) Position() (int64, error) {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return 0, ErrIllegalArgument
	}
	return s.block.api.Position(s)
}

// Release marks every byte at logical positions <= pos as no longer needed
// by this stream. Only positions strictly before the current one are
// releasable; later ones return ErrIllegalArgument, already released ones
// ErrNoSuchElement. What, if anything, is freed is up to the media.
func (s *Stream) Release(pos int64) error {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return ErrIllegalArgument
	}
	return s.block.api.Release(s, pos)
}

// Clone initializes dst as an independent stream over the same content,
// starting at s's current position, with offset as the logical position of
// its first byte. The remaining size is preserved; the backing block gains a
// reference. Fails with ErrIllegalArgument if offset plus the remaining size
// does not fit in an int64.
func (s *Stream) Clone(dst *Stream, offset int64) error {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return ErrIllegalArgument
	}
	return s.block.api.Clone(dst, s, offset)
}

// Dispose ends this stream's life and drops its reference on the backing
// block. The last dispose triggers the block's release callbacks. Using the
// stream afterwards returns ErrIllegalArgument.
func (s *Stream) Dispose() error {
	if !s.valid() {
		Log(ErrorLevel, logWrongType)
		return ErrIllegalArgument
	}
	return s.block.api.Dispose(s)
}

// Media returns the provider-private handle stored in the stream's control
// block. Only useful to Provider implementations.
func (s *Stream) Media() interface{} {
	return s.block.data
}

// InnerPosition returns the inner position of the next unread byte. Only
// useful to Provider implementations.
func (s *Stream) InnerPosition() int64 {
	return s.innerCurrent
}

// InnerEnd returns the inner position one past the last byte. Only useful to
// Provider implementations.
func (s *Stream) InnerEnd() int64 {
	return s.end
}

// Advance moves the cursor forward by n produced bytes. Only useful to
// Provider implementations, after a successful read.
func (s *Stream) Advance(n int64) {
	s.innerCurrent += n
}

// Sliding-window arithmetic shared by all providers. Works purely on the
// stream's own state; providers layer media access and routing on top.

// Translate the logical position to inner coordinates and move the cursor,
// classifying out-of-window positions
func (s *Stream) seekInner(pos int64) error {
	if pos < 0 {
		return ErrIllegalArgument
	}
	// pos - offsetDiff would overflow; the position is far past the end
	if s.offsetDiff < 0 && pos > math.MaxInt64+s.offsetDiff {
		return ErrNoSuchElement
	}
	inner := pos - s.offsetDiff
	switch {
	case inner < 0:
		// Before the logical origin of this stream's view
		return ErrIllegalArgument
	case inner < s.innerFirstValid:
		return ErrNoSuchElement
	case inner > s.end:
		return ErrNoSuchElement
	}
	s.innerCurrent = inner
	return nil
}

func (s *Stream) reset() error {
	if s.innerFirstValid == s.end {
		return ErrNoSuchElement
	}
	s.innerCurrent = s.innerFirstValid
	return nil
}

func (s *Stream) remaining() int64 {
	return s.end - s.innerCurrent
}

func (s *Stream) position() int64 {
	return s.innerCurrent + s.offsetDiff
}

func (s *Stream) releaseUpTo(pos int64) error {
	if s.offsetDiff < 0 && pos > math.MaxInt64+s.offsetDiff {
		return ErrIllegalArgument
	}
	inner := pos - s.offsetDiff
	if inner >= s.innerCurrent {
		return ErrIllegalArgument
	}
	if inner < s.innerFirstValid {
		return ErrNoSuchElement
	}
	s.innerFirstValid = inner + 1
	return nil
}

func (s *Stream) cloneInto(dst *Stream, offset int64) error {
	if dst == nil {
		Log(ErrorLevel, logRequireNotNil, "clone target")
		return ErrIllegalArgument
	}
	if offset < 0 || offset > math.MaxInt64-s.remaining() {
		return ErrIllegalArgument
	}
	*dst = Stream{
		block:           s.block,
		offsetDiff:      offset - s.innerCurrent,
		innerCurrent:    s.innerCurrent,
		innerFirstValid: s.innerCurrent,
		end:             s.end,
	}
	s.block.acquire()
	return nil
}

func (s *Stream) dispose() error {
	b := s.block
	*s = Stream{}
	b.release()
	return nil
}

// Base implements every provider operation except Read in terms of the
// shared sliding-window arithmetic. Providers over byte-addressable media
// embed it and only supply the Read that copies from their media.
type Base struct{}

func (Base) SetPosition(s *Stream, pos int64) error {
	return s.seekInner(pos)
}

func (Base) Reset(s *Stream) error {
	return s.reset()
}

func (Base) RemainingSize(s *Stream) (int64, error) {
	return s.remaining(), nil
}

func (Base) Position(s *Stream) (int64, error) {
	return s.position(), nil
}

func (Base) Release(s *Stream, pos int64) error {
	return s.releaseUpTo(pos)
}

func (Base) Clone(dst, src *Stream, offset int64) error {
	return src.cloneInto(dst, offset)
}

func (Base) Dispose(s *Stream) error {
	return s.dispose()
}

// InitProvider initializes s as a stream over a custom media implementation.
// api dispatches all operations, data is the provider-private handle and
// length the number of bytes the stream exposes. The release callbacks run
// once the last stream over the block is disposed, media first. Storage for
// s and b is supplied by the caller and must outlive the block.
func InitProvider(s *Stream, b *ControlBlock, api Provider, data interface{},
	length int64, releaseData, releaseBlock ReleaseFunc,
) error {
	switch {
	case s == nil:
		Log(ErrorLevel, logRequireNotNil, "stream")
		return ErrIllegalArgument
	case b == nil:
		Log(ErrorLevel, logRequireNotNil, "control block")
		return ErrIllegalArgument
	case api == nil:
		Log(ErrorLevel, logRequireNotNil, "provider")
		return ErrIllegalArgument
	case length <= 0:
		return ErrIllegalArgument
	}
	*b = ControlBlock{
		api:          api,
		data:         data,
		refs:         1,
		releaseData:  releaseData,
		releaseBlock: releaseBlock,
	}
	*s = Stream{
		block: b,
		end:   length,
	}
	return nil
}
