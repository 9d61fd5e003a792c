package ustream

import (
	"io"
	"sync"
	"sync/atomic"
)

// Media of a concatenated stream: two child streams cloned from the inputs
// at concat time, exposed as one seamless byte sequence. The first child
// covers composite inner positions [0, firstEnd), the second the rest.
//
// The children are shared by every stream cloned from the composite, so
// their cursors are only ever moved under mu. firstRefs and secondRefs count
// how many live composite streams still have a window intersecting the
// respective child; a child is disposed as soon as its count drops to zero.
type multiData struct {
	first, second Stream

	// Composite inner position where the second child begins
	firstEnd int64

	firstRefs, secondRefs int32

	// Serializes reads and cursor routing across sibling composite streams.
	// Only the children's own operations run while it is held (a composite
	// child takes its own lock), and no release callback does.
	mu sync.Mutex
}

type multiProvider struct{}

var multiAPI Provider = multiProvider{}

// Concat initializes dst as a stream reading a's remaining content followed
// by b's remaining content. Both inputs are cloned, so disposing or
// advancing them afterwards does not affect dst. Storage for dst and block
// is supplied by the caller; releaseBlock returns the block storage once the
// last stream over the concatenation is disposed and may be nil.
//
// On failure the inputs are left untouched and nothing stays allocated.
func Concat(dst *Stream, a, b *Stream, block *ControlBlock,
	releaseBlock ReleaseFunc,
) error {
	switch {
	case dst == nil:
		Log(ErrorLevel, logRequireNotNil, "stream")
		return ErrIllegalArgument
	case block == nil:
		Log(ErrorLevel, logRequireNotNil, "control block")
		return ErrIllegalArgument
	}

	m := new(multiData)
	err := a.Clone(&m.first, 0)
	if err != nil {
		return err
	}
	firstLen := m.first.remaining()
	err = b.Clone(&m.second, firstLen)
	if err != nil {
		m.first.Dispose()
		return err
	}
	end := firstLen + m.second.remaining()

	m.firstEnd = firstLen
	if firstLen > 0 {
		m.firstRefs = 1
	} else {
		m.first.Dispose()
	}
	if end > 0 {
		m.secondRefs = 1
	} else {
		m.second.Dispose()
	}

	*block = ControlBlock{
		api:          multiAPI,
		data:         m,
		refs:         1,
		releaseBlock: releaseBlock,
	}
	*dst = Stream{
		block: block,
		end:   end,
	}
	return nil
}

func (multiProvider) media(s *Stream) (*multiData, error) {
	m, ok := s.block.data.(*multiData)
	if !ok {
		Log(ErrorLevel, logWrongType)
		return nil, ErrIllegalArgument
	}
	return m, nil
}

// Point the child cursors at the composite inner position. The cursor in
// range gets the position; an exhausted first child parks at its end and a
// not-yet-reached second child returns to its start. Requires m.mu.
func (multiProvider) routeChildren(m *multiData, inner int64) error {
	if atomic.LoadInt32(&m.firstRefs) > 0 {
		pos := inner
		if pos > m.firstEnd {
			pos = m.firstEnd
		}
		err := m.first.SetPosition(pos)
		if err != nil {
			return err
		}
	}
	if atomic.LoadInt32(&m.secondRefs) > 0 {
		if inner >= m.firstEnd {
			err := m.second.SetPosition(inner)
			if err != nil {
				return err
			}
		} else if m.second.innerFirstValid != m.second.end {
			err := m.second.Reset()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (p multiProvider) SetPosition(s *Stream, pos int64) error {
	m, err := p.media(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := s.innerCurrent
	err = s.seekInner(pos)
	if err != nil {
		return err
	}
	err = p.routeChildren(m, s.innerCurrent)
	if err != nil {
		s.innerCurrent = prev
	}
	return err
}

func (p multiProvider) Reset(s *Stream) error {
	if s.innerFirstValid == s.end {
		return ErrNoSuchElement
	}
	return p.SetPosition(s, s.innerFirstValid+s.offsetDiff)
}

func (p multiProvider) Read(s *Stream, buf []byte) (int, error) {
	m, err := p.media(s)
	if err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, ErrIllegalArgument
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pos := s.innerCurrent
	if pos >= s.end {
		return 0, io.EOF
	}

	// At most one child produces bytes per call. Short fills from the first
	// child are surfaced as is; the next call moves on to the second.
	if pos < m.firstEnd {
		err = m.first.SetPosition(pos)
		if err != nil {
			return 0, err
		}
		var n int
		n, err = m.first.Read(buf)
		if err == nil {
			s.innerCurrent += int64(n)
			return n, nil
		}
		if err != io.EOF {
			return 0, err
		}
		// First child exhausted right at the boundary; continue below
	}
	err = m.second.SetPosition(pos)
	if err != nil {
		return 0, err
	}
	n, err := m.second.Read(buf)
	if err != nil {
		return 0, err
	}
	s.innerCurrent += int64(n)
	return n, nil
}

func (multiProvider) RemainingSize(s *Stream) (int64, error) {
	return s.remaining(), nil
}

func (multiProvider) Position(s *Stream) (int64, error) {
	return s.position(), nil
}

// Drop the stream's hold on children its window no longer intersects,
// disposing a child once no composite stream needs it. hadFirst/hadSecond
// capture the window before it moved. Never called with m.mu held, as
// disposing a child runs its release callbacks.
func (multiProvider) retire(m *multiData, s *Stream, hadFirst, hadSecond bool) {
	if hadFirst && s.innerFirstValid >= m.firstEnd {
		if atomic.AddInt32(&m.firstRefs, -1) == 0 {
			m.first.Dispose()
		}
	}
	if hadSecond && s.innerFirstValid >= s.end {
		if atomic.AddInt32(&m.secondRefs, -1) == 0 {
			m.second.Dispose()
		}
	}
}

func (p multiProvider) Release(s *Stream, pos int64) error {
	m, err := p.media(s)
	if err != nil {
		return err
	}
	hadFirst := s.innerFirstValid < m.firstEnd
	hadSecond := s.innerFirstValid < s.end
	err = s.releaseUpTo(pos)
	if err != nil {
		return err
	}
	p.retire(m, s, hadFirst, hadSecond)
	return nil
}

func (p multiProvider) Clone(dst, src *Stream, offset int64) error {
	m, err := p.media(src)
	if err != nil {
		return err
	}
	err = src.cloneInto(dst, offset)
	if err != nil {
		return err
	}
	// The clone's window opens at src's cursor; count it against every child
	// it still intersects. src spans at least as much, so neither count can
	// be resurrected from zero here.
	if dst.innerFirstValid < m.firstEnd {
		atomic.AddInt32(&m.firstRefs, 1)
	}
	if dst.innerFirstValid < dst.end {
		atomic.AddInt32(&m.secondRefs, 1)
	}
	return nil
}

func (p multiProvider) Dispose(s *Stream) error {
	m, err := p.media(s)
	if err != nil {
		return err
	}
	hadFirst := s.innerFirstValid < m.firstEnd
	hadSecond := s.innerFirstValid < s.end
	s.innerFirstValid = s.end
	p.retire(m, s, hadFirst, hadSecond)
	return s.dispose()
}
