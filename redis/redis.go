// Package redis streams a Redis string value without materializing it in
// memory. The value's length is read once with STRLEN; reads fetch bounded
// windows with GETRANGE on demand.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bakape/ustream"
	"github.com/go-redis/redis/v8"
)

// Bytes fetched per GETRANGE round trip
const windowSize = 4096

// Options for opening a stream over a Redis string value
type Options struct {
	// Connection to use
	Client *redis.Client

	// Key of the string value to stream
	Key string

	// Context for all commands issued by the stream.
	// Defaults to context.Background().
	Ctx context.Context
}

// Provider-private handle: connection parameters plus the most recently
// fetched window
type media struct {
	Options
	winStart int64
	win      []byte
}

type provider struct {
	ustream.Base
}

var api ustream.Provider = provider{}

func (provider) Read(s *ustream.Stream, p []byte) (int, error) {
	m, ok := s.Media().(*media)
	if !ok {
		return 0, ustream.ErrIllegalArgument
	}
	if len(p) == 0 {
		return 0, ustream.ErrIllegalArgument
	}
	pos := s.InnerPosition()
	if pos == s.InnerEnd() {
		return 0, io.EOF
	}

	if pos < m.winStart || pos >= m.winStart+int64(len(m.win)) {
		hi := pos + windowSize - 1
		if end := s.InnerEnd() - 1; hi > end {
			hi = end
		}
		val, err := m.Client.GetRange(m.Ctx, m.Key, pos, hi).Result()
		if err != nil {
			return 0, wrapErr(err)
		}
		if val == "" {
			// Value shrank or vanished after the stream was opened
			return 0, fmt.Errorf("%w: key %q truncated", ustream.ErrSystem,
				m.Key)
		}
		m.winStart = pos
		m.win = []byte(val)
	}

	n := copy(p, m.win[pos-m.winStart:])
	s.Advance(int64(n))
	return n, nil
}

// New opens a read-only stream over the string value at opts.Key. Fails with
// ErrNoSuchElement, if the key does not exist or holds an empty value.
func New(opts Options) (*ustream.Stream, error) {
	if opts.Client == nil || opts.Key == "" {
		return nil, ustream.ErrIllegalArgument
	}
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}

	length, err := opts.Client.StrLen(opts.Ctx, opts.Key).Result()
	if err != nil {
		return nil, wrapErr(err)
	}
	if length == 0 {
		return nil, ustream.ErrNoSuchElement
	}

	s := new(ustream.Stream)
	err = ustream.InitProvider(s, new(ustream.ControlBlock), api,
		&media{Options: opts}, length, nil, nil)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Map driver failures onto the stream error taxonomy, keeping the cause
// inspectable with errors.Is/As
func wrapErr(err error) error {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ustream.ErrCancelled, err)
	}
	return fmt.Errorf("%w: %v", ustream.ErrSystem, err)
}
