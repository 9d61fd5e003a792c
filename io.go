package ustream

import "io"

// Reader adapts a Stream to io.Reader. The stream stays owned by the caller
// and is not disposed when the reader is done; io semantics apply, so a
// zero-byte read returns (0, nil) instead of ErrIllegalArgument.
type Reader struct {
	s *Stream
}

// NewReader creates an io.Reader over the remaining content of s
func NewReader(s *Stream) *Reader {
	return &Reader{s}
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return r.s.Read(p)
}

// WriteTo writes the remaining content of the stream to w, advancing the
// cursor to the end. Implements io.WriterTo.
func (s *Stream) WriteTo(w io.Writer) (n int64, err error) {
	var (
		m   int
		arr [512]byte
	)
	for {
		m, err = s.Read(arr[:])
		if m > 0 {
			written, err2 := w.Write(arr[:m])
			n += int64(written)
			if err2 != nil {
				return n, err2
			}
		}
		switch err {
		case nil:
		case io.EOF:
			return n, nil
		default:
			return n, err
		}
	}
}
