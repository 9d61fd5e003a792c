package ustream

import "io"

// Provider over a contiguous byte buffer supplied by the caller
type linearProvider struct {
	Base
}

var linearAPI Provider = linearProvider{}

func (linearProvider) Read(s *Stream, p []byte) (int, error) {
	buf, ok := s.block.data.([]byte)
	if !ok {
		Log(ErrorLevel, logWrongType)
		return 0, ErrIllegalArgument
	}
	if len(p) == 0 {
		return 0, ErrIllegalArgument
	}
	if s.remaining() == 0 {
		return 0, io.EOF
	}
	n := copy(p, buf[s.innerCurrent:s.end])
	s.innerCurrent += int64(n)
	return n, nil
}

// Init initializes s as a stream over buf. The buffer is borrowed and must
// not be modified afterwards; releaseBuf runs when the last stream over it
// is disposed, then releaseBlock returns the control block storage. Either
// callback may be nil. Storage for s and b is supplied by the caller.
func Init(s *Stream, b *ControlBlock, buf []byte,
	releaseBuf, releaseBlock ReleaseFunc,
) error {
	if len(buf) == 0 {
		Log(ErrorLevel, logRequireNotNil, "buffer")
		return ErrIllegalArgument
	}
	return InitProvider(s, b, linearAPI, buf, int64(len(buf)), releaseBuf,
		releaseBlock)
}

// FromBytes creates a stream over buf, allocating the stream and control
// block internally. The buffer is borrowed and must not be modified
// afterwards.
func FromBytes(buf []byte) (*Stream, error) {
	s := new(Stream)
	err := Init(s, new(ControlBlock), buf, nil, nil)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FromString creates a stream over the contents of str
func FromString(str string) (*Stream, error) {
	return FromBytes([]byte(str))
}

// FromReader drains r and creates a stream over the read content. Fails with
// ErrIllegalArgument, if r produces no bytes.
func FromReader(r io.Reader) (s *Stream, err error) {
	var (
		buf []byte
		m   int
		arr [512]byte
	)
	for {
		m, err = r.Read(arr[:])
		buf = append(buf, arr[:m]...)
		switch err {
		case nil:
		case io.EOF:
			return FromBytes(buf)
		default:
			return nil, err
		}
	}
}
