package ustream

import (
	"encoding/base64"
	"io"
)

// Provider that exposes a binary buffer as its base64 encoding, produced on
// the fly. All positions are in the produced (encoded) coordinate space, so
// a read consumes fewer media bytes than it returns. Every four produced
// bytes map to one three-byte group of the source.
type base64Provider struct {
	Base
}

var base64API Provider = base64Provider{}

func (base64Provider) Read(s *Stream, p []byte) (int, error) {
	src, ok := s.block.data.([]byte)
	if !ok {
		Log(ErrorLevel, logWrongType)
		return 0, ErrIllegalArgument
	}
	if len(p) == 0 {
		return 0, ErrIllegalArgument
	}
	rem := s.remaining()
	if rem == 0 {
		return 0, io.EOF
	}
	want := int64(len(p))
	if want > rem {
		want = rem
	}

	// Encode the source groups covering the produced range and copy out the
	// requested window
	var (
		enc   = base64.StdEncoding
		skip  = s.innerCurrent % 4
		srcLo = s.innerCurrent / 4 * 3
		srcHi = srcLo + (skip+want+3)/4*3
	)
	if srcHi > int64(len(src)) {
		srcHi = int64(len(src))
	}
	out := make([]byte, enc.EncodedLen(int(srcHi-srcLo)))
	enc.Encode(out, src[srcLo:srcHi])
	n := copy(p, out[skip:skip+want])
	s.innerCurrent += int64(n)
	return n, nil
}

// InitBase64 initializes s as a stream producing the base64 encoding of src.
// The stream's length is the encoded length; src is borrowed and must not be
// modified afterwards. The release callbacks behave as in Init.
func InitBase64(s *Stream, b *ControlBlock, src []byte,
	releaseSrc, releaseBlock ReleaseFunc,
) error {
	if len(src) == 0 {
		Log(ErrorLevel, logRequireNotNil, "buffer")
		return ErrIllegalArgument
	}
	return InitProvider(s, b, base64API, src,
		int64(base64.StdEncoding.EncodedLen(len(src))), releaseSrc,
		releaseBlock)
}
