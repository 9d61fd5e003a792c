package benchmarks

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Generate size bytes of random hex data and sleep for dur to simulate the
// time cost of rendering a page fragment
func generateFragment(size int, dur time.Duration) (out []byte, err error) {
	raw := make([]byte, size/2)
	_, err = rand.Read(raw)
	if err != nil {
		return
	}
	out = make([]byte, size)
	hex.Encode(out, raw)

	time.Sleep(dur)
	return
}

// Generate a fresh mock header portion of the sample page
func generateHeader() ([]byte, error) {
	return generateFragment(1<<10, time.Millisecond)
}

// Generate a fresh mock content portion of the sample page
func generateMiddle() ([]byte, error) {
	return generateFragment(4<<10, time.Millisecond*50)
}

// Generate a fresh mock footer portion of the sample page
func generateFooter() ([]byte, error) {
	return generateFragment(1<<10, time.Millisecond)
}

// Generate a fresh version of the entire page
func generatePage() (out []byte, err error) {
	header, err := generateHeader()
	if err != nil {
		return
	}
	middle, err := generateMiddle()
	if err != nil {
		return
	}
	footer, err := generateFooter()
	if err != nil {
		return
	}
	return bytes.Join([][]byte{header, middle, footer}, nil), nil
}
