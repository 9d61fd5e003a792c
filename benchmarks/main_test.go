package benchmarks

import (
	"testing"
)

// Ways of assembling and serving a page out of three cached fragments
type streamer interface {
	// Run any required initialization procedures
	init() error

	// Force the next page assembly to regenerate the middle fragment
	resetContent()

	// Produce the fully assembled page
	getPage() ([]byte, error)
}

// Runs benchmark suite on `s`
func runBenchmark(b *testing.B, s streamer) {
	err := s.init()
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if i != 0 && i%10 == 0 {
			s.resetContent()
		}
		_, err = s.getPage()
		if err != nil {
			b.Fatal(err)
		}
	}
}
