package benchmarks

import (
	"crypto/rand"
	"fmt"

	uuid "github.com/satori/go.uuid"
)

// Maintains a version counter to invalidate remotely cached pages.
// Common part of the redis and memcached streamer implementations.
type versionedStreamer struct {
	// Version counter for the content to use as part of the cache key
	contentVersion uint64

	// Unique UUID each time to make sure caches don't overlap between
	// benchmarks
	benchmarkID uuid.UUID
}

func (v *versionedStreamer) init() (err error) {
	_, err = rand.Read(v.benchmarkID[:])
	return
}

func (v *versionedStreamer) resetContent() {
	v.contentVersion++
}

// Retrieve full page fetch key as string
func (v *versionedStreamer) getPageKey() string {
	return fmt.Sprintf("page:%s:%d", v.benchmarkID, v.contentVersion)
}
