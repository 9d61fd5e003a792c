// Package memcached exposes a memcached value as a stream. memcached has no
// ranged reads, so the value is fetched whole when the stream is opened and
// its storage is dropped once the last stream over it is disposed.
package memcached

import (
	"fmt"

	"github.com/bakape/ustream"
	"github.com/bradfitz/gomemcache/memcache"
)

// New opens a read-only stream over the value stored at key. Fails with
// ErrNoSuchElement on a cache miss.
func New(conn *memcache.Client, key string) (*ustream.Stream, error) {
	if conn == nil || key == "" {
		return nil, ustream.ErrIllegalArgument
	}

	item, err := conn.Get(key)
	switch err {
	case nil:
	case memcache.ErrCacheMiss:
		return nil, ustream.ErrNoSuchElement
	default:
		return nil, fmt.Errorf("%w: %v", ustream.ErrSystem, err)
	}
	if len(item.Value) == 0 {
		return nil, ustream.ErrNoSuchElement
	}

	s := new(ustream.Stream)
	err = ustream.Init(s, new(ustream.ControlBlock), item.Value, nil, nil)
	if err != nil {
		return nil, err
	}
	return s, nil
}
