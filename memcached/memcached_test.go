package memcached

import (
	"bytes"
	"os"
	"testing"

	"github.com/bakape/ustream"
	"github.com/bradfitz/gomemcache/memcache"
)

// Connect to the test server or skip, if none is reachable
func dial(t *testing.T) *memcache.Client {
	t.Helper()

	addr := os.Getenv("MEMCACHED_ADDRESS")
	if addr == "" {
		addr = "localhost:11211"
	}
	c := memcache.New(addr)
	err := c.Set(&memcache.Item{
		Key:   "ustream:test:probe",
		Value: []byte("1"),
	})
	if err != nil {
		t.Skipf("memcached unavailable: %v", err)
	}
	return c
}

func TestStreamValue(t *testing.T) {
	c := dial(t)

	const (
		key     = "ustream:test:stream"
		content = "0123456789ABCDEFGHIJ"
	)
	err := c.Set(&memcache.Item{
		Key:   key,
		Value: []byte(content),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Delete(key)

	s, err := New(c, key)
	if err != nil {
		t.Fatal(err)
	}

	var w bytes.Buffer
	if _, err := s.WriteTo(&w); err != nil {
		t.Fatal(err)
	}
	if w.String() != content {
		t.Fatalf("content mismatch: %q", w.String())
	}

	// The value was materialized at open; positions behave like any linear
	// stream
	if err := s.SetPosition(10); err != nil {
		t.Fatal(err)
	}
	w.Reset()
	if _, err := s.WriteTo(&w); err != nil {
		t.Fatal(err)
	}
	if w.String() != content[10:] {
		t.Fatalf("content mismatch after seek: %q", w.String())
	}

	if err := s.Dispose(); err != nil {
		t.Fatal(err)
	}
}

func TestCacheMiss(t *testing.T) {
	c := dial(t)

	_, err := New(c, "ustream:test:missing")
	if err != ustream.ErrNoSuchElement {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, "key")
	if err != ustream.ErrIllegalArgument {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = New(memcache.New("localhost:11211"), "")
	if err != ustream.ErrIllegalArgument {
		t.Fatalf("unexpected error: %v", err)
	}
}
