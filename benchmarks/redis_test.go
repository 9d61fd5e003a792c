package benchmarks

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/bakape/ustream"
	ustredis "github.com/bakape/ustream/redis"
	"github.com/go-redis/redis/v8"
)

// Caches the whole page in redis and serves it back through the windowed
// stream adapter
type redisStreamer struct {
	versionedStreamer

	// Connection to redis
	conn *redis.Client
}

func (m *redisStreamer) init() (err error) {
	err = m.versionedStreamer.init()
	if err != nil {
		return
	}

	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		addr = "localhost:6379"
	}
	m.conn = redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return
}

func (m *redisStreamer) getPage() (out []byte, err error) {
	k := m.getPageKey()
	s, err := ustredis.New(ustredis.Options{
		Client: m.conn,
		Key:    k,
	})
	switch err {
	case nil:
		var w bytes.Buffer
		_, err = s.WriteTo(&w)
		if err != nil {
			return
		}
		err = s.Dispose()
		out = w.Bytes()
	case ustream.ErrNoSuchElement:
		out, err = generatePage()
		if err != nil {
			return
		}
		err = m.conn.Set(context.Background(), k, string(out), 0).Err()
	}
	return
}

// Benchmark redis with whole page caching, read back as a stream
func BenchmarkRedisStream(b *testing.B) {
	runBenchmark(b, new(redisStreamer))
}
