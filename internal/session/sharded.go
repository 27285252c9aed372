package session

import (
	"hash/fnv"
	"sync"

	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/rs/zerolog"
)

var _ Table = (*ShardedTable)(nil)

// ShardedTable implements Table. The entries are spread over a
// power-of-two number of shards, each guarded by its own mutex, so
// traffic on unrelated connections never contends on one global lock.
type ShardedTable struct {
	log    zerolog.Logger
	shards []*shard
	mask   uint32
}

type shard struct {
	mu     sync.RWMutex
	tokens map[filterchain.ConnID]string
}

// NewShardedTable creates a table with shardCount shards, rounded up to
// the next power of two. A shardCount below one falls back to 16.
func NewShardedTable(shardCount int, log zerolog.Logger) *ShardedTable {
	if shardCount <= 0 {
		shardCount = 16
	}
	n := nextPowerOfTwo(uint32(shardCount))
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{tokens: make(map[filterchain.ConnID]string)}
	}
	return &ShardedTable{
		log:    log,
		shards: shards,
		mask:   n - 1,
	}
}

func (t *ShardedTable) shard(conn filterchain.ConnID) *shard {
	h := fnv.New32a()
	h.Write([]byte(conn))
	return t.shards[h.Sum32()&t.mask]
}

// Put registers or replaces the token for a connection.
func (t *ShardedTable) Put(conn filterchain.ConnID, token string) {
	sh := t.shard(conn)
	sh.mu.Lock()
	sh.tokens[conn] = token
	sh.mu.Unlock()
	t.
		log.
		Debug().
		Str("connection", string(conn)).
		Msg("session registered")
}

// Get looks up the token registered for a connection.
func (t *ShardedTable) Get(conn filterchain.ConnID) (string, bool) {
	sh := t.shard(conn)
	sh.mu.RLock()
	token, ok := sh.tokens[conn]
	sh.mu.RUnlock()
	return token, ok
}

// Remove deletes the entry for a connection, if any.
func (t *ShardedTable) Remove(conn filterchain.ConnID) {
	sh := t.shard(conn)
	sh.mu.Lock()
	delete(sh.tokens, conn)
	sh.mu.Unlock()
	t.
		log.
		Debug().
		Str("connection", string(conn)).
		Msg("session removed")
}

// Len returns the number of authenticated connections.
func (t *ShardedTable) Len() int {
	n := 0
	for _, sh := range t.shards {
		sh.mu.RLock()
		n += len(sh.tokens)
		sh.mu.RUnlock()
	}
	return n
}

// Connections returns the identities of all authenticated connections.
func (t *ShardedTable) Connections() []filterchain.ConnID {
	var conns []filterchain.ConnID
	for _, sh := range t.shards {
		sh.mu.RLock()
		for conn := range sh.tokens {
			conns = append(conns, conn)
		}
		sh.mu.RUnlock()
	}
	return conns
}

func nextPowerOfTwo(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}
