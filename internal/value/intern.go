package value

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// internCapacity bounds the short-string intern pool the way the
// teacher bounds its converted-bytecode cache in
// lfvm/converter.go — a fixed-capacity LRU rather than an unbounded
// map, so a program that manufactures many distinct short strings
// cannot grow the pool without bound.
const internCapacity = 50_000

// maxInternedLen is the cutoff below which a Str literal is eligible
// for interning (spec §4.1: "Interned when short").
const maxInternedLen = 64

var (
	internPool *lru.Cache[string, *string]
	internOnce sync.Once
	internMu   sync.Mutex
)

func internCache() *lru.Cache[string, *string] {
	internOnce.Do(func() {
		c, err := lru.New[string, *string](internCapacity)
		if err != nil {
			panic(fmt.Errorf("lattice: failed to create intern cache: %v", err))
		}
		internPool = c
	})
	return internPool
}

// intern returns a shared *string for s when s is short enough to pool,
// so that repeated literal strings from a chunk's constant pool share
// storage (spec §4.1). Equality still compares string contents, not
// pointers.
func intern(s string) *string {
	if len(s) > maxInternedLen {
		cp := s
		return &cp
	}
	cache := internCache()
	internMu.Lock()
	defer internMu.Unlock()
	if p, ok := cache.Get(s); ok {
		return p
	}
	cp := s
	cache.Add(s, &cp)
	return &cp
}

// ClearInternPool purges the intern pool. Exposed for tests that need
// deterministic pool state between runs.
func ClearInternPool() {
	internCache().Purge()
}
