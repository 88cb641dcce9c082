package manager

import (
	"encoding/binary"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"surrogated/internal/catalog"
	"surrogated/internal/invoke"
)

// outcomeCache keeps per-configuration outcomes by feature vector. Outcomes
// are deterministic for a vector, so entries never go stale while the
// registry is unchanged.
type outcomeCache struct {
	c *lru.Cache[string, map[catalog.Name]invoke.Outcome]
}

func newOutcomeCache(size int) *outcomeCache {
	c, err := lru.New[string, map[catalog.Name]invoke.Outcome](size)
	if err != nil {
		return nil
	}
	return &outcomeCache{c: c}
}

// vectorKey is exact: vectors that differ in any bit get different keys.
func vectorKey(v catalog.FeatureVector) string {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(x))
	}
	return string(b)
}

func (c *outcomeCache) get(v catalog.FeatureVector) (map[catalog.Name]invoke.Outcome, bool) {
	if c == nil {
		return nil, false
	}
	return c.c.Get(vectorKey(v))
}

// put stores outcomes unless one of them was cut short by cancellation.
func (c *outcomeCache) put(v catalog.FeatureVector, out map[catalog.Name]invoke.Outcome) {
	if c == nil {
		return
	}
	for _, o := range out {
		if o.Kind == invoke.KindCanceled {
			return
		}
	}
	c.c.Add(vectorKey(v), out)
}

func (c *outcomeCache) len() int {
	if c == nil {
		return 0
	}
	return c.c.Len()
}
