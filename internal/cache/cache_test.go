package cache_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/monoverse/monoverse/internal/cache"
)

type request struct {
	Project string
	Branch  string
}

func TestNilCacheIsAlwaysMiss(t *testing.T) {
	var c *cache.Cache
	_, ok := c.Get("head1", request{Project: "a"})
	assert.Assert(t, !ok)
	c.Put("head1", request{Project: "a"}, "value") // must not panic
}

func TestPutThenGetHit(t *testing.T) {
	c := cache.New()
	req := request{Project: "billing", Branch: "main"}
	c.Put("head1", req, "1.2.0")

	v, ok := c.Get("head1", req)
	assert.Assert(t, ok)
	assert.Equal(t, v, "1.2.0")
}

func TestDifferentRequestsDoNotCollide(t *testing.T) {
	c := cache.New()
	c.Put("head1", request{Project: "a"}, "va")
	c.Put("head1", request{Project: "b"}, "vb")

	va, ok := c.Get("head1", request{Project: "a"})
	assert.Assert(t, ok)
	assert.Equal(t, va, "va")

	vb, ok := c.Get("head1", request{Project: "b"})
	assert.Assert(t, ok)
	assert.Equal(t, vb, "vb")
}

func TestHeadChangeInvalidatesPriorEntries(t *testing.T) {
	c := cache.New()
	req := request{Project: "billing"}
	c.Put("head1", req, "1.0.0")

	_, ok := c.Get("head2", req)
	assert.Assert(t, !ok)

	c.Put("head2", req, "1.1.0")
	_, ok = c.Get("head1", req)
	assert.Assert(t, !ok)

	v, ok := c.Get("head2", req)
	assert.Assert(t, ok)
	assert.Equal(t, v, "1.1.0")
}

func TestInvalidateClearsEverything(t *testing.T) {
	c := cache.New()
	req := request{Project: "billing"}
	c.Put("head1", req, "1.0.0")
	c.Invalidate()

	_, ok := c.Get("head1", req)
	assert.Assert(t, !ok)
}
