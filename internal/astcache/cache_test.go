package astcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/astcache"
)

// fakeTree counts Close calls so tests can assert the disposal contract:
// exactly once per evicted or cleared entry.
type fakeTree struct {
	closed int
}

func (f *fakeTree) Close() { f.closed++ }

func TestGetReturnsCachedTree(t *testing.T) {
	c := astcache.New(2)
	tree := &fakeTree{}
	c.Set("a.go", tree)

	got, ok := c.Get("a.go")
	require.True(t, ok)
	assert.Same(t, astcache.Tree(tree), got)

	_, ok = c.Get("missing.go")
	assert.False(t, ok)
}

func TestEvictionDisposesOldestExactlyOnce(t *testing.T) {
	c := astcache.New(2)
	first := &fakeTree{}
	c.Set("a.go", first)
	c.Set("b.go", &fakeTree{})
	c.Set("c.go", &fakeTree{}) // evicts a.go

	assert.Equal(t, 1, first.closed)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.DisposedCount())

	_, ok := c.Get("a.go")
	assert.False(t, ok)
}

func TestGetPromotesRecentlyUsed(t *testing.T) {
	c := astcache.New(2)
	a := &fakeTree{}
	b := &fakeTree{}
	c.Set("a.go", a)
	c.Set("b.go", b)

	_, ok := c.Get("a.go") // promote a.go; b.go is now the oldest
	require.True(t, ok)

	c.Set("c.go", &fakeTree{})
	assert.Equal(t, 1, b.closed)
	assert.Zero(t, a.closed)
}

func TestSetOverExistingKeyDisposesPrevious(t *testing.T) {
	c := astcache.New(2)
	old := &fakeTree{}
	c.Set("a.go", old)

	replacement := &fakeTree{}
	c.Set("a.go", replacement)

	assert.Equal(t, 1, old.closed)
	assert.Zero(t, replacement.closed)
	assert.Equal(t, 1, c.Len())
}

func TestClearDisposesEverything(t *testing.T) {
	c := astcache.New(4)
	trees := []*fakeTree{{}, {}, {}}
	c.Set("a.go", trees[0])
	c.Set("b.go", trees[1])
	c.Set("c.go", trees[2])

	c.Clear()
	for i, tree := range trees {
		assert.Equal(t, 1, tree.closed, "tree %d", i)
	}
	assert.Zero(t, c.Len())
	assert.Equal(t, 3, c.DisposedCount())
}
