// Package astcache implements a bounded LRU of parsed syntax trees with a
// disposal guarantee: the cache owns each tree exclusively for its
// lifetime, and the disposal hook runs exactly once per evicted or
// cleared entry.
package astcache

import (
	"container/list"
	"sync"
)

// Tree is the minimal surface astcache needs from a parsed syntax tree; the
// parser package supplies the concrete *tree_sitter.Tree wrapped to satisfy
// this interface, keeping astcache free of a tree-sitter import.
type Tree interface {
	Close()
}

type entry struct {
	key  string
	tree Tree
}

// Cache is a bounded LRU keyed by file path.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	disposed int // count of dispose calls, for test assertions
}

// New returns a Cache with the given capacity (default 50).
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 50
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached tree for path, promoting it to most-recently-used.
func (c *Cache) Get(path string) (Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[path]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).tree, true
}

// Set stores tree under path, evicting the least-recently-used entry (and
// disposing it) if the cache is at capacity. Setting over an existing key
// disposes the previous tree for that key first.
func (c *Cache) Set(path string, tree Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[path]; ok {
		old := el.Value.(*entry)
		if old.tree != tree {
			c.disposeLocked(old.tree)
		}
		old.tree = tree
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{key: path, tree: tree})
	c.items[path] = el

	for c.ll.Len() > c.capacity {
		c.evictOldestLocked()
	}
}

func (c *Cache) evictOldestLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	ent := el.Value.(*entry)
	delete(c.items, ent.key)
	c.disposeLocked(ent.tree)
}

func (c *Cache) disposeLocked(t Tree) {
	if t == nil {
		return
	}
	t.Close()
	c.disposed++
}

// Clear disposes every entry and empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.ll.Front(); el != nil; el = el.Next() {
		c.disposeLocked(el.Value.(*entry).tree)
	}
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// DisposedCount reports how many trees have been disposed (evictions + clears).
func (c *Cache) DisposedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
