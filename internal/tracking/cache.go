package tracking

import (
	"slices"
	"strings"
	"sync"
)

// entry holds one tracked download. mu guards td and is held for the
// whole read-modify-write of a download id.
type entry struct {
	mu     sync.Mutex
	td     *TrackedDownload
	filled bool // guarded by cache.mu
}

// cache maps download ids to entries. The map lock only guards
// membership and renames; work on an entry happens under the entry's
// own lock so unrelated downloads never wait on each other.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	renamed map[string]string // old download id -> new download id
}

func newCache() *cache {
	return &cache{
		entries: make(map[string]*entry),
		renamed: make(map[string]string),
	}
}

// acquire returns the locked entry for id, creating an empty one if
// needed. The caller must call release.
func (c *cache) acquire(id string) *entry {
	for {
		c.mu.Lock()
		e, ok := c.entries[id]
		if !ok {
			e = &entry{}
			c.entries[id] = e
		}
		c.mu.Unlock()

		e.mu.Lock()
		c.mu.RLock()
		current := c.entries[id]
		c.mu.RUnlock()
		if current == e {
			return e
		}
		// Removed or re-keyed while we waited.
		e.mu.Unlock()
	}
}

// release unlocks e, dropping it from the map first if it holds nothing.
func (c *cache) release(id string, e *entry) {
	if e.td == nil {
		c.mu.Lock()
		if c.entries[id] == e {
			delete(c.entries, id)
		}
		c.mu.Unlock()
	}
	e.mu.Unlock()
}

// set stores td in the locked entry e.
func (c *cache) set(e *entry, td *TrackedDownload) {
	e.td = td
	c.mu.Lock()
	e.filled = td != nil
	c.mu.Unlock()
}

// rekey moves the locked entry e from oldID to newID and remembers the
// rename. An entry already stored under newID is replaced.
func (c *cache) rekey(e *entry, oldID, newID string) {
	if oldID == newID {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[oldID] == e {
		delete(c.entries, oldID)
	}
	c.entries[newID] = e
	c.renamed[oldID] = newID
	delete(c.renamed, newID)
}

// renamedTo returns the id the download once tracked under id was
// renamed to, following chained renames, or "".
func (c *cache) renamedTo(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	target := ""
	for range len(c.renamed) {
		next, ok := c.renamed[id]
		if !ok {
			break
		}
		target, id = next, next
	}
	return target
}

// resolveIDs returns the set of ids tracked for the reported ids, adding
// the renamed id of each reported old id. A rename is forgotten once
// neither of its ids is reported.
func (c *cache) resolveIDs(reported []string) map[string]bool {
	current := make(map[string]bool, len(reported))
	for _, id := range reported {
		current[id] = true
	}
	for _, id := range reported {
		if target := c.renamedTo(id); target != "" {
			current[target] = true
		}
	}

	c.mu.Lock()
	for old, renamed := range c.renamed {
		if !current[old] && !current[renamed] {
			delete(c.renamed, old)
		}
	}
	c.mu.Unlock()
	return current
}

// find returns a copy of the download stored under id, or nil.
func (c *cache) find(id string) *TrackedDownload {
	c.mu.RLock()
	e := c.entries[id]
	c.mu.RUnlock()
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.td == nil || e.td.DownloadID != id {
		return nil
	}
	return e.td.Clone()
}

// keys returns the current ids in sorted order.
func (c *cache) keys() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// list returns copies of every tracked download, sorted by id.
func (c *cache) list() []*TrackedDownload {
	var out []*TrackedDownload
	for _, id := range c.keys() {
		if td := c.find(id); td != nil {
			out = append(out, td)
		}
	}
	return out
}

// update runs fn on every tracked download under its entry lock and
// returns copies of those fn reported as changed.
func (c *cache) update(fn func(td *TrackedDownload) bool) []*TrackedDownload {
	var changed []*TrackedDownload
	for _, id := range c.keys() {
		e := c.acquire(id)
		if e.td != nil && fn(e.td) {
			changed = append(changed, e.td.Clone())
		}
		c.release(id, e)
	}
	return changed
}

// remove deletes ids and returns copies of the downloads that existed.
func (c *cache) remove(ids ...string) []*TrackedDownload {
	var removed []*TrackedDownload
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		e := c.acquire(id)
		if e.td != nil {
			removed = append(removed, e.td.Clone())
		}
		c.set(e, nil)
		c.release(id, e)
	}
	return removed
}

// size counts stored downloads, skipping entries still being matched
// for the first time.
func (c *cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if e.filled {
			n++
		}
	}
	return n
}
