package idgen

import "strings"

// Allocator hands out identifiers of one scheme while a request inserts and
// deletes records, so that every insert sees the ids of the earlier ones
// without reloading them from the store. It is not safe for concurrent use.
type Allocator struct {
	scheme Scheme
	ids    map[string]struct{}

	maxPrefix string
	maxMatch  string
	stale     bool
}

// NewAllocator seeds the allocator with the ids currently stored.
func NewAllocator(scheme Scheme, existing []string) *Allocator {
	a := &Allocator{
		scheme: scheme,
		ids:    make(map[string]struct{}, len(existing)),
	}
	for _, id := range existing {
		a.ids[id] = struct{}{}
	}
	a.stale = true
	return a
}

// Peek returns the next identifier without reserving it.
func (a *Allocator) Peek() string {
	a.refresh()
	return a.scheme.pick(a.maxPrefix, a.maxMatch)
}

// Next returns the next identifier and records it as used.
func (a *Allocator) Next() string {
	id := a.Peek()
	a.Claim(id)
	return id
}

// Claim records an id that was inserted with an explicit value.
func (a *Allocator) Claim(id string) {
	if _, ok := a.ids[id]; ok {
		return
	}
	a.ids[id] = struct{}{}
	if a.stale {
		return
	}
	if strings.HasPrefix(id, a.scheme.Prefix) && id > a.maxPrefix {
		a.maxPrefix = id
	}
	if a.scheme.Matches(id) && id > a.maxMatch {
		a.maxMatch = id
	}
}

// Release forgets a deleted id so it may be handed out again.
func (a *Allocator) Release(id string) {
	if _, ok := a.ids[id]; !ok {
		return
	}
	delete(a.ids, id)
	if id == a.maxPrefix || id == a.maxMatch {
		a.stale = true
	}
}

// Has reports whether id is currently in use.
func (a *Allocator) Has(id string) bool {
	_, ok := a.ids[id]
	return ok
}

func (a *Allocator) refresh() {
	if !a.stale {
		return
	}
	a.maxPrefix, a.maxMatch = "", ""
	for id := range a.ids {
		if strings.HasPrefix(id, a.scheme.Prefix) && id > a.maxPrefix {
			a.maxPrefix = id
		}
		if a.scheme.Matches(id) && id > a.maxMatch {
			a.maxMatch = id
		}
	}
	a.stale = false
}
