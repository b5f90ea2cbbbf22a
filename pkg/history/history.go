// Package history provides an in-memory session history that stands in for
// the browser's address bar.
//
// A [History] holds a stack of location strings with a cursor. Push and
// Replace change the current entry the way pushState and replaceState do;
// Back and Forward move the cursor like the browser buttons; Navigate is a
// full document load that starts a fresh history. Every change notifies
// subscribers synchronously on the caller's goroutine, so a subscriber that
// writes the location from inside a notification sees its own echo, exactly
// as a page listening for hash changes does.
package history

import (
	"slices"
	"sync"
)

// Kind says what caused a location change.
type Kind int

// Change kinds.
const (
	KindPush Kind = iota
	KindReplace
	KindTraverse // back or forward
	KindLoad     // full navigation
)

func (k Kind) String() string {
	switch k {
	case KindPush:
		return "push"
	case KindReplace:
		return "replace"
	case KindTraverse:
		return "traverse"
	case KindLoad:
		return "load"
	}
	return "unknown"
}

// Change describes one location change.
type Change struct {
	Kind     Kind
	Location string
}

// Listener receives location changes.
type Listener func(Change)

// History is an in-memory session history.
//
// The mutex only guards the entry stack; listeners run without it held so
// they may call back into the history.
type History struct {
	mu        sync.Mutex
	entries   []string
	cursor    int
	loads     int
	listeners map[int]Listener
	nextID    int
}

// New creates a history whose only entry is initial.
func New(initial string) *History {
	return &History{
		entries:   []string{initial},
		loads:     1,
		listeners: make(map[int]Listener),
	}
}

// Current returns the current location.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Push adds a new entry after the current one, dropping any forward entries.
func (h *History) Push(loc string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.cursor+1], loc)
	h.cursor++
	h.mu.Unlock()
	h.notify(Change{Kind: KindPush, Location: loc})
}

// Replace overwrites the current entry.
func (h *History) Replace(loc string) {
	h.mu.Lock()
	h.entries[h.cursor] = loc
	h.mu.Unlock()
	h.notify(Change{Kind: KindReplace, Location: loc})
}

// Navigate performs a full document load of target. The new document starts
// with a single history entry, so nothing of the previous location remains.
func (h *History) Navigate(target string) {
	h.mu.Lock()
	h.entries = []string{target}
	h.cursor = 0
	h.loads++
	h.mu.Unlock()
	h.notify(Change{Kind: KindLoad, Location: target})
}

// Back moves to the previous entry. It reports false at the oldest entry.
func (h *History) Back() bool {
	return h.traverse(-1)
}

// Forward moves to the next entry. It reports false at the newest entry.
func (h *History) Forward() bool {
	return h.traverse(1)
}

func (h *History) traverse(delta int) bool {
	h.mu.Lock()
	next := h.cursor + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.cursor = next
	loc := h.entries[next]
	h.mu.Unlock()
	h.notify(Change{Kind: KindTraverse, Location: loc})
	return true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Loads returns how many documents have been loaded, including the first.
func (h *History) Loads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loads
}

// Subscribe registers fn for every change and returns a function that
// removes it.
func (h *History) Subscribe(fn Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *History) notify(c Change) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	fns := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, h.listeners[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
