package engine

import "cachehouse/internal/store"

// watchTable implements spec.md §4.2: a per-connection set of watched keys
// plus a per-connection "watch violated" flag. Both side tables are keyed
// by connection id rather than attached to a dynamic per-connection object,
// per the "per-connection side tables" re-architecture note in spec.md §9.
type watchTable struct {
	sets      map[int64]map[store.Key]struct{}
	violated  map[int64]bool
}

func newWatchTable() *watchTable {
	return &watchTable{
		sets:     make(map[int64]map[store.Key]struct{}),
		violated: make(map[int64]bool),
	}
}

// addWatch adds k to connId's watch set, creating the set if this is its
// first WATCH.
func (w *watchTable) addWatch(connID int64, k store.Key) {
	set, ok := w.sets[connID]
	if !ok {
		set = make(map[store.Key]struct{})
		w.sets[connID] = set
	}
	set[k] = struct{}{}
}

// clearWatch drops connId's entire watch set, leaving its violated flag
// untouched — callers that also need to clear the flag call clearViolated
// explicitly, per the clearing asymmetry documented in SPEC_FULL.md §12.
func (w *watchTable) clearWatch(connID int64) {
	delete(w.sets, connID)
}

// clearViolated resets connId's violated flag.
func (w *watchTable) clearViolated(connID int64) {
	delete(w.violated, connID)
}

// isViolated reports whether connId's watch-violated flag is set.
func (w *watchTable) isViolated(connID int64) bool {
	return w.violated[connID]
}

// noteWrite flags connId's own violated bit if k is in connId's own
// current watch set. The reference implementation checks only the writing
// connection's own watches, never any other connection's — see
// SPEC_FULL.md §12 for the empirically-traced reasoning this is kept
// literally rather than "fixed" into cross-connection detection.
func (w *watchTable) noteWrite(connID int64, k store.Key) {
	set, ok := w.sets[connID]
	if !ok {
		return
	}
	if _, watched := set[k]; watched {
		w.violated[connID] = true
	}
}

// forget drops all watch-table state for a disconnecting connection.
func (w *watchTable) forget(connID int64) {
	delete(w.sets, connID)
	delete(w.violated, connID)
}
