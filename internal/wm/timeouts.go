package wm

// clock is the Store's own running wall-clock resource (§3 Resources:
// "Time"), advanced once per tick by the scheduler's PreUpdate phase.
// Timeouts are compared against it rather than against a tick count, so
// their duration is independent of tick rate.
func (s *Store) Clock() float64 { return s.clockSeconds }

// AdvanceClock adds dtSeconds to the running clock.
func (s *Store) AdvanceClock(dtSeconds float64) { s.clockSeconds += dtSeconds }

// SetTimeout attaches a self-expiring deadline to id, firing
// afterSeconds from the current clock reading.
func (s *Store) SetTimeout(id EntityID, kind TimeoutKind, afterSeconds float64, message string) {
	s.timeout.Set(id, TimeoutMarker{Kind: kind, DeadlineSeconds: s.clockSeconds + afterSeconds, Message: message})
}

// expiredTimeoutEntry pairs an entity with its elapsed TimeoutMarker.
type expiredTimeoutEntry struct {
	ID     EntityID
	Marker TimeoutMarker
}

// ExpiredTimeouts returns every (id, marker) pair whose deadline has
// elapsed as of the current clock reading, in no particular order. The
// caller (the scheduler's timeout-ticking system, §5) is responsible
// for acting on each and then despawning or clearing it.
func (s *Store) ExpiredTimeouts() []expiredTimeoutEntry {
	var out []expiredTimeoutEntry
	s.timeout.Each(func(id EntityID, m TimeoutMarker) {
		if s.clockSeconds >= m.DeadlineSeconds {
			out = append(out, expiredTimeoutEntry{id, m})
		}
	})
	return out
}

// ClearTimeout removes a timeout without despawning its entity (used
// when the awaited condition already resolved, e.g. an orphaned
// workspace whose display came back before its deadline).
func (s *Store) ClearTimeout(id EntityID) {
	s.timeout.Remove(id)
}

// ClearFreshMarkers drops FreshMarker from every window, run once per
// tick in Update after systems that care about "spawned this tick"
// have had their chance to see it (§5 Update: "fresh-marker cleanup").
func (s *Store) ClearFreshMarkers() {
	var ids []EntityID
	s.freshMarker.Each(func(id EntityID, _ struct{}) { ids = append(ids, id) })
	for _, id := range ids {
		s.freshMarker.Remove(id)
	}
}
