package wm

import (
	"github.com/stripwm/stripwm/internal/layout"
	"github.com/stripwm/stripwm/internal/platform"
	"github.com/stripwm/stripwm/internal/wmerr"
)

// ComponentSet is a generic sparse component table keyed by EntityID.
// It is the arena storage primitive every marker/resource map in Store
// is built from (§9: "sparse component storage", "no raw back-pointers").
type ComponentSet[T any] struct {
	rows map[EntityID]T
}

// NewComponentSet returns an empty set.
func NewComponentSet[T any]() ComponentSet[T] {
	return ComponentSet[T]{rows: map[EntityID]T{}}
}

// Get returns the component for id, if present.
func (c *ComponentSet[T]) Get(id EntityID) (T, bool) {
	v, ok := c.rows[id]
	return v, ok
}

// Set inserts or overwrites the component for id.
func (c *ComponentSet[T]) Set(id EntityID, v T) {
	c.rows[id] = v
}

// Remove deletes the component for id, if present.
func (c *ComponentSet[T]) Remove(id EntityID) {
	delete(c.rows, id)
}

// Has reports whether id carries this component.
func (c *ComponentSet[T]) Has(id EntityID) bool {
	_, ok := c.rows[id]
	return ok
}

// Len returns the number of rows.
func (c *ComponentSet[T]) Len() int { return len(c.rows) }

// Each calls fn for every (id, value) pair. fn must not mutate the set.
func (c *ComponentSet[T]) Each(fn func(EntityID, T)) {
	for id, v := range c.rows {
		fn(id, v)
	}
}

// Store is the arena-allocated entity table: one row per live entity,
// typed component tables keyed by EntityID, and resource singletons.
// Exactly one caller mutates a Store at a time (the scheduler's
// single-writer discipline, §5); Store itself holds no lock.
type Store struct {
	nextID EntityID
	alive  map[EntityID]bool

	displays     ComponentSet[*Display]
	workspaces   ComponentSet[*Workspace]
	applications ComponentSet[*Application]
	processes    ComponentSet[*Process]
	windows      ComponentSet[*Window]

	// Markers.
	focused             ComponentSet[struct{}]
	activeDisplay       ComponentSet[struct{}]
	activeWorkspace     ComponentSet[struct{}]
	fullWidth           ComponentSet[FullWidthMarker]
	unmanaged           ComponentSet[UnmanagedKind]
	reposition          ComponentSet[RepositionMarker]
	resize              ComponentSet[ResizeMarker]
	reshuffleAround     ComponentSet[struct{}]
	stackAdjustedResize ComponentSet[struct{}]
	timeout             ComponentSet[TimeoutMarker]
	strayFocus          ComponentSet[layout.WinID]
	windowDragged       ComponentSet[EntityID]
	freshMarker         ComponentSet[struct{}]
	existingMarker      ComponentSet[struct{}]
	windowSwipe         ComponentSet[float64]

	// Resources (singletons).
	focusFollowsMouseID  *layout.WinID
	skipReshuffle        bool
	missionControlActive bool
	pollForNotifications bool
	initializing         bool
	clockSeconds         float64

	winIndex map[layout.WinID]EntityID
}

// NewStore returns an empty Store, Initializing set per startup
// Phase A until ClearInitializing is called.
func NewStore() *Store {
	return &Store{
		alive:               map[EntityID]bool{},
		displays:            NewComponentSet[*Display](),
		workspaces:          NewComponentSet[*Workspace](),
		applications:        NewComponentSet[*Application](),
		processes:           NewComponentSet[*Process](),
		windows:             NewComponentSet[*Window](),
		focused:             NewComponentSet[struct{}](),
		activeDisplay:       NewComponentSet[struct{}](),
		activeWorkspace:     NewComponentSet[struct{}](),
		fullWidth:           NewComponentSet[FullWidthMarker](),
		unmanaged:           NewComponentSet[UnmanagedKind](),
		reposition:          NewComponentSet[RepositionMarker](),
		resize:              NewComponentSet[ResizeMarker](),
		reshuffleAround:     NewComponentSet[struct{}](),
		stackAdjustedResize: NewComponentSet[struct{}](),
		timeout:             NewComponentSet[TimeoutMarker](),
		strayFocus:          NewComponentSet[layout.WinID](),
		windowDragged:       NewComponentSet[EntityID](),
		freshMarker:         NewComponentSet[struct{}](),
		existingMarker:      NewComponentSet[struct{}](),
		windowSwipe:         NewComponentSet[float64](),
		initializing:        true,
		winIndex:            map[layout.WinID]EntityID{},
	}
}

func (s *Store) newEntity() EntityID {
	s.nextID++
	s.alive[s.nextID] = true
	return s.nextID
}

// Despawn removes id and every component row referencing it. It does
// not cascade to children; callers are responsible for despawning
// children first.
func (s *Store) Despawn(id EntityID) {
	delete(s.alive, id)
	s.displays.Remove(id)
	s.workspaces.Remove(id)
	s.applications.Remove(id)
	s.processes.Remove(id)
	if w, ok := s.windows.Get(id); ok {
		delete(s.winIndex, w.ID)
	}
	s.windows.Remove(id)
	s.focused.Remove(id)
	s.activeDisplay.Remove(id)
	s.activeWorkspace.Remove(id)
	s.fullWidth.Remove(id)
	s.unmanaged.Remove(id)
	s.reposition.Remove(id)
	s.resize.Remove(id)
	s.reshuffleAround.Remove(id)
	s.stackAdjustedResize.Remove(id)
	s.timeout.Remove(id)
	s.strayFocus.Remove(id)
	s.windowDragged.Remove(id)
	s.freshMarker.Remove(id)
	s.existingMarker.Remove(id)
	s.windowSwipe.Remove(id)
}

// SpawnDisplay creates a new Display entity.
func (s *Store) SpawnDisplay(d *Display) EntityID {
	id := s.newEntity()
	s.displays.Set(id, d)
	return id
}

// SpawnWorkspace creates a new Workspace owned by displayID.
func (s *Store) SpawnWorkspace(displayID EntityID, w *Workspace) EntityID {
	id := s.newEntity()
	w.DisplayID = displayID
	s.workspaces.Set(id, w)
	return id
}

// SpawnProcess creates a new Process entity.
func (s *Store) SpawnProcess(p *Process) EntityID {
	id := s.newEntity()
	s.processes.Set(id, p)
	return id
}

// SpawnApplication creates a new Application owned by processID.
func (s *Store) SpawnApplication(processID EntityID, a *Application) EntityID {
	id := s.newEntity()
	a.ProcessID = processID
	s.applications.Set(id, a)
	return id
}

// SpawnWindow creates a new Window owned by appID and indexes it by
// its platform WinID for WinID-keyed lookups.
func (s *Store) SpawnWindow(appID EntityID, w *Window) EntityID {
	id := s.newEntity()
	w.ApplicationID = appID
	s.windows.Set(id, w)
	s.winIndex[w.ID] = id
	return id
}

// WindowByWinID resolves the EntityID owning platform id wid.
func (s *Store) WindowByWinID(wid layout.WinID) (EntityID, bool) {
	id, ok := s.winIndex[wid]
	return id, ok
}

// Window returns the Window row for id.
func (s *Store) Window(id EntityID) (*Window, error) {
	w, ok := s.windows.Get(id)
	if !ok {
		return nil, wmerr.New(wmerr.NotFound, "Store.Window", "no such window entity")
	}
	return w, nil
}

// Display returns the Display row for id.
func (s *Store) Display(id EntityID) (*Display, error) {
	d, ok := s.displays.Get(id)
	if !ok {
		return nil, wmerr.New(wmerr.NotFound, "Store.Display", "no such display entity")
	}
	return d, nil
}

// Workspace returns the Workspace row for id.
func (s *Store) Workspace(id EntityID) (*Workspace, error) {
	w, ok := s.workspaces.Get(id)
	if !ok {
		return nil, wmerr.New(wmerr.NotFound, "Store.Workspace", "no such workspace entity")
	}
	return w, nil
}

// Application returns the Application row for id.
func (s *Store) Application(id EntityID) (*Application, error) {
	a, ok := s.applications.Get(id)
	if !ok {
		return nil, wmerr.New(wmerr.NotFound, "Store.Application", "no such application entity")
	}
	return a, nil
}

// ActiveDisplayID returns the single entity carrying ActiveDisplay, if
// any (global invariant §8.8: exactly one after initialization).
func (s *Store) ActiveDisplayID() (EntityID, bool) {
	var found EntityID
	var ok bool
	s.activeDisplay.Each(func(id EntityID, _ struct{}) {
		found, ok = id, true
	})
	return found, ok
}

// SetActiveDisplay clears ActiveDisplay from every other display and
// sets it on id, preserving the "exactly one" invariant.
func (s *Store) SetActiveDisplay(id EntityID) {
	s.displays.Each(func(other EntityID, _ *Display) {
		s.activeDisplay.Remove(other)
	})
	s.activeDisplay.Set(id, struct{}{})
}

// ActiveWorkspaceID returns the single entity carrying ActiveWorkspace.
func (s *Store) ActiveWorkspaceID() (EntityID, bool) {
	var found EntityID
	var ok bool
	s.activeWorkspace.Each(func(id EntityID, _ struct{}) {
		found, ok = id, true
	})
	return found, ok
}

// SetActiveWorkspace clears ActiveWorkspace from every other workspace
// and sets it on id.
func (s *Store) SetActiveWorkspace(id EntityID) {
	s.workspaces.Each(func(other EntityID, _ *Workspace) {
		s.activeWorkspace.Remove(other)
	})
	s.activeWorkspace.Set(id, struct{}{})
}

// FocusedWindowID returns the single entity carrying Focused, if any.
func (s *Store) FocusedWindowID() (EntityID, bool) {
	var found EntityID
	var ok bool
	s.focused.Each(func(id EntityID, _ struct{}) {
		found, ok = id, true
	})
	return found, ok
}

// SetFocused clears Focused from every other window and sets it on id.
func (s *Store) SetFocused(id EntityID) {
	s.windows.Each(func(other EntityID, _ *Window) {
		s.focused.Remove(other)
	})
	s.focused.Set(id, struct{}{})
}

// Initializing reports whether startup is still in progress: true
// until Phase D calls ClearInitializing.
func (s *Store) Initializing() bool { return s.initializing }

// ClearInitializing ends startup (§4.7 Phase D).
func (s *Store) ClearInitializing() { s.initializing = false }

// SkipReshuffle reports the SkipReshuffle resource.
func (s *Store) SkipReshuffle() bool { return s.skipReshuffle }

// SetSkipReshuffle sets the SkipReshuffle resource.
func (s *Store) SetSkipReshuffle(v bool) { s.skipReshuffle = v }

// MissionControlActive reports the MissionControlActive resource.
func (s *Store) MissionControlActive() bool { return s.missionControlActive }

// SetMissionControlActive sets the MissionControlActive resource.
func (s *Store) SetMissionControlActive(v bool) { s.missionControlActive = v }

// FFMFlag returns the FocusFollowsMouse resource.
func (s *Store) FFMFlag() (layout.WinID, bool) {
	if s.focusFollowsMouseID == nil {
		return 0, false
	}
	return *s.focusFollowsMouseID, true
}

// SetFFMFlag sets or clears the FocusFollowsMouse resource.
func (s *Store) SetFFMFlag(w *layout.WinID) { s.focusFollowsMouseID = w }

// ApplicationByPSN finds the Application entity owning psn, if any.
func (s *Store) ApplicationByPSN(psn platform.PSN) (EntityID, *Application, bool) {
	var foundID EntityID
	var foundApp *Application
	found := false
	s.applications.Each(func(id EntityID, a *Application) {
		if found || a.PSN != psn {
			return
		}
		foundID, foundApp, found = id, a, true
	})
	return foundID, foundApp, found
}

// ProcessByPSN finds the Process entity for psn, if any.
func (s *Store) ProcessByPSN(psn platform.PSN) (EntityID, *Process, bool) {
	var foundID EntityID
	var foundProc *Process
	found := false
	s.processes.Each(func(id EntityID, p *Process) {
		if found || p.PSN != psn {
			return
		}
		foundID, foundProc, found = id, p, true
	})
	return foundID, foundProc, found
}

// ApplicationByPID finds the Application entity with the given PID.
func (s *Store) ApplicationByPID(pid platform.PID) (EntityID, *Application, bool) {
	var foundID EntityID
	var foundApp *Application
	found := false
	s.applications.Each(func(id EntityID, a *Application) {
		if found || a.PID != pid {
			return
		}
		foundID, foundApp, found = id, a, true
	})
	return foundID, foundApp, found
}

// WindowsOfApplication returns every window EntityID owned by appID.
func (s *Store) WindowsOfApplication(appID EntityID) []EntityID {
	var out []EntityID
	s.windows.Each(func(id EntityID, w *Window) {
		if w.ApplicationID == appID {
			out = append(out, id)
		}
	})
	return out
}

// WindowsOfApplicationByPID returns every window EntityID whose owning
// Application has the given PID.
func (s *Store) WindowsOfApplicationByPID(pid platform.PID) []EntityID {
	var appIDs []EntityID
	s.applications.Each(func(id EntityID, a *Application) {
		if a.PID == pid {
			appIDs = append(appIDs, id)
		}
	})
	var out []EntityID
	for _, appID := range appIDs {
		out = append(out, s.WindowsOfApplication(appID)...)
	}
	return out
}
