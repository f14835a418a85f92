package wm

import (
	"github.com/charmbracelet/log"

	"github.com/stripwm/stripwm/internal/config"
	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/layout"
	"github.com/stripwm/stripwm/internal/platform"
)

// strayFocusRetrySeconds is STRAY_FOCUS_RETRY_SEC (§4.5 WindowFocused).
const strayFocusRetrySeconds = 2.0

// windowDragSettleSeconds is the drag-idle duration before a reshuffle
// re-snaps a dragged window (§4.5 MouseDragged).
const windowDragSettleSeconds = 1.0

// processReadyTimeoutSeconds bounds how long a launched Process may
// stay un-ready before it's dropped (§3 Lifecycle).
const processReadyTimeoutSeconds = 10.0

// orphanWorkspaceTimeoutSeconds is how long a Workspace whose Display
// disappeared is kept around for re-adoption (§4.5 DisplayChanged).
const orphanWorkspaceTimeoutSeconds = 30.0

// EventLoop is the trigger system: it consumes platform.Events drained
// into the internal buffer each PreUpdate and mutates the Store (§4.5,
// §9 "message passing... observers/triggers attach to component
// add/remove events").
type EventLoop struct {
	store      *Store
	port       platform.WindowManagerPort
	cfg        *config.Config
	dispatcher *Dispatcher
	logger     *log.Logger
}

// NewEventLoop builds an EventLoop over the given Store/port/config.
func NewEventLoop(store *Store, port platform.WindowManagerPort, cfg *config.Config, dispatcher *Dispatcher) *EventLoop {
	return &EventLoop{store: store, port: port, cfg: cfg, dispatcher: dispatcher, logger: log.Default().With("component", "event-loop")}
}

// Handle applies one event, returning any follow-up events the caller
// should handle next (the scheduler runs them within the same tick).
func (e *EventLoop) Handle(ev platform.Event) []platform.Event {
	switch v := ev.(type) {
	case platform.WindowCreated:
		return e.handleWindowCreated(v)
	case platform.SpawnWindow:
		e.handleSpawnWindow(v)
	case platform.WindowDestroyed:
		e.handleWindowDestroyed(v)
	case platform.WindowMoved:
		e.handleWindowMoved(v)
	case platform.WindowResized:
		e.handleWindowResized(v)
	case platform.WindowMinimized:
		e.setUnmanagedByWinID(v.ID, Minimized, true)
	case platform.WindowDeminimized:
		e.setUnmanagedByWinID(v.ID, Minimized, false)
	case platform.ApplicationHidden:
		e.setAppUnmanaged(v.PID, Hidden, true)
	case platform.ApplicationVisible:
		e.setAppUnmanaged(v.PID, Hidden, false)
	case platform.ApplicationLaunched:
		e.handleApplicationLaunched(v)
	case platform.ApplicationTerminated:
		e.handleApplicationTerminated(v)
	case platform.ApplicationFrontSwitched:
		return e.handleApplicationFrontSwitched(v)
	case platform.WindowFocused:
		return e.handleWindowFocused(v)
	case platform.MouseMoved:
		e.handleMouseMoved(v)
	case platform.MouseDown:
		e.handleMouseDown(v)
	case platform.MouseDragged:
		e.handleMouseDragged(v)
	case platform.Swipe:
		e.handleSwipe(v)
	case platform.SpaceChanged:
		e.handleSpaceChanged()
	case platform.DisplayChanged, platform.DisplayAdded, platform.DisplayRemoved, platform.DisplayMoved:
		e.handleDisplayTopologyChanged()
	case platform.MissionControlShow:
		e.store.SetMissionControlActive(true)
	case platform.MissionControlExit:
		e.store.SetMissionControlActive(false)
	case platform.ConfigRefresh:
		e.handleConfigRefresh(v)
	}
	return nil
}

// windowElementDescriber lets a platform element describe itself as a
// WindowSnapshot, so WindowCreated can run role/subrole validation
// without the core depending on any concrete accessibility type.
type windowElementDescriber interface {
	Describe() (platform.WindowSnapshot, bool)
}

// validRoles are the accessibility roles a constructed Window must
// carry to be managed, and invalidSubroles the subroles that exclude
// it (§3 Window, §4.5 WindowCreated "if validation passes").
var validRoles = map[string]bool{"AXWindow": true}
var invalidSubroles = map[string]bool{"AXSystemDialog": true}

func isValidWindowRole(role, subrole string) bool {
	if !validRoles[role] {
		return false
	}
	return !invalidSubroles[subrole]
}

func (e *EventLoop) handleWindowCreated(ev platform.WindowCreated) []platform.Event {
	describer, ok := ev.Element.(windowElementDescriber)
	if !ok {
		e.logger.Debug("window element does not describe itself; dropping", "element", ev.Element)
		return nil
	}
	snap, ok := describer.Describe()
	if !ok {
		return nil
	}
	if !isValidWindowRole(snap.Role, snap.Subrole) {
		e.logger.Debug("dropping invalid window", "role", snap.Role, "subrole", snap.Subrole)
		return nil
	}
	return []platform.Event{platform.SpawnWindow{Windows: []platform.WindowSnapshot{snap}}}
}

// handleSpawnWindow attaches each newly reported window to its owning
// Application, applies any matching WindowParams rules, inserts it
// into the active strip, and reshuffles unless initializing or the
// rule says dont_focus (§4.5 SpawnWindow).
func (e *EventLoop) handleSpawnWindow(ev platform.SpawnWindow) {
	for _, snap := range ev.Windows {
		e.spawnOne(snap)
	}
}

func (e *EventLoop) spawnOne(snap platform.WindowSnapshot) {
	appID, app, ok := e.store.ApplicationByPID(snap.OwnerPID)
	if !ok {
		e.logger.Warn("spawn window for unknown application", "pid", snap.OwnerPID)
		return
	}

	w := &Window{
		ID:       snap.ID,
		Frame:    snap.Frame,
		Role:     snap.Role,
		Subrole:  snap.Subrole,
		Title:    snap.Title,
		BundleID: snap.BundleID,
		IsRoot:   true,
	}
	if port, err := e.port.ResolveWindow(snap.ID); err == nil {
		w.Port = port
		w.WidthRatio = port.WidthRatio()
		w.HorizontalPadding = port.HorizontalPadding()
	}
	id := e.store.SpawnWindow(appID, w)
	e.store.freshMarker.Set(id, struct{}{})

	dontFocus := false
	index := -1
	floating := false
	for _, rule := range e.cfg.FindWindowProperties(snap.Title, snap.BundleID) {
		if rule.Floating != nil {
			floating = *rule.Floating
		}
		if rule.Index != nil {
			index = *rule.Index
		}
		if rule.DontFocus != nil {
			dontFocus = *rule.DontFocus
		}
		vp, hp := 0, 0
		if rule.VerticalPadding != nil {
			vp = geometry.Clamp(*rule.VerticalPadding, 0, 50)
		}
		if rule.HorizontalPadding != nil {
			hp = geometry.Clamp(*rule.HorizontalPadding, 0, 50)
		}
		if rule.VerticalPadding != nil || rule.HorizontalPadding != nil {
			w.VerticalPadding, w.HorizontalPadding = vp, hp
			if w.Port != nil {
				w.Port.SetPadding(vp, hp)
			}
		}
		if rule.Width != nil {
			w.WidthRatio = *rule.Width
		}
	}

	if floating {
		e.store.AddUnmanaged(id, Floating)
		return
	}

	wsID, ws, ok := e.activeWorkspaceWithID()
	if !ok {
		return
	}
	if index >= 0 {
		ws.Strip.InsertAt(index, snap.ID)
	} else if focusedID, ok := e.store.FocusedWindowID(); ok {
		if fw, err := e.store.Window(focusedID); err == nil {
			if idx, err := ws.Strip.IndexOf(fw.ID); err == nil {
				ws.Strip.InsertAt(idx+1, snap.ID)
			} else {
				ws.Strip.Append(snap.ID)
			}
		} else {
			ws.Strip.Append(snap.ID)
		}
	} else {
		ws.Strip.Append(snap.ID)
	}
	_ = wsID
	_ = app

	if !dontFocus {
		e.store.SetFocused(id)
	}
	if !e.store.Initializing() && !dontFocus {
		e.store.ReshuffleAround(id)
	}
}

func (e *EventLoop) activeWorkspaceWithID() (EntityID, *Workspace, bool) {
	wsID, ok := e.store.ActiveWorkspaceID()
	if !ok {
		return 0, nil, false
	}
	ws, err := e.store.Workspace(wsID)
	if err != nil || ws.Strip == nil {
		return 0, nil, false
	}
	return wsID, ws, true
}

// handleWindowDestroyed unobserves, gives away focus, clears any
// Unmanaged marker, and despawns (§4.5 WindowDestroyed).
func (e *EventLoop) handleWindowDestroyed(ev platform.WindowDestroyed) {
	id, ok := e.store.WindowByWinID(ev.ID)
	if !ok {
		return
	}
	if wsID, ws, ok := e.activeWorkspaceWithID(); ok {
		e.store.giveAwayFocus(ws, ev.ID, id)
		ws.Strip.Remove(ev.ID)
		_ = wsID
	}
	e.store.unmanaged.Remove(id)
	e.store.Despawn(id)
}

// handleWindowMoved refreshes a window's observed frame from the OS
// (§4.5 WindowMoved).
func (e *EventLoop) handleWindowMoved(ev platform.WindowMoved) {
	id, ok := e.store.WindowByWinID(ev.ID)
	if !ok {
		return
	}
	w, err := e.store.Window(id)
	if err != nil {
		return
	}
	w.Frame = w.Frame.WithOrigin(ev.Origin)
}

// handleWindowResized refreshes the observed frame and reshuffles
// around the *focused* window, not the one that was resized, to avoid
// dragging off-screen slivers into view — a feedback-loop guard
// (§4.5 WindowMoved/Resized, §9 Feedback isolation). A StackAdjustedResize
// echo is consumed without retriggering reshuffle.
func (e *EventLoop) handleWindowResized(ev platform.WindowResized) {
	id, ok := e.store.WindowByWinID(ev.ID)
	if !ok {
		return
	}
	w, err := e.store.Window(id)
	if err != nil {
		return
	}
	w.Frame = w.Frame.WithSize(ev.Size)

	if _, suppressed := e.store.stackAdjustedResize.Get(id); suppressed {
		e.store.stackAdjustedResize.Remove(id)
		return
	}
	if ev.SelfIssued {
		return
	}
	if focusedID, ok := e.store.FocusedWindowID(); ok {
		e.store.ReshuffleAround(focusedID)
	}
}

func (e *EventLoop) setUnmanagedByWinID(wid layout.WinID, kind UnmanagedKind, add bool) {
	id, ok := e.store.WindowByWinID(wid)
	if !ok {
		return
	}
	if add {
		e.store.AddUnmanaged(id, kind)
	} else {
		if k, ok := e.store.unmanaged.Get(id); ok && k == kind {
			e.store.RemoveUnmanaged(id)
		}
	}
}

// setAppUnmanaged adds/removes Hidden on every window of the
// application at pid, preserving any pre-existing Floating/Minimized
// marker (§4.5 ApplicationHidden/Visible): Hidden is only ever added
// over "managed", and only ever removed if it was the active reason.
func (e *EventLoop) setAppUnmanaged(pid platform.PID, kind UnmanagedKind, add bool) {
	for _, id := range e.store.WindowsOfApplicationByPID(pid) {
		current, has := e.store.unmanaged.Get(id)
		if add {
			if has {
				continue // already Floating or Minimized: Hidden doesn't override
			}
			e.store.AddUnmanaged(id, kind)
		} else {
			if has && current == kind {
				e.store.RemoveUnmanaged(id)
			}
		}
	}
}

// handleApplicationLaunched spawns a Process entity, marked Observable,
// and always gives it a TimeoutProcessReady deadline (§4.5
// ApplicationLaunched, §3 Lifecycle). Nothing sets the Process's Ready
// flag, so the Process is dropped once that deadline passes.
func (e *EventLoop) handleApplicationLaunched(ev platform.ApplicationLaunched) {
	id := e.store.SpawnProcess(&Process{PSN: ev.PSN, Name: ev.Name, Observable: true})
	e.store.SetTimeout(id, TimeoutProcessReady, processReadyTimeoutSeconds, "process never became ready: "+ev.Name)
}

// handleApplicationTerminated despawns the Process/Application owning
// psn (§4.5 ApplicationTerminated).
func (e *EventLoop) handleApplicationTerminated(ev platform.ApplicationTerminated) {
	if procID, _, ok := e.store.ProcessByPSN(ev.PSN); ok {
		e.store.Despawn(procID)
	}
	if appID, _, ok := e.store.ApplicationByPSN(ev.PSN); ok {
		for _, winID := range e.store.WindowsOfApplication(appID) {
			if wsID, ws, ok := e.activeWorkspaceWithID(); ok {
				if w, err := e.store.Window(winID); err == nil {
					ws.Strip.Remove(w.ID)
				}
				_ = wsID
			}
			e.store.Despawn(winID)
		}
		e.store.Despawn(appID)
	}
}

// handleApplicationFrontSwitched requests the focused window from the
// newly-frontmost application and re-fires WindowFocused for it
// (§4.5 ApplicationFrontSwitched).
func (e *EventLoop) handleApplicationFrontSwitched(ev platform.ApplicationFrontSwitched) []platform.Event {
	appID, _, ok := e.store.ApplicationByPSN(ev.PSN)
	if !ok {
		return nil
	}
	for _, winID := range e.store.WindowsOfApplication(appID) {
		if w, err := e.store.Window(winID); err == nil && w.IsRoot {
			return []platform.Event{platform.WindowFocused{ID: w.ID}}
		}
	}
	return nil
}

// handleWindowFocused moves the Focused marker; if the window hasn't
// been spawned yet, schedules a stray-focus retry (§4.5 WindowFocused).
func (e *EventLoop) handleWindowFocused(ev platform.WindowFocused) []platform.Event {
	id, ok := e.store.WindowByWinID(ev.ID)
	if !ok {
		// Park a StrayFocus retry on a fresh placeholder entity; the
		// retry system re-fires WindowFocused once the timeout elapses
		// (by which point the window may have been spawned).
		phID := e.store.newEntity()
		e.store.strayFocus.Set(phID, ev.ID)
		e.store.SetTimeout(phID, TimeoutStrayFocusRetry, strayFocusRetrySeconds, "stray focus retry for window not yet spawned")
		return nil
	}

	e.store.SetFocused(id)
	if ffm, ok := e.store.FFMFlag(); ok && ffm == ev.ID {
		e.store.SetFFMFlag(nil)
	}

	if e.cfg.AutoCenter() {
		e.dispatcher.center(id)
	}
	if !e.store.SkipReshuffle() {
		e.store.ReshuffleAround(id)
	}
	e.store.SetSkipReshuffle(false)
	return nil
}

// handleMouseMoved implements focus-follows-mouse (§4.5 MouseMoved):
// find the window (or associated child window) under point, focus it
// without raising unless nothing was previously focused.
func (e *EventLoop) handleMouseMoved(ev platform.MouseMoved) {
	if !e.cfg.FocusFollowsMouse() {
		return
	}
	if e.store.MissionControlActive() {
		return
	}
	wid, found, err := e.port.FindWindowAtPoint(ev.Point)
	if err != nil || !found {
		return
	}
	id, ok := e.store.WindowByWinID(wid)
	if !ok {
		id, ok = e.resolveAssociatedParent(wid)
		if !ok {
			return
		}
	}
	w, err := e.store.Window(id)
	if err != nil {
		return
	}
	app, err := e.store.Application(w.ApplicationID)
	if err != nil {
		return
	}

	currentID, hasCurrent := e.store.FocusedWindowID()
	if hasCurrent && currentID == id {
		return
	}
	if w.Port == nil {
		return
	}
	if hasCurrent {
		cw, _ := e.store.Window(currentID)
		capp, _ := e.store.Application(cw.ApplicationID)
		_ = w.Port.FocusWithoutRaise(app.PSN, cw.ID, capp.PSN)
	} else {
		_ = w.Port.FocusWithRaise(app.PSN)
	}
	e.store.SetSkipReshuffle(true)
	e.store.SetFFMFlag(&wid)
}

// resolveAssociatedParent finds the managed window that owns wid as an
// associated child (a sheet or drawer), for when FindWindowAtPoint
// resolves to a child element rather than a root window (§4.5
// MouseMoved: "find window at point... including child windows via
// associated-windows").
func (e *EventLoop) resolveAssociatedParent(wid layout.WinID) (EntityID, bool) {
	var found EntityID
	ok := false
	e.store.windows.Each(func(id EntityID, w *Window) {
		if ok {
			return
		}
		children, err := e.port.AssociatedWindows(w.ID)
		if err != nil {
			return
		}
		for _, c := range children {
			if c == wid {
				found, ok = id, true
				return
			}
		}
	})
	return found, ok
}

// handleMouseDown reshuffles around the clicked window if it's
// partially off-screen (§4.5 MouseDown).
func (e *EventLoop) handleMouseDown(ev platform.MouseDown) {
	if e.store.MissionControlActive() {
		return
	}
	wid, found, err := e.port.FindWindowAtPoint(ev.Point)
	if err != nil || !found {
		return
	}
	id, ok := e.store.WindowByWinID(wid)
	if !ok {
		return
	}
	displayID, ok := e.store.ActiveDisplayID()
	if !ok {
		return
	}
	display, err := e.store.Display(displayID)
	if err != nil {
		return
	}
	frame, ok := e.store.MovingFrame(id, displayID)
	if !ok {
		return
	}
	if frame.VisibleWidth(display.Bounds) <= offScreenThreshold {
		e.store.ReshuffleAround(id)
	}
}

// handleMouseDragged attaches/refreshes a drag-settle timeout on the
// dragged window (§4.5 MouseDragged).
func (e *EventLoop) handleMouseDragged(ev platform.MouseDragged) {
	wid, found, err := e.port.FindWindowAtPoint(ev.Point)
	if err != nil || !found {
		return
	}
	id, ok := e.store.WindowByWinID(wid)
	if !ok {
		return
	}
	e.store.windowDragged.Set(id, id)
	e.store.SetTimeout(id, TimeoutWindowDragSettle, windowDragSettleSeconds, "drag settle")
}

// handleSwipe marks the focused window with its accumulated swipe
// delta for the window-swiper system (§4.5 Swipe).
func (e *EventLoop) handleSwipe(ev platform.Swipe) {
	fingers, configured := e.cfg.SwipeGestureFingers()
	if !configured || len(ev.Deltas) != fingers {
		return
	}
	focusedID, ok := e.store.FocusedWindowID()
	if !ok {
		return
	}
	sum := 0.0
	for _, d := range ev.Deltas {
		sum += d
	}
	e.store.windowSwipe.Set(focusedID, sum)
}

// RunWindowSwiper converts any pending WindowSwipe delta into a scroll
// offset and re-runs the layout pass directly against that offset,
// clamped to the strip's scrollable range unless free_slide is enabled
// (§4.5 Swipe, §6.3 FreeSlide).
func (e *EventLoop) RunWindowSwiper() {
	var pending []EntityID
	e.store.windowSwipe.Each(func(id EntityID, _ float64) { pending = append(pending, id) })
	for _, id := range pending {
		delta, ok := e.store.windowSwipe.Get(id)
		if !ok {
			continue
		}
		e.store.windowSwipe.Remove(id)

		displayID, ok := e.store.ActiveDisplayID()
		if !ok {
			continue
		}
		wsID, ok := e.store.ActiveWorkspaceID()
		if !ok {
			continue
		}
		ws, err := e.store.Workspace(wsID)
		if err != nil || ws.Strip == nil {
			continue
		}

		offset := ws.ScrollOffset - int(delta)
		if !e.cfg.FreeSlide() {
			offset = e.store.clampScrollOffset(displayID, ws, offset, e.cfg)
		}
		ws.ScrollOffset = offset
		e.store.positionLayoutWindows(displayID, wsID, offset, e.cfg)
	}
}

// handleSpaceChanged re-identifies the active workspace among the
// active display's child strips (§4.5 SpaceChanged).
func (e *EventLoop) handleSpaceChanged() {
	displayID, ok := e.store.ActiveDisplayID()
	if !ok {
		return
	}
	display, err := e.store.Display(displayID)
	if err != nil {
		return
	}
	active, err := e.port.ActiveDisplaySpace(display.PlatformID)
	if err != nil {
		return
	}
	e.store.workspaces.Each(func(id EntityID, ws *Workspace) {
		if ws.DisplayID == displayID && ws.PlatformID == active {
			e.store.SetActiveWorkspace(id)
		}
	})
}

// handleDisplayTopologyChanged re-enumerates displays and preserves
// orphaned (non-empty) workspaces with a grace-period timeout so they
// can be re-adopted if the display reappears (§4.5 DisplayChanged).
func (e *EventLoop) handleDisplayTopologyChanged() {
	snapshots, err := e.port.PresentDisplays()
	if err != nil {
		return
	}
	present := map[platform.DisplayID]platform.DisplaySnapshot{}
	for _, s := range snapshots {
		present[s.ID] = s
	}

	var goneDisplayIDs []EntityID
	e.store.displays.Each(func(id EntityID, d *Display) {
		if _, ok := present[d.PlatformID]; !ok {
			goneDisplayIDs = append(goneDisplayIDs, id)
		}
	})
	for _, id := range goneDisplayIDs {
		e.store.workspaces.Each(func(wsID EntityID, ws *Workspace) {
			if ws.DisplayID != id {
				return
			}
			if ws.Strip != nil && ws.Strip.Len() > 0 {
				e.store.SetTimeout(wsID, TimeoutOrphanWorkspace, orphanWorkspaceTimeoutSeconds, "orphaned workspace awaiting display")
				ws.DisplayID = 0
			} else {
				e.store.Despawn(wsID)
			}
		})
		e.store.Despawn(id)
	}

	for platID, snap := range present {
		exists := false
		e.store.displays.Each(func(_ EntityID, d *Display) {
			if d.PlatformID == platID {
				exists = true
			}
		})
		if exists {
			continue
		}
		newID := e.store.SpawnDisplay(&Display{PlatformID: snap.ID, Bounds: snap.Bounds, MenubarHeight: snap.MenubarHeight, Dock: snap.Dock})
		e.reattachOrphans(newID, snap)
	}

	active, err := e.port.ActiveDisplayID()
	if err == nil {
		e.store.displays.Each(func(id EntityID, d *Display) {
			if d.PlatformID == active {
				e.store.SetActiveDisplay(id)
			}
		})
	}
}

// reattachOrphans re-adopts any orphaned Workspace whose PlatformID
// matches one the reappearing display now reports, refreshing width
// ratios from the new display width (§4.5 DisplayChanged, §4.7).
func (e *EventLoop) reattachOrphans(displayID EntityID, snap platform.DisplaySnapshot) {
	for _, wsPlatID := range snap.Workspaces {
		e.store.workspaces.Each(func(wsID EntityID, ws *Workspace) {
			if ws.DisplayID != 0 || ws.PlatformID != wsPlatID {
				return
			}
			ws.DisplayID = displayID
			e.store.ClearTimeout(wsID)
			if ws.Strip == nil {
				return
			}
			for _, wid := range ws.Strip.AllWindows() {
				if winID, ok := e.store.WindowByWinID(wid); ok {
					if w, err := e.store.Window(winID); err == nil && w.Port != nil {
						w.WidthRatio = w.Port.WidthRatio()
					}
				}
			}
		})
	}
}

// handleConfigRefresh reloads the config document; failure leaves the
// previous document in place (§4.5 ConfigRefresh, §7 InvalidConfig).
func (e *EventLoop) handleConfigRefresh(ev platform.ConfigRefresh) {
	if err := e.cfg.Reload(ev.Path); err != nil {
		e.logger.Warn("config reload failed, retaining previous config", "err", err)
	}
}

// TickTimeouts runs the cooperative cleanup for every expired Timeout
// entity (§5 Cancellation).
func (e *EventLoop) TickTimeouts() []platform.Event {
	var followUp []platform.Event
	for _, entry := range e.store.ExpiredTimeouts() {
		switch entry.Marker.Kind {
		case TimeoutStrayFocusRetry:
			if wid, ok := e.store.strayFocus.Get(entry.ID); ok {
				followUp = append(followUp, platform.WindowFocused{ID: wid})
			}
			e.store.Despawn(entry.ID)
		case TimeoutWindowDragSettle:
			e.store.windowDragged.Remove(entry.ID)
			e.store.ClearTimeout(entry.ID)
			e.store.ReshuffleAround(entry.ID)
		case TimeoutProcessReady:
			e.store.Despawn(entry.ID)
		case TimeoutOrphanWorkspace:
			e.store.Despawn(entry.ID)
		default:
			e.store.ClearTimeout(entry.ID)
		}
	}
	return followUp
}
