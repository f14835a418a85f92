package wm

import (
	"testing"

	"github.com/stripwm/stripwm/internal/config"
	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/layout"
	"github.com/stripwm/stripwm/internal/platform"
)

// testWorld wires a Store, a deterministic Mock platform, and a
// default Config, mirroring a single-display single-workspace
// single-application setup so command and reconciliation tests don't
// each have to re-seed the entity graph.
type testWorld struct {
	store      *Store
	port       *platform.Mock
	cfg        *config.Config
	dispatcher *Dispatcher
	loop       *EventLoop
	displayID  EntityID
	wsID       EntityID
	appID      EntityID
}

func newTestWorld(bounds geometry.Rect) *testWorld {
	store := NewStore()
	port := platform.NewMock()
	cfg := config.DefaultConfig()

	port.SeedDisplay(platform.DisplaySnapshot{ID: 1, Bounds: bounds, MenubarHeight: 20, Workspaces: []platform.WorkspaceID{1}}, 1)

	displayID := store.SpawnDisplay(&Display{PlatformID: 1, Bounds: bounds, MenubarHeight: 20})
	wsID := store.SpawnWorkspace(displayID, &Workspace{PlatformID: 1, Strip: layout.NewStrip()})
	store.SetActiveDisplay(displayID)
	store.SetActiveWorkspace(wsID)
	store.ClearInitializing()

	appPort, _ := port.NewApplication(platform.PSN{Low: 1}, platform.PID(100))
	procID := store.SpawnProcess(&Process{PSN: platform.PSN{Low: 1}, Observable: true})
	appID := store.SpawnApplication(procID, &Application{PSN: platform.PSN{Low: 1}, PID: 100, Port: appPort})

	dispatcher := NewDispatcher(store, port, cfg)
	loop := NewEventLoop(store, port, cfg, dispatcher)

	return &testWorld{store: store, port: port, cfg: cfg, dispatcher: dispatcher, loop: loop, displayID: displayID, wsID: wsID, appID: appID}
}

// addWindow appends a Single column window to the workspace's strip,
// seeding both the Store's Window entity and the Mock's WindowPort so
// the two stay in sync the way SpawnWindow/ResolveWindow do at
// runtime.
func (w *testWorld) addWindow(wid layout.WinID, frame geometry.Rect) EntityID {
	mw := platform.NewMockWindow(wid, frame)
	w.port.SeedWindow(mw)
	id := w.store.SpawnWindow(w.appID, &Window{ID: wid, Frame: frame, Role: "AXWindow", Port: mw, WidthRatio: 1})
	ws, _ := w.store.Workspace(w.wsID)
	ws.Strip.Append(wid)
	return id
}

// settle runs reshuffle+animate up to maxTicks times, returning once
// no Reposition/Resize marker remains (testable property 6: animation
// converges in finite ticks under a fixed clock).
func (w *testWorld) settle(maxTicks int) {
	for i := 0; i < maxTicks; i++ {
		w.store.ReshuffleLayoutStrip(w.cfg)
		w.store.AnimateStep(w.cfg, 1.0/60.0)
		if w.store.reposition.Len() == 0 && w.store.resize.Len() == 0 {
			return
		}
	}
}

func standardBounds() geometry.Rect {
	return geometry.NewRect(geometry.Point{}, geometry.Size{W: 1024, H: 768})
}

func TestFocusDirectionsAndFirstLast(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000})
	ids := make([]EntityID, 5)
	for i := 0; i < 5; i++ {
		ids[i] = w.addWindow(layout.WinID(i), frame.WithOrigin(geometry.Point{X: i * 100}))
	}
	w.store.SetFocused(ids[0])

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpFocus{Dir: platform.East}})
	focused, ok := w.store.FocusedWindowID()
	if !ok || focused != ids[1] {
		t.Fatalf("after focus east: focused = %v, want window 1", focused)
	}

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpFocus{Dir: platform.East}})
	focused, ok = w.store.FocusedWindowID()
	if !ok || focused != ids[2] {
		t.Fatalf("after focus east twice: focused = %v, want window 2", focused)
	}

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpFocus{Dir: platform.First}})
	focused, ok = w.store.FocusedWindowID()
	if !ok || focused != ids[0] {
		t.Fatalf("after focus first: focused = %v, want window 0", focused)
	}

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpFocus{Dir: platform.Last}})
	focused, ok = w.store.FocusedWindowID()
	if !ok || focused != ids[4] {
		t.Fatalf("after focus last: focused = %v, want window 4", focused)
	}
}

// TestStackUnstackViaDispatcher exercises testable properties 1 and 2:
// Stack merges the focused window onto its left neighbour and shrinks
// the strip by exactly one column; Unstack reverses it.
func TestStackUnstackViaDispatcher(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000})
	ids := make([]EntityID, 5)
	for i := 0; i < 5; i++ {
		ids[i] = w.addWindow(layout.WinID(i), frame.WithOrigin(geometry.Point{X: i * 100}))
	}
	w.store.SetFocused(ids[2])

	ws, _ := w.store.Workspace(w.wsID)
	before := ws.Strip.Len()

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpStack{Stack: true}})
	if ws.Strip.Len() != before-1 {
		t.Fatalf("Strip.Len() after stack = %d, want %d", ws.Strip.Len(), before-1)
	}
	idx, err := ws.Strip.IndexOf(layout.WinID(2))
	if err != nil {
		t.Fatalf("IndexOf(2) after stack: %v", err)
	}
	col, _ := ws.Strip.Get(idx)
	if col.Kind != layout.Stack || !col.Contains(layout.WinID(1)) || !col.Contains(layout.WinID(2)) {
		t.Fatalf("expected Stack(1,2), got %+v", col)
	}

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpStack{Stack: false}})
	if ws.Strip.Len() != before {
		t.Fatalf("Strip.Len() after unstack = %d, want %d", ws.Strip.Len(), before)
	}
	idx, err = ws.Strip.IndexOf(layout.WinID(2))
	if err != nil {
		t.Fatalf("IndexOf(2) after unstack: %v", err)
	}
	col, _ = ws.Strip.Get(idx)
	if col.Kind != layout.Single || col.Windows[0] != layout.WinID(2) {
		t.Fatalf("expected Single(2) after unstack, got %+v", col)
	}
}

// TestFullWidthTogglePreservesRatio exercises §4.3 FullWidth: going
// full-width records the pre-toggle width ratio and resizes to the
// padded display width; toggling back removes the marker and restores
// the recorded ratio.
func TestFullWidthTogglePreservesRatio(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{X: 200}, geometry.Size{W: 400, H: 1000})
	id := w.addWindow(layout.WinID(2), frame)
	w.store.SetFocused(id)

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpFullWidth{}})
	marker, isFull := w.store.fullWidth.Get(id)
	if !isFull {
		t.Fatal("expected FullWidthMarker after first toggle")
	}
	wantRatio := 400.0 / 1024.0
	if diff := marker.WidthRatio - wantRatio; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("WidthRatio = %v, want %v", marker.WidthRatio, wantRatio)
	}
	resize, ok := w.store.resize.Get(id)
	if !ok || resize.Size.W != 1024 {
		t.Fatalf("resize marker after full-width = %+v, want width 1024", resize)
	}
	reposition, ok := w.store.reposition.Get(id)
	if !ok || reposition.Origin.X != 0 {
		t.Fatalf("reposition marker after full-width = %+v, want x=0", reposition)
	}

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpFullWidth{}})
	if _, isFull := w.store.fullWidth.Get(id); isFull {
		t.Error("FullWidthMarker should be cleared after second toggle")
	}
	resize, ok = w.store.resize.Get(id)
	if !ok || resize.Size.W != 400 {
		t.Fatalf("resize marker after restoring = %+v, want width 400", resize)
	}
}

// TestManageFloatingRoundTrip exercises §4.4: toggling Manage removes
// the window from the strip while Floating, and re-appends it once
// Floating is removed.
func TestManageFloatingRoundTrip(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000})
	ids := make([]EntityID, 3)
	for i := 0; i < 3; i++ {
		ids[i] = w.addWindow(layout.WinID(i), frame.WithOrigin(geometry.Point{X: i * 100}))
	}
	w.store.SetFocused(ids[1])

	ws, _ := w.store.Workspace(w.wsID)
	before := ws.Strip.Len()

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpManage{}})
	if kind, ok := w.store.unmanaged.Get(ids[1]); !ok || kind != Floating {
		t.Fatal("expected Unmanaged(Floating) after Manage")
	}
	if _, err := ws.Strip.IndexOf(layout.WinID(1)); err == nil {
		t.Error("floating window should be removed from the strip")
	}
	if ws.Strip.Len() != before-1 {
		t.Fatalf("Strip.Len() after float = %d, want %d", ws.Strip.Len(), before-1)
	}

	w.dispatcher.Dispatch(platform.CmdWindow{Op: platform.OpManage{}})
	if _, ok := w.store.unmanaged.Get(ids[1]); ok {
		t.Error("Unmanaged marker should be cleared after second Manage")
	}
	if _, err := ws.Strip.IndexOf(layout.WinID(1)); err != nil {
		t.Error("window should be re-appended to the strip once unmanaged")
	}
}

// TestReshuffleConverges exercises testable property 6/7: after
// ReshuffleAround, repeated reshuffle+animate passes clear every
// Reposition/Resize marker within a bounded number of ticks, and the
// focused window ends up within the padded viewport.
func TestReshuffleConverges(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{X: 2000}, geometry.Size{W: 400, H: 1000})
	id := w.addWindow(layout.WinID(0), frame)
	w.store.SetFocused(id)
	w.store.ReshuffleAround(id)

	w.settle(32)

	if w.store.reposition.Len() != 0 || w.store.resize.Len() != 0 {
		t.Fatalf("markers did not converge: reposition=%d resize=%d", w.store.reposition.Len(), w.store.resize.Len())
	}
	win, err := w.store.Window(id)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if win.Frame.Min.X < 0 || win.Frame.Min.X > 1024-win.Frame.Width() {
		t.Errorf("focused window min.X = %d out of padded viewport bounds", win.Frame.Min.X)
	}
}

// TestActiveDisplayWorkspaceInvariant exercises testable property 8:
// exactly one Display carries ActiveDisplay and exactly one of its
// child Workspaces carries ActiveWorkspace, regardless of how many
// times Set* is called or how many displays/workspaces exist.
func TestActiveDisplayWorkspaceInvariant(t *testing.T) {
	w := newTestWorld(standardBounds())
	otherDisplay := w.store.SpawnDisplay(&Display{PlatformID: 2, Bounds: standardBounds()})
	otherWs := w.store.SpawnWorkspace(otherDisplay, &Workspace{PlatformID: 2, Strip: layout.NewStrip()})

	countActiveDisplays := func() int {
		n := 0
		w.store.activeDisplay.Each(func(EntityID, struct{}) { n++ })
		return n
	}
	countActiveWorkspaces := func() int {
		n := 0
		w.store.activeWorkspace.Each(func(EntityID, struct{}) { n++ })
		return n
	}

	if countActiveDisplays() != 1 || countActiveWorkspaces() != 1 {
		t.Fatalf("initial invariant violated: displays=%d workspaces=%d", countActiveDisplays(), countActiveWorkspaces())
	}

	w.store.SetActiveDisplay(otherDisplay)
	w.store.SetActiveWorkspace(otherWs)
	if countActiveDisplays() != 1 || countActiveWorkspaces() != 1 {
		t.Fatalf("invariant violated after switching displays: displays=%d workspaces=%d", countActiveDisplays(), countActiveWorkspaces())
	}
	active, ok := w.store.ActiveDisplayID()
	if !ok || active != otherDisplay {
		t.Errorf("ActiveDisplayID() = %v, want %v", active, otherDisplay)
	}
}

// TestApplicationHiddenVisibleRoundTrip exercises testable property
// 10: after ApplicationHidden then ApplicationVisible with no other
// events, a window that was not previously Floating or Minimized
// returns to managed.
func TestApplicationHiddenVisibleRoundTrip(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000})
	id := w.addWindow(layout.WinID(0), frame)
	w.store.SetFocused(id)

	pid := platform.PID(100)
	w.loop.Handle(platform.ApplicationHidden{PID: pid})
	if kind, ok := w.store.unmanaged.Get(id); !ok || kind != Hidden {
		t.Fatal("expected Unmanaged(Hidden) after ApplicationHidden")
	}

	w.loop.Handle(platform.ApplicationVisible{PID: pid})
	if _, ok := w.store.unmanaged.Get(id); ok {
		t.Error("Unmanaged should be cleared after ApplicationVisible")
	}
}

// TestApplicationHiddenPreservesFloating ensures Hidden never overrides
// a pre-existing Floating/Minimized marker (§4.5 ApplicationHidden).
func TestApplicationHiddenPreservesFloating(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000})
	id := w.addWindow(layout.WinID(0), frame)
	w.store.AddUnmanaged(id, Floating)

	w.loop.Handle(platform.ApplicationHidden{PID: platform.PID(100)})
	if kind, ok := w.store.unmanaged.Get(id); !ok || kind != Floating {
		t.Error("ApplicationHidden should not override an existing Floating marker")
	}

	w.loop.Handle(platform.ApplicationVisible{PID: platform.PID(100)})
	if kind, ok := w.store.unmanaged.Get(id); !ok || kind != Floating {
		t.Error("ApplicationVisible should not clear a Floating marker it didn't set")
	}
}

// TestWindowDestroyedGivesAwayFocus exercises §4.5 WindowDestroyed:
// the focused window's neighbour inherits focus and the strip shrinks.
func TestWindowDestroyedGivesAwayFocus(t *testing.T) {
	w := newTestWorld(standardBounds())
	frame := geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000})
	ids := make([]EntityID, 3)
	for i := 0; i < 3; i++ {
		ids[i] = w.addWindow(layout.WinID(i), frame.WithOrigin(geometry.Point{X: i * 100}))
	}
	w.store.SetFocused(ids[1])

	w.loop.Handle(platform.WindowDestroyed{ID: layout.WinID(1)})

	focused, ok := w.store.FocusedWindowID()
	if !ok {
		t.Fatal("expected a focused window after destroying the focused one")
	}
	if focused != ids[0] && focused != ids[2] {
		t.Errorf("focused = %v, want a surviving neighbour", focused)
	}
	ws, _ := w.store.Workspace(w.wsID)
	if ws.Strip.Len() != 2 {
		t.Errorf("Strip.Len() after destroy = %d, want 2", ws.Strip.Len())
	}
	if _, err := w.store.Window(ids[1]); err == nil {
		t.Error("destroyed window entity should be despawned")
	}
}
