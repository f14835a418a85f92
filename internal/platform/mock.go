package platform

import (
	"sync"

	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/wmerr"
)

// Mock is a deterministic, in-memory WindowManagerPort used by the
// core's tests (§9 Design Notes: "provide an OS implementation and a
// deterministic mock for testing"). It never touches real OS state; it
// records calls and returns pre-seeded or synthesized data so reshuffle
// and command tests can run without a display server.
type Mock struct {
	mu sync.Mutex

	displays []DisplaySnapshot
	active   DisplayID
	spaces   map[DisplayID]WorkspaceID
	windows  map[WinID]*MockWindow
	apps     map[PSN]*MockApplication

	// Calls records every port method invoked, in order, for
	// assertions in tests that care about call sequencing.
	Calls []string
}

// NewMock returns a Mock with no displays or windows.
func NewMock() *Mock {
	return &Mock{
		spaces:  map[DisplayID]WorkspaceID{},
		windows: map[WinID]*MockWindow{},
		apps:    map[PSN]*MockApplication{},
	}
}

// SeedDisplay registers a display and its active workspace.
func (m *Mock) SeedDisplay(d DisplaySnapshot, active WorkspaceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displays = append(m.displays, d)
	m.spaces[d.ID] = active
	if len(m.displays) == 1 {
		m.active = d.ID
	}
}

// SeedWindow registers a window with an initial frame.
func (m *Mock) SeedWindow(w *MockWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[w.id] = w
}

func (m *Mock) record(op string) { m.Calls = append(m.Calls, op) }

// Window returns the seeded WindowPort for id, if any.
func (m *Mock) Window(id WinID) (WindowPort, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[id]
	return w, ok
}

func (m *Mock) NewApplication(psn PSN, pid PID) (ApplicationPort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("NewApplication")
	app := &MockApplication{psn: psn, pid: pid}
	m.apps[psn] = app
	return app, nil
}

func (m *Mock) AssociatedWindows(win WinID) ([]WinID, error) {
	m.record("AssociatedWindows")
	return nil, nil
}

func (m *Mock) PresentDisplays() ([]DisplaySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PresentDisplays")
	out := make([]DisplaySnapshot, len(m.displays))
	copy(out, m.displays)
	return out, nil
}

func (m *Mock) ActiveDisplayID() (DisplayID, error) {
	m.record("ActiveDisplayID")
	return m.active, nil
}

func (m *Mock) ActiveDisplaySpace(d DisplayID) (WorkspaceID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ActiveDisplaySpace")
	ws, ok := m.spaces[d]
	if !ok {
		return 0, wmerr.New(wmerr.NotFound, "Mock.ActiveDisplaySpace", "unknown display")
	}
	return ws, nil
}

func (m *Mock) CenterMouse(win *WinID, bounds geometry.Rect) error {
	m.record("CenterMouse")
	return nil
}

func (m *Mock) FindExistingApplicationWindows(app ApplicationPort, spaces []WorkspaceID) ([]WindowSnapshot, []WinID, error) {
	m.record("FindExistingApplicationWindows")
	return nil, nil, nil
}

func (m *Mock) FindWindowAtPoint(point geometry.Point) (WinID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("FindWindowAtPoint")
	var best WinID
	var bestArea int
	found := false
	for id, w := range m.windows {
		f := w.frame
		if point.X < f.Min.X || point.X >= f.Max.X || point.Y < f.Min.Y || point.Y >= f.Max.Y {
			continue
		}
		area := f.Width() * f.Height()
		if !found || area < bestArea {
			best, bestArea, found = id, area, true
		}
	}
	return best, found, nil
}

func (m *Mock) WindowsInWorkspace(ws WorkspaceID) ([]WinID, error) {
	m.record("WindowsInWorkspace")
	var out []WinID
	for id := range m.windows {
		out = append(out, id)
	}
	return out, nil
}

func (m *Mock) ResolveWindow(id WinID) (WindowPort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ResolveWindow")
	w, ok := m.windows[id]
	if !ok {
		return nil, wmerr.New(wmerr.NotFound, "Mock.ResolveWindow", "unknown window")
	}
	return w, nil
}

func (m *Mock) Quit() error {
	m.record("Quit")
	return nil
}

func (m *Mock) SetupConfigWatcher(path string) (Watcher, error) {
	m.record("SetupConfigWatcher")
	return noopWatcher{}, nil
}

type noopWatcher struct{}

func (noopWatcher) Close() error { return nil }

// MockWindow is the deterministic WindowPort used by Mock.
type MockWindow struct {
	id                WinID
	pid               PID
	title, role, sub  string
	childRole         string
	minimized         bool
	root              bool
	widthRatio        float64
	horizontalPadding int
	verticalPadding   int
	frame             geometry.Rect

	// Reposition/Resize record the last request so tests can assert
	// what the core asked for, and apply it to frame at once; the mock
	// never emits WindowMoved/WindowResized events of its own.
	LastReposition *geometry.Point
	LastResize     *geometry.Size
}

// NewMockWindow builds a MockWindow with a starting frame.
func NewMockWindow(id WinID, frame geometry.Rect) *MockWindow {
	return &MockWindow{id: id, frame: frame, root: true, widthRatio: 1}
}

func (w *MockWindow) ID() WinID             { return w.id }
func (w *MockWindow) Title() string         { return w.title }
func (w *MockWindow) Role() string          { return w.role }
func (w *MockWindow) Subrole() string       { return w.sub }
func (w *MockWindow) IsRoot() bool          { return w.root }
func (w *MockWindow) IsMinimized() bool     { return w.minimized }
func (w *MockWindow) ChildRole() string     { return w.childRole }
func (w *MockWindow) WidthRatio() float64   { return w.widthRatio }
func (w *MockWindow) PID() PID              { return w.pid }
func (w *MockWindow) HorizontalPadding() int { return w.horizontalPadding }

func (w *MockWindow) SetPadding(vertical, horizontal int) {
	w.verticalPadding, w.horizontalPadding = vertical, horizontal
}

func (w *MockWindow) Reposition(origin geometry.Point) error {
	w.LastReposition = &origin
	w.frame = w.frame.WithOrigin(origin)
	return nil
}

func (w *MockWindow) Resize(size geometry.Size, displayWidth int) error {
	w.LastResize = &size
	w.frame = w.frame.WithSize(size)
	w.widthRatio = float64(size.W) / float64(displayWidth)
	return nil
}

func (w *MockWindow) UpdateFrame(displayBounds geometry.Rect) (geometry.Rect, error) {
	return w.frame, nil
}

func (w *MockWindow) FocusWithRaise(psn PSN) error { return nil }

func (w *MockWindow) FocusWithoutRaise(psn PSN, current WinID, currentPSN PSN) error { return nil }

// Frame returns the window's current mock-tracked frame.
func (w *MockWindow) Frame() geometry.Rect { return w.frame }

// MockApplication is the deterministic ApplicationPort used by Mock.
type MockApplication struct {
	psn       PSN
	pid       PID
	bundleID  string
	frontmost bool
}

func (a *MockApplication) PSN() PSN           { return a.psn }
func (a *MockApplication) PID() PID           { return a.pid }
func (a *MockApplication) BundleID() string   { return a.bundleID }
func (a *MockApplication) Frontmost() bool    { return a.frontmost }
