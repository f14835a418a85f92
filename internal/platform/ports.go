package platform

import "github.com/stripwm/stripwm/internal/geometry"

// WindowManagerPort is the capability surface the core uses to read
// and mutate OS-level window/display/process state (§6.2). The core
// never talks to accessibility APIs directly; it only ever calls
// through this interface, so the production backend (out of scope
// here) and the deterministic Mock are interchangeable.
type WindowManagerPort interface {
	// NewApplication registers a freshly observed process as an
	// Application and returns its handle.
	NewApplication(psn PSN, pid PID) (ApplicationPort, error)

	// AssociatedWindows returns child sheets/drawers of win.
	AssociatedWindows(win WinID) ([]WinID, error)

	// PresentDisplays enumerates the currently connected displays and
	// the workspace ids present on each.
	PresentDisplays() ([]DisplaySnapshot, error)

	// ActiveDisplayID returns the display currently under the menu bar.
	ActiveDisplayID() (DisplayID, error)

	// ActiveDisplaySpace returns the active workspace of a display.
	ActiveDisplaySpace(d DisplayID) (WorkspaceID, error)

	// CenterMouse warps the mouse cursor to the center of bounds, or
	// of win if non-nil.
	CenterMouse(win *WinID, bounds geometry.Rect) error

	// FindExistingApplicationWindows resolves the window list for an
	// already-running application and reports which of the workspace's
	// reported windows aren't in that list (candidates for brute-force
	// element-id search, §4.7 Phase C).
	FindExistingApplicationWindows(app ApplicationPort, spaces []WorkspaceID) (found []WindowSnapshot, offscreen []WinID, err error)

	// FindWindowAtPoint resolves the topmost window under point.
	FindWindowAtPoint(point geometry.Point) (WinID, bool, error)

	// WindowsInWorkspace lists the windows the OS currently reports in
	// the given workspace.
	WindowsInWorkspace(ws WorkspaceID) ([]WinID, error)

	// ResolveWindow returns the WindowPort capability for a window id
	// the platform has already reported via SpawnWindow/WindowCreated.
	ResolveWindow(id WinID) (WindowPort, error)

	// Quit requests the platform layer shut down cleanly.
	Quit() error

	// SetupConfigWatcher starts (or replaces) the filesystem watch on
	// the resolved config path and returns a handle the caller can
	// close; ConfigRefresh events are emitted through the platform's
	// event channel, not returned here.
	SetupConfigWatcher(path string) (Watcher, error)
}

// Watcher is a closable handle over a filesystem watch.
type Watcher interface {
	Close() error
}

// WindowPort is the per-window capability surface.
type WindowPort interface {
	ID() WinID
	Title() string
	Role() string
	Subrole() string
	IsRoot() bool
	IsMinimized() bool
	ChildRole() string
	WidthRatio() float64
	PID() PID
	HorizontalPadding() int
	SetPadding(vertical, horizontal int)

	// Reposition requests the platform move the window so its origin
	// becomes origin. It is a request, not a synchronous mutation: the
	// platform reports the resulting frame back through WindowMoved.
	Reposition(origin geometry.Point) error

	// Resize requests the platform resize the window. displayWidth is
	// supplied so width-ratio-relative backends can recompute it.
	Resize(size geometry.Size, displayWidth int) error

	// UpdateFrame refreshes the window's cached frame from the OS,
	// clamped against the owning display's bounds.
	UpdateFrame(displayBounds geometry.Rect) (geometry.Rect, error)

	FocusWithRaise(psn PSN) error
	FocusWithoutRaise(psn PSN, current WinID, currentPSN PSN) error
}

// ApplicationPort is the per-application capability surface.
type ApplicationPort interface {
	PSN() PSN
	PID() PID
	BundleID() string
	Frontmost() bool
}

// ProcessPort is the per-process capability surface.
type ProcessPort interface {
	PSN() PSN
	Name() string
	Ready() bool
	Observable() bool
}
