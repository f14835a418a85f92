package platform

import "github.com/stripwm/stripwm/internal/geometry"

// Event is the sealed vocabulary the OS-facing half of the system
// produces and the core's triggers consume, one ring buffer, no ad-hoc
// callbacks (§9 Design Notes: message passing).
type Event interface{ isEvent() }

type (
	// WindowCreated carries an opaque accessibility element reference;
	// the core validates it and, if it passes role/subrole checks,
	// emits a SpawnWindow with the constructed Window.
	WindowCreated struct{ Element any }

	// SpawnWindow attaches newly constructed windows to their owning
	// Application and inserts them into the active strip.
	SpawnWindow struct{ Windows []WindowSnapshot }

	WindowDestroyed struct{ ID WinID }

	WindowMoved struct {
		ID     WinID
		Origin geometry.Point
	}

	WindowResized struct {
		ID   WinID
		Size geometry.Size
		// SelfIssued marks an echo of a resize the core itself applied
		// via a stack rebalance (StackAdjustedResize, §4.7/§9).
		SelfIssued bool
	}

	WindowMinimized   struct{ ID WinID }
	WindowDeminimized struct{ ID WinID }

	ApplicationHidden  struct{ PID PID }
	ApplicationVisible struct{ PID PID }

	ApplicationLaunched struct {
		PSN  PSN
		Name string
	}
	ApplicationTerminated struct{ PSN PSN }

	ApplicationFrontSwitched struct{ PSN PSN }

	WindowFocused struct{ ID WinID }

	MouseMoved    struct{ Point geometry.Point }
	MouseDown     struct{ Point geometry.Point }
	MouseDragged  struct{ Point geometry.Point }
	Swipe         struct{ Deltas []float64 }
	SpaceChanged  struct{}
	DisplayAdded  struct{ ID DisplayID }
	DisplayRemoved struct{ ID DisplayID }
	DisplayMoved  struct{ ID DisplayID }
	DisplayChanged struct{}

	MissionControlShow struct{}
	MissionControlExit struct{}

	ConfigRefresh struct{ Path string }

	// ProcessesLoaded signals the end of startup Phase A.
	ProcessesLoaded struct{}

	Exit struct{}
)

func (WindowCreated) isEvent()            {}
func (SpawnWindow) isEvent()              {}
func (WindowDestroyed) isEvent()          {}
func (WindowMoved) isEvent()              {}
func (WindowResized) isEvent()            {}
func (WindowMinimized) isEvent()          {}
func (WindowDeminimized) isEvent()        {}
func (ApplicationHidden) isEvent()        {}
func (ApplicationVisible) isEvent()       {}
func (ApplicationLaunched) isEvent()      {}
func (ApplicationTerminated) isEvent()    {}
func (ApplicationFrontSwitched) isEvent() {}
func (WindowFocused) isEvent()            {}
func (MouseMoved) isEvent()               {}
func (MouseDown) isEvent()                {}
func (MouseDragged) isEvent()             {}
func (Swipe) isEvent()                    {}
func (SpaceChanged) isEvent()             {}
func (DisplayAdded) isEvent()             {}
func (DisplayRemoved) isEvent()           {}
func (DisplayMoved) isEvent()             {}
func (DisplayChanged) isEvent()           {}
func (MissionControlShow) isEvent()       {}
func (MissionControlExit) isEvent()       {}
func (ConfigRefresh) isEvent()            {}
func (ProcessesLoaded) isEvent()          {}
func (Exit) isEvent()                     {}

// WindowSnapshot is the platform-reported data the core needs to
// construct a Window entity, independent of the accessibility element
// type behind it.
type WindowSnapshot struct {
	ID       WinID
	OwnerPID PID
	Frame    geometry.Rect
	Role     string
	Subrole  string
	Title    string
	BundleID string
	Existing bool
}

// DisplaySnapshot is the platform-reported data for one monitor.
type DisplaySnapshot struct {
	ID            DisplayID
	Bounds        geometry.Rect
	MenubarHeight int
	Dock          *DockPosition
	Workspaces    []WorkspaceID
}
