// Package wm is the core domain: the entity store, the command
// dispatcher, the reconciliation/animation passes, and startup and
// recovery. It depends only on internal/geometry, internal/layout,
// internal/platform, internal/config, and internal/wmerr — never on
// the scheduler or CLI layers above it.
package wm

import (
	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/layout"
	"github.com/stripwm/stripwm/internal/platform"
)

// EntityID is the store's stable, opaque row identifier. Relations
// between entities are stored as EntityID-keyed fields, never as raw
// pointers, so deletion never leaves a dangling reference (§9 Design
// Notes: entity store & markers).
type EntityID uint64

// Display mirrors one physical monitor.
type Display struct {
	PlatformID    platform.DisplayID
	Bounds        geometry.Rect
	MenubarHeight int
	Dock          *platform.DockPosition
}

// Workspace is the entity backing one LayoutStrip; DisplayID is the
// owning Display's EntityID, stored by id rather than by pointer.
type Workspace struct {
	PlatformID   platform.WorkspaceID
	DisplayID    EntityID
	Strip        *layout.Strip
	ScrollOffset int
}

// Process mirrors one OS process, graduating to own an Application
// once observable.
type Process struct {
	PSN        platform.PSN
	Name       string
	Ready      bool
	Observable bool
	Port       platform.ProcessPort
}

// Application owns a set of Windows once its Process is ready.
type Application struct {
	PSN        platform.PSN
	PID        platform.PID
	BundleID   string
	Frontmost  bool
	ProcessID  EntityID
	Port       platform.ApplicationPort
}

// Window is the per-window record. ApplicationID is stored by id; the
// window's markers live in the Store's sparse component maps, not on
// this struct, so adding/removing a marker never requires touching
// Window itself.
type Window struct {
	ID                layout.WinID
	ApplicationID     EntityID
	Frame             geometry.Rect
	Role, Subrole     string
	ChildRole         string
	Title             string
	BundleID          string
	Minimized         bool
	IsRoot            bool
	WidthRatio        float64
	VerticalPadding   int
	HorizontalPadding int
	Port              platform.WindowPort
}

// UnmanagedKind is the tagged variant behind the Unmanaged marker.
type UnmanagedKind int

const (
	Floating UnmanagedKind = iota
	Minimized
	Hidden
)

// FullWidthMarker persists the pre-toggle state needed to restore a
// window when FullWidth is toggled back off.
type FullWidthMarker struct {
	WidthRatio float64
	WasStacked bool
}

// RepositionMarker is the animation target for a window's origin —
// the "intent frame" the feedback-isolation design reads instead of
// the OS-observed frame while animation is in flight.
type RepositionMarker struct {
	Origin    geometry.Point
	DisplayID EntityID
}

// ResizeMarker is the animation target for a window's size.
type ResizeMarker struct {
	Size      geometry.Size
	DisplayID EntityID
}

// TimeoutKind distinguishes the cleanup action a TimeoutMarker runs on
// expiry (§5 Cancellation: "a Timeout entity despawns on its own tick
// when its deadline elapses").
type TimeoutKind int

const (
	// TimeoutStrayFocusRetry re-fires WindowFocused for a window id
	// that wasn't found the first time (§4.5 WindowFocused).
	TimeoutStrayFocusRetry TimeoutKind = iota
	// TimeoutWindowDragSettle reshuffles around a window once dragging
	// has been idle for the timeout's duration (§4.5 MouseDragged).
	TimeoutWindowDragSettle
	// TimeoutProcessReady drops its Process entity when the deadline
	// passes, whatever the Process's Observable and Ready flags say
	// (§3 Lifecycle, §4.5 ApplicationLaunched).
	TimeoutProcessReady
	// TimeoutOrphanWorkspace despawns a Workspace whose display hasn't
	// reappeared within the grace period (§4.5 DisplayRemoved, §4.7).
	TimeoutOrphanWorkspace
)

// TimeoutMarker is a cooperative, self-expiring entity-local deadline.
// Message is a human-readable reason carried for logging (§5
// Cancellation); Kind selects the cleanup action the scheduler's
// timeout-ticking system runs when DeadlineSeconds, measured against
// the Store's own running clock, elapses.
type TimeoutMarker struct {
	Kind            TimeoutKind
	DeadlineSeconds float64
	Message         string
}
