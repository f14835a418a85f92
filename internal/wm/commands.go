package wm

import (
	"github.com/stripwm/stripwm/internal/config"
	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/layout"
	"github.com/stripwm/stripwm/internal/platform"
)

// Dispatcher applies Commands (§4.3) against a Store through a
// WindowManagerPort. It issues the focus/raise/center-mouse calls that
// commands need; the event loop and startup issue focus calls of their
// own.
type Dispatcher struct {
	store *Store
	port  platform.WindowManagerPort
	cfg   *config.Config
}

// NewDispatcher builds a command Dispatcher.
func NewDispatcher(store *Store, port platform.WindowManagerPort, cfg *config.Config) *Dispatcher {
	return &Dispatcher{store: store, port: port, cfg: cfg}
}

// Dispatch applies cmd, returning any follow-up Commands and Events the
// caller should handle next (the scheduler runs them within the same
// tick): follow-up Commands for
// things like Focus(N/S) falling through to Mouse(ToNextDisplay) when
// no in-strip target exists (§4.3), and follow-up Events for things
// like Mouse(ToNextDisplay) emitting a MouseMoved to hand off to
// focus-follows-mouse on the other display (§4.3 "emit MouseMoved{point}
// to trigger focus-follows-mouse").
func (d *Dispatcher) Dispatch(cmd platform.Command) ([]platform.Command, []platform.Event) {
	switch c := cmd.(type) {
	case platform.CmdWindow:
		return d.dispatchOperation(c.Op), nil
	case platform.CmdMouse:
		return nil, d.dispatchMouseMove(c.Move)
	case platform.CmdQuit:
		return nil, nil
	case platform.CmdPrintState:
		d.store.PrintState()
		return nil, nil
	default:
		return nil, nil
	}
}

func (d *Dispatcher) dispatchOperation(op platform.Operation) []platform.Command {
	focusedID, ok := d.store.FocusedWindowID()
	if !ok {
		return nil
	}
	switch o := op.(type) {
	case platform.OpFocus:
		return d.focus(o.Dir, focusedID)
	case platform.OpSwap:
		return d.swap(o.Dir, focusedID)
	case platform.OpCenter:
		d.center(focusedID)
	case platform.OpResize:
		d.resize(focusedID)
	case platform.OpFullWidth:
		d.fullWidth(focusedID)
	case platform.OpManage:
		d.manage(focusedID)
	case platform.OpEqualize:
		d.equalize(focusedID)
	case platform.OpStack:
		d.stack(focusedID, o.Stack)
	case platform.OpToNextDisplay:
		d.toNextDisplay(focusedID)
	}
	return nil
}

func (d *Dispatcher) dispatchMouseMove(mv platform.MouseMove) []platform.Event {
	switch mv.(type) {
	case platform.MouseToNextDisplay:
		return d.mouseToNextDisplay()
	}
	return nil
}

func (d *Dispatcher) activeStrip() (displayID, wsID EntityID, strip *layout.Strip, ok bool) {
	displayID, ok = d.store.ActiveDisplayID()
	if !ok {
		return
	}
	wsID, ok = d.store.ActiveWorkspaceID()
	if !ok {
		return
	}
	ws, err := d.store.Workspace(wsID)
	if err != nil || ws.Strip == nil {
		ok = false
		return
	}
	return displayID, wsID, ws.Strip, true
}

// getWindowInDirection resolves a directional neighbour lookup:
// West/East use left/right neighbours, First/Last the top of the
// first/last column, North/South the stack member above/below (none
// outside a Stack).
func getWindowInDirection(strip *layout.Strip, dir platform.Direction, focused layout.WinID) (layout.WinID, bool) {
	switch dir {
	case platform.West:
		return strip.LeftNeighbour(focused)
	case platform.East:
		return strip.RightNeighbour(focused)
	case platform.First:
		col, err := strip.First()
		if err != nil {
			return 0, false
		}
		return col.Top()
	case platform.Last:
		col, err := strip.Last()
		if err != nil {
			return 0, false
		}
		return col.Top()
	case platform.North, platform.South:
		idx, err := strip.IndexOf(focused)
		if err != nil {
			return 0, false
		}
		col, err := strip.Get(idx)
		if err != nil || col.Kind != layout.Stack {
			return 0, false
		}
		pos, ok := col.PositionOf(focused)
		if !ok {
			return 0, false
		}
		if dir == platform.North {
			pos--
		} else {
			pos++
		}
		if pos < 0 || pos >= len(col.Windows) {
			return 0, false
		}
		return col.Windows[pos], true
	}
	return 0, false
}

// focus handles Focus(direction) (§4.3): locate the neighbour, raise
// and focus it through the platform port, and reshuffle around it. If
// no target exists and the direction is vertical, a cross-display
// mouse hop is requested instead.
func (d *Dispatcher) focus(dir platform.Direction, focusedID EntityID) []platform.Command {
	_, _, strip, ok := d.activeStrip()
	if !ok {
		return nil
	}
	fw, err := d.store.Window(focusedID)
	if err != nil {
		return nil
	}
	next, ok := getWindowInDirection(strip, dir, fw.ID)
	if !ok {
		if dir == platform.North || dir == platform.South {
			if d.hasVerticallyAdjacentDisplay() {
				return []platform.Command{platform.CmdMouse{Move: platform.MouseToNextDisplay{}}}
			}
		}
		return nil
	}
	nextID, ok := d.store.WindowByWinID(next)
	if !ok {
		return nil
	}
	nw, err := d.store.Window(nextID)
	if err != nil {
		return nil
	}
	app, err := d.store.Application(nw.ApplicationID)
	if err == nil && nw.Port != nil {
		_ = nw.Port.FocusWithRaise(app.PSN)
	}
	d.store.SetFocused(nextID)
	d.store.ReshuffleAround(nextID)
	return nil
}

// hasVerticallyAdjacentDisplay reports whether another display sits
// directly above or below the active one (used by Focus(N/S) and
// Swap(N/S) fallthrough, §4.3/§8 S6).
func (d *Dispatcher) hasVerticallyAdjacentDisplay() bool {
	activeID, ok := d.store.ActiveDisplayID()
	if !ok {
		return false
	}
	active, err := d.store.Display(activeID)
	if err != nil {
		return false
	}
	found := false
	d.store.displays.Each(func(id EntityID, other *Display) {
		if id == activeID {
			return
		}
		if other.Bounds.Min.Y != active.Bounds.Min.Y {
			found = true
		}
	})
	return found
}

// swap handles Swap(direction) (§4.3).
func (d *Dispatcher) swap(dir platform.Direction, focusedID EntityID) []platform.Command {
	displayID, _, strip, ok := d.activeStrip()
	if !ok {
		return nil
	}
	fw, err := d.store.Window(focusedID)
	if err != nil {
		return nil
	}
	other, ok := getWindowInDirection(strip, dir, fw.ID)
	if !ok {
		if dir == platform.North || dir == platform.South {
			if d.hasVerticallyAdjacentDisplay() {
				return []platform.Command{platform.CmdWindow{Op: platform.OpToNextDisplay{}}}
			}
		}
		return nil
	}

	focusedIdx, err := strip.IndexOf(fw.ID)
	if err != nil {
		return nil
	}
	otherIdx, err := strip.IndexOf(other)
	if err != nil {
		return nil
	}

	otherID, ok := d.store.WindowByWinID(other)
	if !ok {
		return nil
	}

	// Snap to the other column's x; at either strip end that is simply
	// the edge column's x, otherwise it's other's own top-left.
	oFrame, _ := d.store.MovingFrame(otherID, displayID)
	var newOrigin geometry.Point
	if otherIdx == 0 || otherIdx == strip.Len()-1 {
		frame, _ := d.store.MovingFrame(focusedID, displayID)
		newOrigin = geometry.Point{X: oFrame.Min.X, Y: frame.Min.Y}
	} else {
		newOrigin = oFrame.Min
	}

	for focusedIdx != otherIdx {
		if focusedIdx < otherIdx {
			_ = strip.Swap(focusedIdx, focusedIdx+1)
			focusedIdx++
		} else {
			_ = strip.Swap(focusedIdx, focusedIdx-1)
			focusedIdx--
		}
	}

	d.store.RepositionEntity(focusedID, newOrigin, displayID)
	d.store.ReshuffleAround(focusedID)
	return nil
}

// center handles Center (§4.3).
func (d *Dispatcher) center(focusedID EntityID) {
	displayID, ok := d.store.ActiveDisplayID()
	if !ok {
		return
	}
	display, err := d.store.Display(displayID)
	if err != nil {
		return
	}
	frame, ok := d.store.MovingFrame(focusedID, displayID)
	if !ok {
		return
	}
	origin := geometry.FromCenterSize(display.Bounds.Center(), frame.Size()).Min
	d.store.RepositionEntity(focusedID, origin, displayID)
	d.centerMouseInBounds(display.Bounds)
	d.store.ReshuffleAround(focusedID)
}

func (d *Dispatcher) centerMouseInBounds(bounds geometry.Rect) {
	_ = d.port.CenterMouse(nil, bounds)
}

// resize handles Resize (§4.3): cycle through the configured preset
// column widths.
func (d *Dispatcher) resize(focusedID EntityID) {
	displayID, ok := d.store.ActiveDisplayID()
	if !ok {
		return
	}
	display, err := d.store.Display(displayID)
	if err != nil {
		return
	}
	frame, ok := d.store.MovingFrame(focusedID, displayID)
	if !ok {
		return
	}
	_, padRight, _, padLeft := d.cfg.EdgePadding()
	paddedWidth := displayHeightWidth(display, padLeft, padRight)

	currentRatio := float64(frame.Width()) / float64(paddedWidth)
	presets := d.cfg.PresetColumnWidths()
	next := presets[0]
	for _, p := range presets {
		if p > currentRatio+0.05 {
			next = p
			break
		}
	}
	newWidth := int(next*float64(paddedWidth) + 0.5)
	centerX := frame.Min.X + frame.Width()/2
	newOrigin := geometry.Point{X: centerX - newWidth/2, Y: frame.Min.Y}
	maxX := display.Bounds.Max.X - padRight
	if newOrigin.X+newWidth > maxX {
		newOrigin.X = maxX - newWidth
	}

	d.store.ResizeEntity(focusedID, geometry.Size{W: newWidth, H: frame.Height()}, displayID)
	d.store.RepositionEntity(focusedID, newOrigin, displayID)
	d.store.ReshuffleAround(focusedID)
}

func displayHeightWidth(display *Display, padLeft, padRight int) int {
	return display.Bounds.Width() - padLeft - padRight
}

// fullWidth handles FullWidth (§4.3).
func (d *Dispatcher) fullWidth(focusedID EntityID) {
	displayID, _, strip, ok := d.activeStrip()
	if !ok {
		return
	}
	display, err := d.store.Display(displayID)
	if err != nil {
		return
	}
	w, err := d.store.Window(focusedID)
	if err != nil {
		return
	}
	_, padRight, _, padLeft := d.cfg.EdgePadding()
	paddedWidth := displayHeightWidth(display, padLeft, padRight)

	if marker, isFull := d.store.fullWidth.Get(focusedID); isFull {
		d.store.fullWidth.Remove(focusedID)
		frame, _ := d.store.MovingFrame(focusedID, displayID)
		newWidth := int(marker.WidthRatio*float64(paddedWidth) + 0.5)
		maxX := display.Bounds.Max.X - padRight - newWidth
		newX := frame.Min.X
		if newX > maxX {
			newX = maxX
		}
		d.store.ResizeEntity(focusedID, geometry.Size{W: newWidth, H: frame.Height()}, displayID)
		d.store.RepositionEntity(focusedID, geometry.Point{X: newX, Y: frame.Min.Y}, displayID)
		if marker.WasStacked {
			_ = strip.Stack(w.ID)
		}
	} else {
		frame, _ := d.store.MovingFrame(focusedID, displayID)
		paddedWidthF := float64(paddedWidth)
		ratio := float64(frame.Width()) / paddedWidthF

		wasStacked := false
		if idx, err := strip.IndexOf(w.ID); err == nil {
			if col, err := strip.Get(idx); err == nil && col.Kind == layout.Stack {
				wasStacked = true
			}
		}
		if wasStacked {
			_ = strip.Unstack(w.ID)
		}
		d.store.fullWidth.Set(focusedID, FullWidthMarker{WidthRatio: ratio, WasStacked: wasStacked})
		d.store.ResizeEntity(focusedID, geometry.Size{W: paddedWidth, H: frame.Height()}, displayID)
		d.store.RepositionEntity(focusedID, geometry.Point{X: display.Bounds.Min.X + padLeft, Y: frame.Min.Y}, displayID)
	}
	d.store.ReshuffleAround(focusedID)
}

// equalize handles Equalize (§4.3): redistribute a focused stack's
// members to an even share of the display height.
func (d *Dispatcher) equalize(focusedID EntityID) {
	displayID, _, strip, ok := d.activeStrip()
	if !ok {
		return
	}
	display, err := d.store.Display(displayID)
	if err != nil {
		return
	}
	w, err := d.store.Window(focusedID)
	if err != nil {
		return
	}
	idx, err := strip.IndexOf(w.ID)
	if err != nil {
		return
	}
	col, err := strip.Get(idx)
	if err != nil || col.Kind != layout.Stack {
		return
	}
	n := len(col.Windows)
	if n == 0 {
		return
	}
	eachHeight := displayHeight(display) / n
	for _, wid := range col.Windows {
		id, ok := d.store.WindowByWinID(wid)
		if !ok {
			continue
		}
		frame, ok := d.store.MovingFrame(id, displayID)
		if !ok {
			continue
		}
		d.store.ResizeEntity(id, geometry.Size{W: frame.Width(), H: eachHeight}, displayID)
	}
	d.store.ReshuffleAround(focusedID)
}

// stack handles Stack(bool) (§4.3): true stacks, false unstacks.
func (d *Dispatcher) stack(focusedID EntityID, doStack bool) {
	_, _, strip, ok := d.activeStrip()
	if !ok {
		return
	}
	w, err := d.store.Window(focusedID)
	if err != nil {
		return
	}
	if doStack {
		_ = strip.Stack(w.ID)
	} else {
		_ = strip.Unstack(w.ID)
	}
	d.store.ReshuffleAround(focusedID)
}

// manage handles Manage (§4.3): toggle Unmanaged(Floating).
func (d *Dispatcher) manage(focusedID EntityID) {
	if kind, ok := d.store.unmanaged.Get(focusedID); ok && kind == Floating {
		d.store.RemoveUnmanaged(focusedID)
		return
	}
	d.store.AddUnmanaged(focusedID, Floating)
}

// toNextDisplay handles Window(ToNextDisplay) (§4.3): move the focused
// window to the center of the other display, remove it from the
// current strip, and reshuffle the neighbour left behind.
func (d *Dispatcher) toNextDisplay(focusedID EntityID) {
	currentDisplayID, _, strip, ok := d.activeStrip()
	if !ok {
		return
	}
	otherID, ok := d.otherDisplay(currentDisplayID)
	if !ok {
		return
	}
	other, err := d.store.Display(otherID)
	if err != nil {
		return
	}
	w, err := d.store.Window(focusedID)
	if err != nil {
		return
	}

	rightOf, hasRight := strip.RightNeighbour(w.ID)
	strip.Remove(w.ID)

	frame, _ := d.store.MovingFrame(focusedID, currentDisplayID)
	origin := geometry.FromCenterSize(other.Bounds.Center(), frame.Size()).Min
	d.store.RepositionEntity(focusedID, origin, otherID)
	d.centerMouseInBounds(other.Bounds)

	if hasRight {
		if rid, ok := d.store.WindowByWinID(rightOf); ok {
			d.store.ReshuffleAround(rid)
		}
	}
}

// otherDisplay returns the id of a display other than current, if one
// exists ("the other display" for a two-display setup; with more than
// two, one of the others is returned, and which one is not defined
// since displays are kept in a map).
func (d *Dispatcher) otherDisplay(current EntityID) (EntityID, bool) {
	var found EntityID
	ok := false
	d.store.displays.Each(func(id EntityID, _ *Display) {
		if ok || id == current {
			return
		}
		found, ok = id, true
	})
	return found, ok
}

// mouseToNextDisplay handles Mouse(ToNextDisplay) (§4.3): warp the
// mouse to the window with the largest visible-area intersection on
// the non-active display, clear the FFM flag, and emit a MouseMoved at
// that window's center so focus-follows-mouse takes over from there.
func (d *Dispatcher) mouseToNextDisplay() []platform.Event {
	activeID, ok := d.store.ActiveDisplayID()
	if !ok {
		return nil
	}
	otherDisplayID, ok := d.otherDisplay(activeID)
	if !ok {
		return nil
	}
	other, err := d.store.Display(otherDisplayID)
	if err != nil {
		return nil
	}
	var otherWsID EntityID
	foundWs := false
	d.store.workspaces.Each(func(id EntityID, ws *Workspace) {
		if foundWs || ws.DisplayID != otherDisplayID {
			return
		}
		if _, isActive := d.store.activeWorkspace.Get(id); isActive {
			otherWsID, foundWs = id, true
		}
	})
	if !foundWs {
		return nil
	}
	ws, err := d.store.Workspace(otherWsID)
	if err != nil || ws.Strip == nil {
		return nil
	}

	var best layout.WinID
	bestArea := -1
	found := false
	for _, wid := range ws.Strip.AllWindows() {
		id, ok := d.store.WindowByWinID(wid)
		if !ok {
			continue
		}
		frame, ok := d.store.MovingFrame(id, otherDisplayID)
		if !ok {
			continue
		}
		visible := frame.Intersect(other.Bounds)
		area := maxOf(visible.Width(), 0) * maxOf(visible.Height(), 0)
		if !found || area > bestArea {
			best, bestArea, found = wid, area, true
		}
	}
	if !found {
		return nil
	}
	id, _ := d.store.WindowByWinID(best)
	frame, ok := d.store.MovingFrame(id, otherDisplayID)
	if !ok {
		return nil
	}
	if err := d.port.CenterMouse(&best, frame); err != nil {
		return nil
	}
	d.store.SetFFMFlag(nil)
	return []platform.Event{platform.MouseMoved{Point: frame.Center()}}
}
