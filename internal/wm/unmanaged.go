package wm

import (
	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/layout"
)

// popOffset is the fixed pixel offset the floating-pop search tries in
// sequence (§4.4).
const popOffset = 32

// popCandidates is the fixed search order the floating-pop policy
// tries until a candidate fits entirely within the display bounds.
var popCandidates = []geometry.Point{
	{X: popOffset, Y: popOffset},
	{X: popOffset, Y: -popOffset},
	{X: -popOffset, Y: popOffset},
	{X: -popOffset, Y: -popOffset},
	{X: popOffset, Y: 0},
	{X: -popOffset, Y: 0},
	{X: 0, Y: popOffset},
	{X: 0, Y: -popOffset},
}

// AddUnmanaged marks id Unmanaged(kind) and applies the §4.4 policy for
// that kind: Floating shrinks/pops the window and drops it from the
// strip; Minimized/Hidden give away focus and drop it from the strip.
func (s *Store) AddUnmanaged(id EntityID, kind UnmanagedKind) {
	s.unmanaged.Set(id, kind)

	displayID, ok := s.ActiveDisplayID()
	if !ok {
		return
	}
	wsID, ok := s.ActiveWorkspaceID()
	if !ok {
		return
	}
	ws, err := s.Workspace(wsID)
	if err != nil || ws.Strip == nil {
		return
	}
	w, err := s.Window(id)
	if err != nil {
		return
	}
	display, err := s.Display(displayID)
	if err != nil {
		return
	}

	switch kind {
	case Floating:
		s.applyFloatPop(id, display, displayID)
		s.giveAwayFocus(ws, w.ID, id)
		ws.Strip.Remove(w.ID)
	case Minimized, Hidden:
		s.giveAwayFocus(ws, w.ID, id)
		ws.Strip.Remove(w.ID)
	}
}

// RemoveUnmanaged clears the Unmanaged marker and re-appends the
// window to the active strip (§4.4 "On Unmanaged removed").
func (s *Store) RemoveUnmanaged(id EntityID) {
	if _, ok := s.unmanaged.Get(id); !ok {
		return
	}
	s.unmanaged.Remove(id)

	wsID, ok := s.ActiveWorkspaceID()
	if !ok {
		return
	}
	ws, err := s.Workspace(wsID)
	if err != nil || ws.Strip == nil {
		return
	}
	w, err := s.Window(id)
	if err != nil {
		return
	}
	ws.Strip.Append(w.ID)
	s.ReshuffleAround(id)
}

// applyFloatPop shrinks a newly-floating window to at most 4/5 of the
// display in each dimension, clamps inside the display bounds, then
// tries the fixed offset search order, keeping the first candidate
// that fits entirely within bounds (§4.4).
func (s *Store) applyFloatPop(id EntityID, display *Display, displayID EntityID) {
	frame, ok := s.MovingFrame(id, displayID)
	if !ok {
		return
	}
	bounds := display.Bounds
	maxW := bounds.Width() * 4 / 5
	maxH := bounds.Height() * 4 / 5
	size := frame.Size()
	if size.W > maxW {
		size.W = maxW
	}
	if size.H > maxH {
		size.H = maxH
	}

	origin := frame.Min
	if origin.X < bounds.Min.X {
		origin.X = bounds.Min.X
	}
	if origin.Y < bounds.Min.Y {
		origin.Y = bounds.Min.Y
	}
	if origin.X+size.W > bounds.Max.X {
		origin.X = bounds.Max.X - size.W
	}
	if origin.Y+size.H > bounds.Max.Y {
		origin.Y = bounds.Max.Y - size.H
	}

	fits := func(o geometry.Point) bool {
		r := geometry.NewRect(o, size)
		return r.Min.X >= bounds.Min.X && r.Min.Y >= bounds.Min.Y &&
			r.Max.X <= bounds.Max.X && r.Max.Y <= bounds.Max.Y
	}

	chosen := origin
	for _, cand := range popCandidates {
		offset := geometry.Point{X: origin.X + cand.X, Y: origin.Y + cand.Y}
		if fits(offset) {
			chosen = offset
			break
		}
	}

	s.ResizeEntity(id, size, displayID)
	s.RepositionEntity(id, chosen, displayID)
}

// giveAwayFocus reassigns Focused to a left/right neighbour of w (or
// the strip's first column) when w is losing management. No-op if w
// was not focused.
func (s *Store) giveAwayFocus(ws *Workspace, w layout.WinID, id EntityID) {
	if _, focused := s.focused.Get(id); !focused {
		return
	}
	var next layout.WinID
	found := false
	if n, ok := ws.Strip.LeftNeighbour(w); ok {
		next, found = n, true
	} else if n, ok := ws.Strip.RightNeighbour(w); ok {
		next, found = n, true
	} else if col, err := ws.Strip.First(); err == nil {
		if top, ok := col.Top(); ok && top != w {
			next, found = top, true
		}
	}
	if !found {
		s.focused.Remove(id)
		return
	}
	if nextID, ok := s.WindowByWinID(next); ok {
		s.SetFocused(nextID)
		s.ReshuffleAround(nextID)
	}
}
