package wm

import (
	"github.com/stripwm/stripwm/internal/config"
	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/layout"
	"github.com/stripwm/stripwm/internal/platform"
)

// offScreenThreshold is the minimum visible width (px) a window needs
// within the padded viewport before it is treated as a sliver and
// pinned to the screen edge instead of laid out normally.
const offScreenThreshold = 20

// MovingFrame returns w's frame as it should be read for layout
// purposes: the live OS frame, overridden by an in-flight Reposition
// or Resize marker targeting displayID. This is the "intent frame"
// read that keeps animation from feeding back into its own inputs.
func (s *Store) MovingFrame(id EntityID, displayID EntityID) (geometry.Rect, bool) {
	w, ok := s.windows.Get(id)
	if !ok {
		return geometry.Rect{}, false
	}
	frame := w.Frame
	size := frame.Size()
	if rm, ok := s.reposition.Get(id); ok && rm.DisplayID == displayID {
		frame = frame.WithOrigin(rm.Origin)
		frame.Max = frame.Min.Add(geometry.Point{X: size.W, Y: size.H})
	}
	if zm, ok := s.resize.Get(id); ok && zm.DisplayID == displayID {
		frame.Max = geometry.Point{X: frame.Min.X + zm.Size.W, Y: frame.Min.Y + zm.Size.H}
	}
	return frame, true
}

// ResizeEntity queues a Resize marker for id, ignoring non-positive
// sizes (a window can never be told to shrink to nothing).
func (s *Store) ResizeEntity(id EntityID, size geometry.Size, displayID EntityID) {
	if size.W <= 0 || size.H <= 0 {
		return
	}
	s.resize.Set(id, ResizeMarker{Size: size, DisplayID: displayID})
}

// RepositionEntity queues a Reposition marker for id.
func (s *Store) RepositionEntity(id EntityID, origin geometry.Point, displayID EntityID) {
	s.reposition.Set(id, RepositionMarker{Origin: origin, DisplayID: displayID})
}

// ReshuffleAround marks id so the next reconcile pass recomputes the
// layout strip viewport around it.
func (s *Store) ReshuffleAround(id EntityID) {
	s.reshuffleAround.Set(id, struct{}{})
}

// winIDFrameLookup builds a layout.FrameLookup closure over the
// store's window index, so Strip methods can be driven without the
// layout package ever knowing about EntityID.
func (s *Store) winIDFrameLookup(displayID EntityID) layout.FrameLookup {
	return func(wid layout.WinID) (geometry.Rect, bool) {
		id, ok := s.winIndex[wid]
		if !ok {
			return geometry.Rect{}, false
		}
		return s.MovingFrame(id, displayID)
	}
}

func (s *Store) windowHorizontalPadding(wid layout.WinID) int {
	id, ok := s.winIndex[wid]
	if !ok {
		return 0
	}
	w, ok := s.windows.Get(id)
	if !ok {
		return 0
	}
	return w.HorizontalPadding
}

func displayHeight(d *Display) int {
	dockSize := 0
	if d.Dock != nil && d.Dock.Kind == platform.DockBottom {
		dockSize = d.Dock.Offset
	}
	return d.Bounds.Height() - dockSize
}

// exposeWindow computes the frame w should occupy to be scrolled back
// into the visible viewport, clamped against any dock reservation.
func (s *Store) exposeWindow(id EntityID, displayID EntityID, d *Display, cfg *config.Config) (geometry.Rect, bool) {
	_, padRight, _, padLeft := cfg.EdgePadding()
	bounds := d.Bounds
	frame, ok := s.MovingFrame(id, displayID)
	if !ok {
		return geometry.Rect{}, false
	}
	size := frame.Size()

	if frame.Max.X > bounds.Max.X-padRight {
		frame.Min.X = bounds.Max.X - padRight - size.W
	} else if frame.Min.X < bounds.Min.X+padLeft {
		frame.Min.X = bounds.Min.X + padLeft
	}

	if d.Dock != nil {
		switch d.Dock.Kind {
		case platform.DockLeft:
			if frame.Min.X < bounds.Min.X+d.Dock.Offset {
				frame.Min.X = bounds.Min.X + d.Dock.Offset
			}
		case platform.DockRight:
			if frame.Min.X+size.W > bounds.Max.X-d.Dock.Offset {
				frame.Min.X = bounds.Max.X - size.W - d.Dock.Offset
			}
		}
	}
	frame.Max.X = frame.Min.X + size.W
	return frame, true
}

// ReshuffleLayoutStrip runs the reshuffle-around pass: for every
// window carrying a ReshuffleAround marker, it scrolls the viewport
// so that window is back on screen and repositions the rest of its
// workspace's strip accordingly.
func (s *Store) ReshuffleLayoutStrip(cfg *config.Config) {
	displayID, ok := s.ActiveDisplayID()
	if !ok {
		return
	}
	d, err := s.Display(displayID)
	if err != nil {
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

	var pending []EntityID
	s.reshuffleAround.Each(func(id EntityID, _ struct{}) {
		pending = append(pending, id)
	})
	for _, id := range pending {
		s.reshuffleAround.Remove(id)

		frame, ok := s.exposeWindow(id, displayID, d, cfg)
		if !ok {
			return
		}

		w, err := s.Window(id)
		if err != nil {
			continue
		}
		lookup := s.winIDFrameLookup(displayID)
		idx, err := ws.Strip.IndexOf(w.ID)
		if err != nil {
			continue
		}
		positions := ws.Strip.AbsolutePositions(lookup)
		if idx >= len(positions) {
			continue
		}
		absX := positions[idx].X
		viewportOffset := absX - (frame.Min.X - d.Bounds.Min.X)

		s.positionLayoutWindows(displayID, wsID, viewportOffset, cfg)
	}
}

// positionLayoutWindows lays out every window in workspace wsID's
// strip against the given horizontal scroll offset, queuing Resize
// and Reposition markers only for windows whose computed frame
// actually changed.
func (s *Store) positionLayoutWindows(displayID, wsID EntityID, viewportOffset int, cfg *config.Config) {
	d, err := s.Display(displayID)
	if err != nil {
		return
	}
	ws, err := s.Workspace(wsID)
	if err != nil || ws.Strip == nil {
		return
	}

	bounds := geometry.NewRect(geometry.Point{}, geometry.Size{W: d.Bounds.Width(), H: displayHeight(d)})
	padTop, padRight, padBottom, padLeft := cfg.EdgePadding()
	bounds.Max.X -= padLeft + padRight
	bounds.Max.Y -= padTop + padBottom
	viewportOffset += padLeft

	displayWidth := d.Bounds.Width()
	displayAbove := s.hasDisplayAbove(displayID, d)
	paddedRight := displayWidth - padRight

	lookup := s.winIDFrameLookup(displayID)
	frames := ws.Strip.CalculateLayout(viewportOffset, bounds, lookup)

	for _, wf := range frames {
		id, ok := s.winIndex[wf.Win]
		if !ok {
			continue
		}
		oldFrame, ok := s.MovingFrame(id, displayID)
		if !ok {
			continue
		}

		frame := geometry.Rect{
			Min: geometry.Point{X: d.Bounds.Min.X + wf.Frame.Min.X, Y: d.Bounds.Min.Y + wf.Frame.Min.Y},
			Max: geometry.Point{X: d.Bounds.Min.X + wf.Frame.Max.X, Y: d.Bounds.Min.Y + wf.Frame.Max.Y},
		}
		frame.Min.X += padLeft
		frame.Max.X += padLeft

		sliverWidth := cfg.SliverWidth()
		visibleLeft := maxOf(frame.Min.X, padLeft)
		visibleRight := minOf(frame.Max.X, paddedRight)
		visible := maxOf(visibleRight-visibleLeft, 0)
		isOffScreen := visible <= offScreenThreshold

		if isOffScreen {
			hPad := s.windowHorizontalPadding(wf.Win)
			width := frame.Width()
			center := frame.Min.X + width/2
			if center <= padLeft {
				frame.Min.X = sliverWidth + hPad - width
				frame.Max.X = sliverWidth + hPad
			} else {
				frame.Min.X = displayWidth - sliverWidth - hPad
				frame.Max.X = frame.Min.X + width
			}

			isStacked := false
			if idx, err := ws.Strip.IndexOf(wf.Win); err == nil {
				if col, err := ws.Strip.Get(idx); err == nil && col.Kind == layout.Stack {
					isStacked = true
				}
			}

			if isStacked {
				frame.Min.Y += d.MenubarHeight + padTop
				frame.Max.Y += d.MenubarHeight + padTop
			} else {
				inset := int(float64(bounds.Height()) * (1.0 - cfg.SliverHeight()) / 2.0)
				frame.Min.Y += d.MenubarHeight + padTop + inset
				frame.Max.Y -= inset
			}

			if displayAbove {
				bump := bounds.Height() / 4
				frame.Min.Y += bump
				frame.Max.Y += bump
			}
		} else {
			frame.Min.Y += d.MenubarHeight + padTop
			frame.Max.Y += d.MenubarHeight + padTop
		}

		if oldFrame.Size() != frame.Size() {
			s.ResizeEntity(id, frame.Size(), displayID)
		}
		if oldFrame.Min != frame.Min {
			s.RepositionEntity(id, frame.Min, displayID)
		}
	}
}

// clampScrollOffset bounds a candidate scroll offset to the strip's
// actual scrollable range: never negative, never past the point where
// the strip's trailing edge would leave the viewport. Used by the
// window-swiper to keep a swipe from sliding the strip past its ends
// unless free_slide is configured.
func (s *Store) clampScrollOffset(displayID EntityID, ws *Workspace, offset int, cfg *config.Config) int {
	d, err := s.Display(displayID)
	if err != nil {
		return 0
	}
	if offset < 0 {
		return 0
	}
	_, padRight, _, padLeft := cfg.EdgePadding()
	viewportWidth := d.Bounds.Width() - padLeft - padRight

	lookup := s.winIDFrameLookup(displayID)
	positions := ws.Strip.AbsolutePositions(lookup)
	totalWidth := 0
	if len(positions) > 0 {
		last := positions[len(positions)-1]
		if top, ok := last.Column.Top(); ok {
			if f, ok := lookup(top); ok {
				totalWidth = last.X + f.Width()
			}
		}
	}
	maxOffset := totalWidth - viewportWidth
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

// hasDisplayAbove reports whether any other display sits above d, the
// multi-display nudge that keeps off-screen windows from being
// relocated by the OS onto a display stacked vertically above this one.
func (s *Store) hasDisplayAbove(displayID EntityID, d *Display) bool {
	above := false
	s.displays.Each(func(other EntityID, od *Display) {
		if other == displayID {
			return
		}
		if d.Bounds.Min.Y > od.Bounds.Min.Y {
			above = true
		}
	})
	return above
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b int) int {
	if a < b {
		return a
	}
	return b
}
