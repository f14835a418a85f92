package layout

import (
	"github.com/stripwm/stripwm/internal/geometry"
	"github.com/stripwm/stripwm/internal/wmerr"
)

const (
	// minWindowHeight is the floor binpackHeights enforces per stack
	// member.
	minWindowHeight = 200
	// windowHiddenThreshold is the minimum sliver, in px, that
	// calculateLayout guarantees stays visible in the viewport.
	windowHiddenThreshold = 10
)

// Strip is one workspace's horizontal arrangement of Columns. It holds
// no reference to any entity store or platform port: everything it
// needs (a window's current frame) is supplied by the caller through a
// FrameLookup function, keeping it a pure data structure.
type Strip struct {
	columns []Column
}

// FrameLookup resolves a window's current frame. Reconciliation passes
// a function that reads intent frames first, falling back to the
// OS-observed frame, per the feedback-isolation design.
type FrameLookup func(WinID) (geometry.Rect, bool)

// NewStrip returns an empty Strip.
func NewStrip() *Strip {
	return &Strip{}
}

// Len returns the number of columns.
func (s *Strip) Len() int { return len(s.columns) }

// IndexOf returns the index of the column containing w (Single or any
// member of a Stack).
func (s *Strip) IndexOf(w WinID) (int, error) {
	for i, c := range s.columns {
		if c.Contains(w) {
			return i, nil
		}
	}
	return 0, wmerr.New(wmerr.NotFound, "Strip.IndexOf", "window not present in strip")
}

// InsertAt inserts Single(w) at position i, clamped to the strip's
// length (an out-of-range i appends).
func (s *Strip) InsertAt(i int, w WinID) {
	if i < 0 {
		i = 0
	}
	if i >= len(s.columns) {
		s.columns = append(s.columns, NewSingle(w))
		return
	}
	s.columns = append(s.columns, Column{})
	copy(s.columns[i+1:], s.columns[i:])
	s.columns[i] = NewSingle(w)
}

// Append appends Single(w) to the end of the strip.
func (s *Strip) Append(w WinID) {
	s.columns = append(s.columns, NewSingle(w))
}

// Remove drops w from the strip. If w is in a Stack, it is removed
// from the stack; the stack degrades to Single if one member remains,
// or the column is dropped entirely if none remain. If w is a Single,
// its column is dropped.
func (s *Strip) Remove(w WinID) {
	idx, err := s.IndexOf(w)
	if err != nil {
		return
	}
	col := s.columns[idx]
	rest := make([]Column, 0, len(s.columns)-1)
	rest = append(rest, s.columns[:idx]...)

	if col.Kind == Stack {
		remaining := make([]WinID, 0, len(col.Windows)-1)
		for _, id := range col.Windows {
			if id != w {
				remaining = append(remaining, id)
			}
		}
		switch len(remaining) {
		case 0:
		case 1:
			rest = append(rest, NewSingle(remaining[0]))
		default:
			rest = append(rest, NewStack(remaining...))
		}
	}

	s.columns = append(rest, s.columns[idx+1:]...)
}

// Get returns the column at index i.
func (s *Strip) Get(i int) (Column, error) {
	if i < 0 || i >= len(s.columns) {
		return Column{}, wmerr.New(wmerr.InvalidInput, "Strip.Get", "index out of bounds")
	}
	return s.columns[i], nil
}

// Swap exchanges the columns at i and j.
func (s *Strip) Swap(i, j int) error {
	if i < 0 || i >= len(s.columns) || j < 0 || j >= len(s.columns) {
		return wmerr.New(wmerr.InvalidInput, "Strip.Swap", "index out of bounds")
	}
	s.columns[i], s.columns[j] = s.columns[j], s.columns[i]
	return nil
}

// First returns the leftmost column.
func (s *Strip) First() (Column, error) {
	if len(s.columns) == 0 {
		return Column{}, wmerr.New(wmerr.NotFound, "Strip.First", "strip is empty")
	}
	return s.columns[0], nil
}

// Last returns the rightmost column.
func (s *Strip) Last() (Column, error) {
	if len(s.columns) == 0 {
		return Column{}, wmerr.New(wmerr.NotFound, "Strip.Last", "strip is empty")
	}
	return s.columns[len(s.columns)-1], nil
}

// LeftNeighbour returns the window occupying w's stack position in the
// column immediately to the left, or false if w is leftmost.
func (s *Strip) LeftNeighbour(w WinID) (WinID, bool) {
	idx, err := s.IndexOf(w)
	if err != nil || idx == 0 {
		return 0, false
	}
	pos, ok := s.columns[idx].PositionOf(w)
	if !ok {
		return 0, false
	}
	return s.columns[idx-1].AtOrLast(pos)
}

// RightNeighbour returns the window occupying w's stack position in the
// column immediately to the right, or false if w is rightmost.
func (s *Strip) RightNeighbour(w WinID) (WinID, bool) {
	idx, err := s.IndexOf(w)
	if err != nil || idx+1 >= len(s.columns) {
		return 0, false
	}
	pos, ok := s.columns[idx].PositionOf(w)
	if !ok {
		return 0, false
	}
	return s.columns[idx+1].AtOrLast(pos)
}

// Stack merges the column containing w onto its left neighbour, with w
// becoming the bottom of the resulting Stack. A no-op if w is already
// in a Stack or occupies column 0.
func (s *Strip) Stack(w WinID) error {
	idx, err := s.IndexOf(w)
	if err != nil {
		return err
	}
	if idx == 0 {
		return nil
	}
	if s.columns[idx].Kind == Stack {
		return nil
	}

	left := s.columns[idx-1]
	var merged []WinID
	if left.Kind == Stack {
		merged = append(append([]WinID{}, left.Windows...), w)
	} else {
		merged = []WinID{left.Windows[0], w}
	}

	out := make([]Column, 0, len(s.columns)-1)
	out = append(out, s.columns[:idx-1]...)
	out = append(out, NewStack(merged...))
	out = append(out, s.columns[idx+1:]...)
	s.columns = out
	return nil
}

// Unstack removes w from its Stack and re-inserts it as a Single
// column, leaving the (possibly surviving) remainder Stack in w's
// former position and placing w's new Single column immediately after
// it.
func (s *Strip) Unstack(w WinID) error {
	idx, err := s.IndexOf(w)
	if err != nil {
		return err
	}
	col := s.columns[idx]
	if col.Kind == Single {
		return nil
	}

	remaining := make([]WinID, 0, len(col.Windows)-1)
	for _, id := range col.Windows {
		if id != w {
			remaining = append(remaining, id)
		}
	}

	out := make([]Column, 0, len(s.columns)+1)
	out = append(out, s.columns[:idx]...)
	out = append(out, stackFrom(remaining), NewSingle(w))
	out = append(out, s.columns[idx+1:]...)
	s.columns = out
	return nil
}

// AllWindows flattens the strip in column order, stacks top-to-bottom.
func (s *Strip) AllWindows() []WinID {
	var out []WinID
	for _, c := range s.columns {
		out = append(out, c.Windows...)
	}
	return out
}

// AllColumns returns a copy of the strip's columns in order.
func (s *Strip) AllColumns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// absolutePosition pairs a column with the cumulative x of its left
// edge, computed from the top window's width in each preceding column.
type absolutePosition struct {
	Column Column
	X      int
}

// AbsolutePositions returns, for every column that has a resolvable
// top-window frame, the column and the cumulative sum of the top
// window widths of all preceding columns, starting at 0.
func (s *Strip) AbsolutePositions(frame FrameLookup) []absolutePosition {
	var out []absolutePosition
	x := 0
	for _, c := range s.columns {
		top, ok := c.Top()
		if !ok {
			continue
		}
		f, ok := frame(top)
		if !ok {
			continue
		}
		out = append(out, absolutePosition{Column: c, X: x})
		x += f.Width()
	}
	return out
}

// WindowFrame pairs a window with its computed layout frame.
type WindowFrame struct {
	Win   WinID
	Frame geometry.Rect
}

// CalculateLayout maps the strip into per-window frames relative to
// viewport's origin, given a horizontal scroll offset. Column x is
// clamped so at least windowHiddenThreshold px stay visible. Stack
// member heights come from BinpackHeights against viewport.Height().
func (s *Strip) CalculateLayout(offset int, viewport geometry.Rect, frame FrameLookup) []WindowFrame {
	var out []WindowFrame
	for _, ap := range s.AbsolutePositions(frame) {
		windows := append([]WinID{}, ap.Column.Windows...)
		heights := make([]int, 0, len(windows))
		for _, w := range windows {
			f, ok := frame(w)
			if !ok {
				continue
			}
			heights = append(heights, f.Height())
		}
		if len(heights) != len(windows) {
			continue
		}
		packed, ok := BinpackHeights(heights, minWindowHeight, viewport.Height())
		if !ok {
			continue
		}

		topFrame, ok := frame(windows[0])
		if !ok {
			continue
		}
		columnWidth := topFrame.Width()

		prevY := 0
		for i, w := range windows {
			height := packed[i]
			topLeft := ap.X - offset
			minX := geometry.Clamp(topLeft,
				viewport.Min.X+windowHiddenThreshold-columnWidth,
				viewport.Width()-windowHiddenThreshold)
			newFrame := geometry.Rect{
				Min: geometry.Point{X: minX, Y: prevY},
				Max: geometry.Point{X: minX + columnWidth, Y: prevY + height},
			}
			prevY += height
			out = append(out, WindowFrame{Win: w, Frame: newFrame})
		}
	}
	return out
}
