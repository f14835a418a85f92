// Package layout implements LayoutStrip: the pure, I/O-free data
// structure that arranges a workspace's windows into an ordered
// horizontal sequence of Columns (Single or Stack), and the geometry
// pass that turns that sequence into per-window frames.
package layout

// WinID is the opaque identifier the strip and the reconciliation loop
// use to refer to a window, independent of how the entity store or the
// platform port represents it.
type WinID uint32

// ColumnKind distinguishes a Column holding one window from one holding
// a vertical stack of windows.
type ColumnKind int

const (
	// Single holds exactly one window.
	Single ColumnKind = iota
	// Stack holds two or more windows, ordered top to bottom.
	Stack
)

// Column is one horizontal cell of a LayoutStrip. Windows is length 1
// for Single and length >= 2 for Stack; a Stack never degrades to
// length < 2 without being converted to Single by the strip itself.
type Column struct {
	Kind    ColumnKind
	Windows []WinID
}

// NewSingle builds a Single column containing w.
func NewSingle(w WinID) Column {
	return Column{Kind: Single, Windows: []WinID{w}}
}

// NewStack builds a Stack column from ws, top-first.
func NewStack(ws ...WinID) Column {
	cp := make([]WinID, len(ws))
	copy(cp, ws)
	return Column{Kind: Stack, Windows: cp}
}

// Top returns the topmost window of the column: the only window for
// Single, the first (top) window for Stack.
func (c Column) Top() (WinID, bool) {
	if len(c.Windows) == 0 {
		return 0, false
	}
	return c.Windows[0], true
}

// AtOrLast returns the window at the given stack index, or the last
// window if index exceeds the column's size. Used to find a
// left/right neighbour at a matching stack position.
func (c Column) AtOrLast(index int) (WinID, bool) {
	if len(c.Windows) == 0 {
		return 0, false
	}
	if index < 0 {
		index = 0
	}
	if index >= len(c.Windows) {
		index = len(c.Windows) - 1
	}
	return c.Windows[index], true
}

// PositionOf returns w's index within the column, or false if absent.
func (c Column) PositionOf(w WinID) (int, bool) {
	for i, id := range c.Windows {
		if id == w {
			return i, true
		}
	}
	return 0, false
}

// Contains reports whether w is a member of this column.
func (c Column) Contains(w WinID) bool {
	_, ok := c.PositionOf(w)
	return ok
}

// stackFrom normalizes a raw window list into Single or Stack,
// matching the invariant that a one-element stack degrades to Single.
func stackFrom(ws []WinID) Column {
	if len(ws) == 1 {
		return NewSingle(ws[0])
	}
	return NewStack(ws...)
}
