package layout

import (
	"testing"

	"github.com/stripwm/stripwm/internal/geometry"
)

func frameTable(frames map[WinID]geometry.Rect) FrameLookup {
	return func(w WinID) (geometry.Rect, bool) {
		f, ok := frames[w]
		return f, ok
	}
}

func TestStripAppendAndIndexOf(t *testing.T) {
	s := NewStrip()
	s.Append(1)
	s.Append(2)
	s.Append(3)

	idx, err := s.IndexOf(2)
	if err != nil || idx != 1 {
		t.Fatalf("IndexOf(2) = %d, %v; want 1, nil", idx, err)
	}
	if _, err := s.IndexOf(99); err == nil {
		t.Error("expected NotFound for absent window")
	}
}

func TestStripStackAndUnstack(t *testing.T) {
	s := NewStrip()
	s.Append(1)
	s.Append(2)
	s.Append(3)

	if err := s.Stack(2); err != nil {
		t.Fatalf("Stack: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	col, _ := s.Get(0)
	if col.Kind != Stack || !col.Contains(1) || !col.Contains(2) {
		t.Fatalf("unexpected column after stack: %+v", col)
	}

	// Stacking the leftmost window is a no-op.
	before := s.Len()
	if err := s.Stack(1); err != nil {
		t.Fatalf("Stack(leftmost): %v", err)
	}
	if s.Len() != before {
		t.Error("Stack on leftmost column changed strip length")
	}

	if err := s.Unstack(2); err != nil {
		t.Fatalf("Unstack: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() after unstack = %d, want 3", s.Len())
	}
	single, _ := s.Get(0)
	if single.Kind != Single || single.Windows[0] != 1 {
		t.Errorf("remainder column = %+v, want Single(1)", single)
	}
}

func TestStripRemoveDegradesStack(t *testing.T) {
	s := NewStrip()
	s.Append(1)
	s.Append(2)
	_ = s.Stack(2)
	s.Append(3)
	_ = s.Stack(3)

	// strip is now [Stack(1,2,3)]
	col, _ := s.Get(0)
	if len(col.Windows) != 3 {
		t.Fatalf("setup failed: %+v", col)
	}

	s.Remove(2)
	col, err := s.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if col.Kind != Stack || col.Contains(2) {
		t.Fatalf("unexpected column after removing middle of stack: %+v", col)
	}

	s.Remove(3)
	col, err = s.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if col.Kind != Single || col.Windows[0] != 1 {
		t.Fatalf("expected degrade to Single(1), got %+v", col)
	}
}

func TestStripNeighboursRoundTrip(t *testing.T) {
	s := NewStrip()
	s.Append(1)
	s.Append(2)
	s.Append(3)

	right, ok := s.RightNeighbour(1)
	if !ok || right != 2 {
		t.Fatalf("RightNeighbour(1) = %v, %v; want 2, true", right, ok)
	}
	left, ok := s.LeftNeighbour(right)
	if !ok || left != 1 {
		t.Fatalf("LeftNeighbour(RightNeighbour(1)) = %v, %v; want 1, true", left, ok)
	}
}

func TestCalculateLayoutWidthIndependentOfOffset(t *testing.T) {
	s := NewStrip()
	s.Append(1)
	s.Append(2)

	frames := map[WinID]geometry.Rect{
		1: geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000}),
		2: geometry.NewRect(geometry.Point{}, geometry.Size{W: 400, H: 1000}),
	}
	viewport := geometry.NewRect(geometry.Point{}, geometry.Size{W: 1024, H: 768})

	layoutAt := func(offset int) map[WinID]int {
		out := map[WinID]int{}
		for _, wf := range s.CalculateLayout(offset, viewport, frameTable(frames)) {
			out[wf.Win] = wf.Frame.Width()
		}
		return out
	}

	a := layoutAt(0)
	b := layoutAt(250)
	for w, wa := range a {
		if wb := b[w]; wa != wb {
			t.Errorf("width of window %d changed with offset: %d vs %d", w, wa, wb)
		}
	}
}
