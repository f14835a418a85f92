package geometry

import "testing"

func TestRectWidthHeight(t *testing.T) {
	r := NewRect(Point{10, 20}, Size{100, 50})
	if got := r.Width(); got != 100 {
		t.Errorf("Width() = %d, want 100", got)
	}
	if got := r.Height(); got != 50 {
		t.Errorf("Height() = %d, want 50", got)
	}
}

func TestFromCenterSize(t *testing.T) {
	r := FromCenterSize(Point{500, 500}, Size{400, 200})
	want := Rect{Min: Point{300, 400}, Max: Point{700, 600}}
	if r != want {
		t.Errorf("FromCenterSize = %+v, want %+v", r, want)
	}
}

func TestVisibleWidth(t *testing.T) {
	tests := []struct {
		name string
		r, o Rect
		want int
	}{
		{"fully inside", Rect{Point{10, 0}, Point{20, 10}}, Rect{Point{0, 0}, Point{100, 100}}, 10},
		{"fully off right", Rect{Point{200, 0}, Point{300, 10}}, Rect{Point{0, 0}, Point{100, 100}}, 0},
		{"sliver left edge", Rect{Point{-390, 0}, Point{10, 10}}, Rect{Point{0, 0}, Point{1024, 768}}, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.VisibleWidth(tc.o); got != tc.want {
				t.Errorf("VisibleWidth() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestInset(t *testing.T) {
	r := Rect{Min: Point{0, 0}, Max: Point{1024, 768}}
	got := r.Inset(20, 5, 5, 5)
	want := Rect{Min: Point{5, 20}, Max: Point{1019, 763}}
	if got != want {
		t.Errorf("Inset() = %+v, want %+v", got, want)
	}
}

func TestMoveTowards(t *testing.T) {
	p := Point{0, 0}
	target := Point{1024, 0}
	step := p.MoveTowards(target, 100)
	if step.X != 100 {
		t.Errorf("MoveTowards first step X = %d, want 100", step.X)
	}
	for i := 0; i < 20 && step != target; i++ {
		step = step.MoveTowards(target, 100)
	}
	if step != target {
		t.Errorf("MoveTowards did not converge, got %+v", step)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5,0,10) = %d, want 5", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5,0,10) = %d, want 0", got)
	}
	if got := Clamp(50, 0, 10); got != 10 {
		t.Errorf("Clamp(50,0,10) = %d, want 10", got)
	}
}
