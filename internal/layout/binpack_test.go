package layout

import "testing"

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}

func TestBinpackHeightsFitsAsIs(t *testing.T) {
	heights := []int{300, 300, 300}
	got, ok := BinpackHeights(heights, 200, 900)
	if !ok {
		t.Fatal("expected a result")
	}
	if sum(got) != 900 {
		t.Errorf("sum = %d, want 900", sum(got))
	}
	want := []int{300, 300, 300}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBinpackHeightsLastAbsorbsRemainder(t *testing.T) {
	heights := []int{200, 200}
	got, ok := BinpackHeights(heights, 100, 500)
	if !ok {
		t.Fatal("expected a result")
	}
	if got[0] != 200 || got[1] != 300 {
		t.Errorf("got = %v, want [200 300]", got)
	}
}

func TestBinpackHeightsSharesShortfall(t *testing.T) {
	// Three windows want 300 each (900 total) but only 600px is
	// available with a 200px floor: the algorithm should shrink the
	// fitted prefix and split the remainder across the trailing
	// windows evenly, never dropping below minHeight.
	heights := []int{300, 300, 300}
	got, ok := BinpackHeights(heights, 200, 600)
	if !ok {
		t.Fatal("expected a result")
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if sum(got) != 600 {
		t.Errorf("sum = %d, want 600", sum(got))
	}
	for _, h := range got {
		if h < 200 {
			t.Errorf("height %d below minHeight 200", h)
		}
	}
}

func TestBinpackHeightsFailsBelowMin(t *testing.T) {
	heights := []int{300, 300, 300}
	_, ok := BinpackHeights(heights, 200, 100)
	if ok {
		t.Error("expected failure when total_height can't satisfy minHeight per window")
	}
}

func TestBinpackHeightsEmptyInput(t *testing.T) {
	_, ok := BinpackHeights(nil, 200, 500)
	if ok {
		t.Error("expected failure for empty input")
	}
}

func TestBinpackHeightsPropertyInvariant(t *testing.T) {
	cases := []struct {
		heights             []int
		minHeight, totalH   int
	}{
		{[]int{400}, 200, 768},
		{[]int{400, 400}, 200, 768},
		{[]int{400, 400, 400}, 200, 768},
		{[]int{1000, 50}, 200, 768},
	}
	for _, c := range cases {
		got, ok := BinpackHeights(c.heights, c.minHeight, c.totalH)
		if !ok {
			continue
		}
		if len(got) != len(c.heights) {
			t.Errorf("len(got) = %d, want %d", len(got), len(c.heights))
		}
		if sum(got) != c.totalH {
			t.Errorf("sum(got) = %d, want %d", sum(got), c.totalH)
		}
		for _, h := range got {
			if h < c.minHeight {
				t.Errorf("height %d below min %d", h, c.minHeight)
			}
		}
	}
}
