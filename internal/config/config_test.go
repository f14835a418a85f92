package config

import "testing"

func TestDefaultConfigDefaults(t *testing.T) {
	c := DefaultConfig()
	if !c.FocusFollowsMouse() {
		t.Error("FocusFollowsMouse should default true")
	}
	if !c.MouseFollowsFocus() {
		t.Error("MouseFollowsFocus should default true")
	}
	if c.AutoCenter() {
		t.Error("AutoCenter should default false")
	}
	if c.FreeSlide() {
		t.Error("FreeSlide should default false")
	}
	if got := c.SliverHeight(); got != 1.0 {
		t.Errorf("SliverHeight = %v, want 1.0", got)
	}
	if got := c.SliverWidth(); got != 5 {
		t.Errorf("SliverWidth = %v, want 5", got)
	}
	widths := c.PresetColumnWidths()
	if len(widths) != 5 {
		t.Fatalf("PresetColumnWidths len = %d, want 5", len(widths))
	}
}

func TestValidateRejectsOutOfRangePadding(t *testing.T) {
	bad := 100
	doc := Document{Options: MainOptions{PaddingTop: &bad}}
	errs := Validate(&doc)
	if len(errs) == 0 {
		t.Error("expected validation error for padding_top=100")
	}
}

func TestFindWindowPropertiesMatchesTitleWithoutBundleRule(t *testing.T) {
	doc := Document{
		Windows: map[string]WindowParams{
			"skipfocus": {Title: ".*", DontFocus: boolPtr(true), Index: intPtr(100)},
		},
	}
	c := &Config{}
	if err := c.set(doc); err != nil {
		t.Fatalf("set: %v", err)
	}
	matches := c.FindWindowProperties("Terminal", "com.example.term")
	if len(matches) != 1 {
		t.Fatalf("FindWindowProperties = %d matches, want 1", len(matches))
	}
	if matches[0].DontFocus == nil || !*matches[0].DontFocus {
		t.Error("expected DontFocus=true on matched rule")
	}
}

func TestParseCommandGrammar(t *testing.T) {
	tests := []struct {
		expr string
		ok   bool
	}{
		{"window_focus_east", true},
		{"window_stack", true},
		{"window_unstack", true},
		{"mouse_nextdisplay", true},
		{"printstate", true},
		{"quit", true},
		{"window_focus", false},
		{"bogus", false},
	}
	for _, tc := range tests {
		_, err := ParseCommand(splitExpr(tc.expr))
		if (err == nil) != tc.ok {
			t.Errorf("ParseCommand(%q) err=%v, want ok=%v", tc.expr, err, tc.ok)
		}
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
