// Package config loads the TOML configuration document, exposes the
// accessor methods the core reads during reconciliation (§6.3), and
// parses the command grammar used by keybindings and send-cmd.
package config

// MainOptions holds the recognized top-level options (§6.3). Pointer
// fields distinguish "unset" from "explicitly false/zero" so defaults
// can be applied without clobbering an explicit value.
type MainOptions struct {
	FocusFollowsMouse   *bool      `toml:"focus_follows_mouse"`
	MouseFollowsFocus   *bool      `toml:"mouse_follows_focus"`
	SwipeGestureFingers *int       `toml:"swipe_gesture_fingers"`
	PresetColumnWidths  []float64  `toml:"preset_column_widths"`
	AnimationSpeed      *float64   `toml:"animation_speed"`
	AutoCenter          *bool      `toml:"auto_center"`
	SliverHeight        *float64   `toml:"sliver_height"`
	SliverWidth         *int       `toml:"sliver_width"`
	PaddingTop          *int       `toml:"padding_top"`
	PaddingBottom       *int       `toml:"padding_bottom"`
	PaddingLeft         *int       `toml:"padding_left"`
	PaddingRight        *int       `toml:"padding_right"`

	// ContinuousSwipe is deprecated upstream; accepted and ignored
	// (Open Question decision #1 — see DESIGN.md).
	ContinuousSwipe *bool `toml:"continuous_swipe"`

	// FreeSlide disables scroll clamping in the window swiper when
	// true. Not part of the documented upstream option set; added per
	// Open Question decision #2, default false.
	FreeSlide *bool `toml:"free_slide"`
}

// defaultPresetColumnWidths is the default resize preset cycle.
func defaultPresetColumnWidths() []float64 {
	return []float64{0.25, 0.33333, 0.50, 0.66667, 0.75}
}

// WindowParams is a per-window rule matched by title regex and
// optional bundle id (§6.3 `windows.<name>`).
type WindowParams struct {
	Title             string   `toml:"title"`
	BundleID          *string  `toml:"bundle_id"`
	Floating          *bool    `toml:"floating"`
	Index             *int     `toml:"index"`
	VerticalPadding   *int     `toml:"vertical_padding"`
	HorizontalPadding *int     `toml:"horizontal_padding"`
	DontFocus         *bool    `toml:"dont_focus"`
	Width             *float64 `toml:"width"`
}

// Document is the raw TOML shape: options, keybindings, and window
// rules.
type Document struct {
	Options  MainOptions             `toml:"options"`
	Bindings map[string]BindingValue `toml:"bindings"`
	Windows  map[string]WindowParams `toml:"windows"`
}

// BindingValue accepts either a single binding string or a list of
// alternate bindings for the same command, a flexible TOML
// scalar-or-array convention.
type BindingValue struct {
	Bindings []string
}

func (b *BindingValue) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case string:
		b.Bindings = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				b.Bindings = append(b.Bindings, s)
			}
		}
	}
	return nil
}
