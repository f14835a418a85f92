package config

import (
	"fmt"
	"regexp"
)

// Validate reports field-level problems with doc without mutating it.
func Validate(doc *Document) []error {
	var errs []error

	if sh := doc.Options.SliverHeight; sh != nil && (*sh < 0.1 || *sh > 1.0) {
		errs = append(errs, fmt.Errorf("options.sliver_height must be in [0.1, 1.0], got %v", *sh))
	}
	if sw := doc.Options.SliverWidth; sw != nil && *sw < 1 {
		errs = append(errs, fmt.Errorf("options.sliver_width must be >= 1, got %v", *sw))
	}
	for _, p := range []*int{doc.Options.PaddingTop, doc.Options.PaddingBottom, doc.Options.PaddingLeft, doc.Options.PaddingRight} {
		if p != nil && (*p < 0 || *p > 50) {
			errs = append(errs, fmt.Errorf("edge padding must be in [0, 50], got %v", *p))
		}
	}
	for _, w := range doc.Options.PresetColumnWidths {
		if w <= 0 || w > 1 {
			errs = append(errs, fmt.Errorf("preset_column_widths entries must be in (0, 1], got %v", w))
		}
	}

	for name, wp := range doc.Windows {
		if _, err := regexp.Compile(wp.Title); err != nil {
			errs = append(errs, fmt.Errorf("windows.%s.title: %w", name, err))
		}
		for _, p := range []*int{wp.VerticalPadding, wp.HorizontalPadding} {
			if p != nil && (*p < 0 || *p > 50) {
				errs = append(errs, fmt.Errorf("windows.%s: padding must be in [0, 50], got %v", name, *p))
			}
		}
	}

	for expr, binding := range doc.Bindings {
		if _, err := ParseCommand(splitExpr(expr)); err != nil {
			errs = append(errs, fmt.Errorf("bindings.%s: %w", expr, err))
		}
		if len(binding.Bindings) == 0 {
			errs = append(errs, fmt.Errorf("bindings.%s: no binding strings given", expr))
		}
	}

	return errs
}
