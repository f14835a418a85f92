package wm

import (
	"github.com/stripwm/stripwm/internal/config"
)

// AnimateStep advances every in-flight Reposition/Resize marker toward
// its target by dtSeconds of travel at the configured animation speed
// (§4.6). animation_speed is read as display widths per second: each
// tick moves at most dtSeconds × speed × display width pixels per axis;
// absence yields an effectively infinite speed (jump to target).
// Markers reaching their target are cleared.
func (s *Store) AnimateStep(cfg *config.Config, dtSeconds float64) {
	speed := cfg.AnimationSpeed()

	var repositioning []EntityID
	s.reposition.Each(func(id EntityID, _ RepositionMarker) { repositioning = append(repositioning, id) })
	for _, id := range repositioning {
		marker, ok := s.reposition.Get(id)
		if !ok {
			continue
		}
		display, err := s.Display(marker.DisplayID)
		if err != nil {
			s.reposition.Remove(id)
			continue
		}
		w, err := s.Window(id)
		if err != nil {
			s.reposition.Remove(id)
			continue
		}
		maxDelta := dtSeconds * speed * float64(display.Bounds.Width())
		newMin := w.Frame.Min.MoveTowards(marker.Origin, maxDelta)
		w.Frame = w.Frame.WithOrigin(newMin)
		if w.Port != nil {
			_ = w.Port.Reposition(newMin)
		}
		if newMin == marker.Origin {
			s.reposition.Remove(id)
		}
	}

	// Resize only progresses for windows that are not simultaneously
	// repositioning this tick (§4.6): a window mid-move finishes its
	// move first, one marker at a time.
	var resizing []EntityID
	s.resize.Each(func(id EntityID, _ ResizeMarker) { resizing = append(resizing, id) })
	for _, id := range resizing {
		if s.reposition.Has(id) {
			continue
		}
		marker, ok := s.resize.Get(id)
		if !ok {
			continue
		}
		display, err := s.Display(marker.DisplayID)
		if err != nil {
			s.resize.Remove(id)
			continue
		}
		w, err := s.Window(id)
		if err != nil {
			s.resize.Remove(id)
			continue
		}
		maxDelta := dtSeconds * speed * float64(display.Bounds.Width())
		newSize := w.Frame.Size().MoveTowards(marker.Size, maxDelta)
		w.Frame = w.Frame.WithSize(newSize)
		if w.Port != nil {
			_ = w.Port.Resize(newSize, display.Bounds.Width())
		}
		if newSize == marker.Size {
			s.resize.Remove(id)
		}
	}
}
