package wm

import (
	"fmt"
	"sort"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/log"

	"github.com/stripwm/stripwm/internal/layout"
)

var (
	printStateHeaderStyle = lipgloss.NewStyle().Bold(true)
	printStateFocusStyle  = lipgloss.NewStyle().Bold(true)
)

// PrintState renders the display -> workspace -> strip tree at debug
// level (§4.3 PrintState), as a table rather than a raw struct dump.
func (s *Store) PrintState() {
	t := table.New().
		Headers("display", "workspace", "column", "windows", "markers").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return printStateHeaderStyle
			}
			return lipgloss.NewStyle()
		})

	var displayIDs []EntityID
	s.displays.Each(func(id EntityID, _ *Display) { displayIDs = append(displayIDs, id) })
	sort.Slice(displayIDs, func(i, j int) bool { return displayIDs[i] < displayIDs[j] })

	for _, did := range displayIDs {
		d, _ := s.Display(did)
		_, activeDisp := s.activeDisplay.Get(did)
		dispLabel := fmt.Sprintf("%v", d.PlatformID)
		if activeDisp {
			dispLabel = printStateFocusStyle.Render(dispLabel + " *")
		}

		var wsIDs []EntityID
		s.workspaces.Each(func(id EntityID, ws *Workspace) {
			if ws.DisplayID == did {
				wsIDs = append(wsIDs, id)
			}
		})
		sort.Slice(wsIDs, func(i, j int) bool { return wsIDs[i] < wsIDs[j] })

		for _, wid := range wsIDs {
			ws, _ := s.Workspace(wid)
			_, activeWs := s.activeWorkspace.Get(wid)
			wsLabel := fmt.Sprintf("%v", ws.PlatformID)
			if activeWs {
				wsLabel = printStateFocusStyle.Render(wsLabel + " *")
			}
			if ws.Strip == nil || ws.Strip.Len() == 0 {
				t.Row(dispLabel, wsLabel, "-", "-", "-")
				continue
			}
			for i, col := range ws.Strip.AllColumns() {
				t.Row(dispLabel, wsLabel, fmt.Sprintf("%d", i), s.windowsCell(col.Windows), s.markersCell(col.Windows))
			}
		}
	}

	log.Debug("window manager state\n" + t.Render())
}

func (s *Store) windowsCell(wins []layout.WinID) string {
	out := ""
	for i, wid := range wins {
		if i > 0 {
			out += ", "
		}
		id, ok := s.WindowByWinID(wid)
		if !ok {
			out += fmt.Sprintf("#%d(gone)", wid)
			continue
		}
		w, err := s.Window(id)
		if err != nil {
			continue
		}
		label := w.Title
		if label == "" {
			label = fmt.Sprintf("#%d", wid)
		}
		if _, focused := s.focused.Get(id); focused {
			label = printStateFocusStyle.Render(label)
		}
		out += label
	}
	return out
}

func (s *Store) markersCell(wins []layout.WinID) string {
	out := ""
	for _, wid := range wins {
		id, ok := s.WindowByWinID(wid)
		if !ok {
			continue
		}
		var tags []string
		if kind, ok := s.unmanaged.Get(id); ok {
			tags = append(tags, unmanagedLabel(kind))
		}
		if _, ok := s.fullWidth.Get(id); ok {
			tags = append(tags, "full-width")
		}
		if _, ok := s.reposition.Get(id); ok {
			tags = append(tags, "repositioning")
		}
		if _, ok := s.resize.Get(id); ok {
			tags = append(tags, "resizing")
		}
		for i, tag := range tags {
			if i > 0 || out != "" {
				out += " "
			}
			out += tag
		}
	}
	return out
}

func unmanagedLabel(kind UnmanagedKind) string {
	switch kind {
	case Floating:
		return "floating"
	case Minimized:
		return "minimized"
	case Hidden:
		return "hidden"
	default:
		return "unmanaged"
	}
}
