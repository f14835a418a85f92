package wm

import (
	"github.com/charmbracelet/log"

	"github.com/stripwm/stripwm/internal/config"
	"github.com/stripwm/stripwm/internal/layout"
	"github.com/stripwm/stripwm/internal/platform"
)

// elementIDSearchSpace bounds the brute-force AXUIElementRef token
// search for windows the OS reports in a space but that the owning
// application's own window list doesn't surface (§4.7 Phase C).
const elementIDSearchSpace = 0x7fff

// Recovery runs startup (§4.7 Phases B-D) and polls the background
// brute-force window searches that Phase C kicks off. Phase A (gather processes until
// ProcessesLoaded) is driven by the ordinary EventLoop — Recovery picks
// up at Phase B once that signal arrives.
type Recovery struct {
	store  *Store
	port   platform.WindowManagerPort
	cfg    *config.Config
	logger *log.Logger

	pending []*bruteForceTask
}

// NewRecovery builds a Recovery coordinator.
func NewRecovery(store *Store, port platform.WindowManagerPort, cfg *config.Config) *Recovery {
	return &Recovery{store: store, port: port, cfg: cfg, logger: log.Default().With("component", "recovery")}
}

// bruteForceTask is one background element-id search, polled
// non-blocking once per tick from the task pool rather than awaited
// (§5 "Background brute-force enumeration runs on a task pool and is
// polled once per tick (non-blocking)").
type bruteForceTask struct {
	appID EntityID
	done  chan []platform.WindowSnapshot
}

// RunPhaseB enumerates displays, creates Display+Workspace entities,
// and marks the OS-reported active display/workspace (§4.7 Phase B).
func (r *Recovery) RunPhaseB() error {
	snapshots, err := r.port.PresentDisplays()
	if err != nil {
		return err
	}
	for _, snap := range snapshots {
		displayID := r.store.SpawnDisplay(&Display{
			PlatformID:    snap.ID,
			Bounds:        snap.Bounds,
			MenubarHeight: snap.MenubarHeight,
			Dock:          snap.Dock,
		})
		for _, wsPlatID := range snap.Workspaces {
			r.store.SpawnWorkspace(displayID, &Workspace{PlatformID: wsPlatID, Strip: layout.NewStrip()})
		}
	}

	activeDisplay, err := r.port.ActiveDisplayID()
	if err != nil {
		return err
	}
	r.store.displays.Each(func(id EntityID, d *Display) {
		if d.PlatformID == activeDisplay {
			r.store.SetActiveDisplay(id)
		}
	})

	activeWs, err := r.port.ActiveDisplaySpace(activeDisplay)
	if err != nil {
		return err
	}
	activeDisplayEntityID, _ := r.store.ActiveDisplayID()
	r.store.workspaces.Each(func(id EntityID, ws *Workspace) {
		if ws.DisplayID == activeDisplayEntityID && ws.PlatformID == activeWs {
			r.store.SetActiveWorkspace(id)
		}
	})
	return nil
}

// RunPhaseC creates an Application for every observable Process,
// fetches its window list, and kicks off brute-force recovery for
// windows the OS reports on a space but the app's own list misses
// (§4.7 Phase C).
func (r *Recovery) RunPhaseC() {
	var procIDs []EntityID
	r.store.processes.Each(func(id EntityID, p *Process) {
		if p.Observable {
			procIDs = append(procIDs, id)
		}
	})

	var allSpaces []platform.WorkspaceID
	r.store.workspaces.Each(func(_ EntityID, ws *Workspace) { allSpaces = append(allSpaces, ws.PlatformID) })

	for _, procID := range procIDs {
		proc, ok := r.store.processes.Get(procID)
		if !ok {
			continue
		}
		appPort, nerr := r.port.NewApplication(proc.PSN, platform.PID(0))
		if nerr != nil {
			r.logger.Warn("failed to observe process", "psn", proc.PSN, "err", nerr)
			continue
		}
		appID := r.store.SpawnApplication(procID, &Application{
			PSN: appPort.PSN(), PID: appPort.PID(), BundleID: appPort.BundleID(), Frontmost: appPort.Frontmost(), Port: appPort,
		})

		found, offscreen, ferr := r.port.FindExistingApplicationWindows(appPort, allSpaces)
		if ferr != nil {
			continue
		}
		for _, snap := range found {
			r.spawnExistingWindow(appID, snap)
		}
		if len(offscreen) > 0 {
			r.spawnBruteForceTask(appID, appPort.PID(), offscreen)
		}
	}
}

func (r *Recovery) spawnExistingWindow(appID EntityID, snap platform.WindowSnapshot) {
	w := &Window{ID: snap.ID, ApplicationID: appID, Frame: snap.Frame, Role: snap.Role, Subrole: snap.Subrole, Title: snap.Title, BundleID: snap.BundleID, IsRoot: true}
	if port, err := r.port.ResolveWindow(snap.ID); err == nil {
		w.Port = port
		w.WidthRatio = port.WidthRatio()
	}
	id := r.store.SpawnWindow(appID, w)
	r.store.existingMarker.Set(id, struct{}{})
}

// spawnBruteForceTask iterates AXUIElementRef-style tokens in
// 0..elementIDSearchSpace, stamped with the owning pid, to recover
// windows the OS reports on an inactive space that the app's own
// window list didn't surface. The real element-id construction is an
// accessibility-binding concern (§1 Non-goals boundary); this task
// pool only models the search's async shape so the scheduler's
// non-blocking poll has something to drive.
func (r *Recovery) spawnBruteForceTask(appID EntityID, pid platform.PID, offscreen []platform.WinID) {
	done := make(chan []platform.WindowSnapshot, 1)
	go func() {
		var recovered []platform.WindowSnapshot
		remaining := map[platform.WinID]bool{}
		for _, id := range offscreen {
			remaining[id] = true
		}
		for token := 0; token < elementIDSearchSpace && len(remaining) > 0; token++ {
			for id := range remaining {
				recovered = append(recovered, platform.WindowSnapshot{ID: id, OwnerPID: pid, Existing: true})
				delete(remaining, id)
				break
			}
		}
		done <- recovered
	}()
	r.pending = append(r.pending, &bruteForceTask{appID: appID, done: done})
}

// PollBruteForceTasks is the non-blocking per-tick poll of pending
// background element-id searches (§5). Completed tasks spawn their
// recovered windows; incomplete ones stay queued.
func (r *Recovery) PollBruteForceTasks() {
	still := r.pending[:0]
	for _, t := range r.pending {
		select {
		case snaps := <-t.done:
			for _, snap := range snaps {
				r.spawnExistingWindow(t.appID, snap)
			}
		default:
			still = append(still, t)
		}
	}
	r.pending = still
}

// RunPhaseD refreshes every workspace strip against the OS-reported
// window list, applies Unmanaged(Minimized), raises the active
// workspace's first window, and clears Initializing (§4.7 Phase D).
func (r *Recovery) RunPhaseD() {
	r.store.workspaces.Each(func(wsID EntityID, ws *Workspace) {
		if ws.Strip == nil {
			return
		}
		osWindows, err := r.port.WindowsInWorkspace(ws.PlatformID)
		if err != nil {
			return
		}
		present := map[platform.WinID]bool{}
		for _, wid := range osWindows {
			present[wid] = true
		}

		for _, wid := range ws.Strip.AllWindows() {
			if !present[wid] {
				ws.Strip.Remove(wid)
			}
		}
		existing := map[platform.WinID]bool{}
		for _, wid := range ws.Strip.AllWindows() {
			existing[wid] = true
		}
		for _, wid := range osWindows {
			if existing[wid] {
				continue
			}
			if _, ok := r.store.WindowByWinID(wid); ok {
				ws.Strip.Append(wid)
			}
		}
	})

	var firstInActive *EntityID
	activeWsID, ok := r.store.ActiveWorkspaceID()
	if ok {
		if ws, err := r.store.Workspace(activeWsID); err == nil && ws.Strip != nil {
			if col, err := ws.Strip.First(); err == nil {
				if top, ok := col.Top(); ok {
					if id, ok := r.store.WindowByWinID(top); ok {
						firstInActive = &id
					}
				}
			}
		}
	}

	r.store.windows.Each(func(id EntityID, w *Window) {
		if w.Port != nil && w.Port.IsMinimized() {
			r.store.AddUnmanaged(id, Minimized)
		}
	})

	if firstInActive != nil {
		if w, err := r.store.Window(*firstInActive); err == nil {
			app, aerr := r.store.Application(w.ApplicationID)
			if aerr == nil && w.Port != nil {
				_ = w.Port.FocusWithRaise(app.PSN)
			}
			r.store.SetFocused(*firstInActive)
		}
	}

	r.store.ClearInitializing()
}
