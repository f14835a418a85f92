// Package scheduler runs the core's single-threaded cooperative event
// loop (§5): a fixed set of systems executed each tick in
// PreUpdate/Update/PostUpdate order, reading from an external event
// channel and a command channel, mutating the entity store, and
// emitting follow-up events for a future tick. Exactly one system
// mutates the store at a time; no mutex guards it.
package scheduler

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/stripwm/stripwm/internal/config"
	"github.com/stripwm/stripwm/internal/platform"
	"github.com/stripwm/stripwm/internal/wm"
)

// DisplayWatchIntervalMS gates how often the display/workspace
// watchers and orphan-recovery sweep run when polling is enabled
// (SPEC_FULL supplemented feature 4, ported from the original's
// DISPLAY_CHANGE_CHECK_FREQ_MS).
const DisplayWatchIntervalMS = 1000

const (
	minPumpTimeout = 1 * time.Millisecond
	maxPumpTimeout = 500 * time.Millisecond
	pumpTimeoutStep = 1 * time.Millisecond
)

// Scheduler owns the Store and every system that mutates it, and pumps
// the external event/command channels into ticks.
type Scheduler struct {
	store      *wm.Store
	cfg        *config.Config
	port       platform.WindowManagerPort
	dispatcher *wm.Dispatcher
	loop       *wm.EventLoop
	recovery   *wm.Recovery
	logger     *log.Logger

	events   <-chan platform.Event
	commands <-chan platform.Command

	pumpTimeout      time.Duration
	lastDisplayWatch time.Time
	lastTick         time.Time

	pollForNotifications bool
}

// New builds a Scheduler wired over store/port/cfg, reading external
// events and commands from the given channels.
func New(store *wm.Store, port platform.WindowManagerPort, cfg *config.Config, events <-chan platform.Event, commands <-chan platform.Command) *Scheduler {
	dispatcher := wm.NewDispatcher(store, port, cfg)
	return &Scheduler{
		store:       store,
		cfg:         cfg,
		port:        port,
		dispatcher:  dispatcher,
		loop:        wm.NewEventLoop(store, port, cfg, dispatcher),
		recovery:    wm.NewRecovery(store, port, cfg),
		logger:      log.Default().With("component", "scheduler"),
		events:      events,
		commands:    commands,
		pumpTimeout: minPumpTimeout,
	}
}

// SetPollForNotifications enables the periodic display/workspace
// watcher sweep (some platform backends only support polling).
func (s *Scheduler) SetPollForNotifications(v bool) { s.pollForNotifications = v }

// Startup runs §4.7 Phases B-D. Phase A (gather processes until
// ProcessesLoaded) must already have happened, by draining `events`
// through RunPhaseA, before calling Startup.
func (s *Scheduler) Startup() error {
	if err := s.recovery.RunPhaseB(); err != nil {
		return err
	}
	s.recovery.RunPhaseC()
	s.recovery.RunPhaseD()
	return nil
}

// RunPhaseA drains `events` until a ProcessesLoaded or Exit event
// arrives, applying ordinary event handling along the way so launched
// processes are recorded (§4.7 Phase A).
func (s *Scheduler) RunPhaseA() bool {
	for ev := range s.events {
		if _, ok := ev.(platform.ProcessesLoaded); ok {
			return true
		}
		if _, ok := ev.(platform.Exit); ok {
			return false
		}
		s.loop.Handle(ev)
	}
	return false
}

// Run pumps events and commands until an Exit event/command is
// observed, ticking PreUpdate/Update/PostUpdate each iteration (§5).
func (s *Scheduler) Run() {
	s.lastTick = time.Now()
	for {
		if !s.tick() {
			return
		}
	}
}

// tick runs one PreUpdate/Update/PostUpdate cycle and returns false
// once Exit has been observed.
func (s *Scheduler) tick() bool {
	now := time.Now()
	dt := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	s.store.AdvanceClock(dt)

	gotEvent, exit := s.preUpdate()
	if exit {
		return false
	}
	s.update()
	s.postUpdate(dt)

	if gotEvent {
		s.pumpTimeout = minPumpTimeout
	} else {
		s.pumpTimeout += pumpTimeoutStep
		if s.pumpTimeout > maxPumpTimeout {
			s.pumpTimeout = maxPumpTimeout
		}
	}
	return true
}

// preUpdate drains external events into the internal handler and
// dispatches queued commands (§5 PreUpdate). It blocks for at most the
// current adaptive pump timeout waiting for the first event/command of
// the tick, then drains anything else already buffered without
// blocking.
func (s *Scheduler) preUpdate() (gotEvent bool, exit bool) {
	timer := time.NewTimer(s.pumpTimeout)
	defer timer.Stop()

	select {
	case ev, ok := <-s.events:
		if !ok {
			return false, true
		}
		gotEvent = true
		if s.handleEvent(ev) {
			return gotEvent, true
		}
	case cmd, ok := <-s.commands:
		if !ok {
			return false, true
		}
		gotEvent = true
		if s.handleCommand(cmd) {
			return gotEvent, true
		}
	case <-timer.C:
	}

	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return gotEvent, true
			}
			gotEvent = true
			if s.handleEvent(ev) {
				return gotEvent, true
			}
		case cmd, ok := <-s.commands:
			if !ok {
				return gotEvent, true
			}
			gotEvent = true
			if s.handleCommand(cmd) {
				return gotEvent, true
			}
		default:
			return gotEvent, false
		}
	}
}

// handleEvent runs one event through the trigger system, requeuing any
// follow-up events it produces. Returns true if Exit was observed.
func (s *Scheduler) handleEvent(ev platform.Event) bool {
	if _, ok := ev.(platform.Exit); ok {
		return true
	}
	for _, followUp := range s.loop.Handle(ev) {
		if s.handleEvent(followUp) {
			return true
		}
	}
	return false
}

// handleCommand dispatches one command, requeuing any follow-up
// commands and events immediately (same-tick, matching §5 ordering
// guarantee 2: "command effects on entity state are observable by the
// next tick's systems" — follow-ups here are issued synchronously so
// they land within the guarantee rather than waiting an extra tick).
// Follow-up events (e.g. the MouseMoved that Mouse(ToNextDisplay)
// emits to hand off to focus-follows-mouse, §4.3) are routed through
// the same event handler commands themselves never touch.
func (s *Scheduler) handleCommand(cmd platform.Command) bool {
	if _, ok := cmd.(platform.CmdQuit); ok {
		return true
	}
	followUpCommands, followUpEvents := s.dispatcher.Dispatch(cmd)
	for _, ev := range followUpEvents {
		if s.handleEvent(ev) {
			return true
		}
	}
	for _, followUp := range followUpCommands {
		if s.handleCommand(followUp) {
			return true
		}
	}
	return false
}

// update runs the Update-phase systems: timeout ticking, polling of
// startup's brute-force window searches, the window swiper, fresh-marker cleanup, and
// (when enabled) the periodic display/workspace watcher (§5 Update).
func (s *Scheduler) update() {
	for _, followUp := range s.loop.TickTimeouts() {
		s.handleEvent(followUp)
	}
	s.recovery.PollBruteForceTasks()
	s.loop.RunWindowSwiper()
	s.store.ClearFreshMarkers()

	if s.pollForNotifications {
		now := time.Now()
		if now.Sub(s.lastDisplayWatch) >= DisplayWatchIntervalMS*time.Millisecond {
			s.lastDisplayWatch = now
			s.handleEvent(platform.DisplayChanged{})
		}
	}
}

// postUpdate runs the reshuffle and animation systems (§5 PostUpdate):
// reshuffle first so this tick's Reposition/Resize targets are fresh,
// then animate both toward them in the same tick (ordering guarantee
// 3), stepping by the tick's actual elapsed time so animation speed
// tracks real time regardless of the adaptive pump cadence (§4.6).
func (s *Scheduler) postUpdate(dt float64) {
	s.store.ReshuffleLayoutStrip(s.cfg)
	s.store.AnimateStep(s.cfg, dt)
}
