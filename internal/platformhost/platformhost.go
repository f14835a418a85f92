// Package platformhost supplies one optional real-OS-backed
// capability: a process lister that feeds the core's startup Phase A
// (§4.7) from the local machine's actual process table instead of a
// scripted fixture. It exists for a `--discover-real-processes` debug
// flag on `launch`; nothing else in the core imports it, and the
// deterministic platform.Mock does not depend on it.
package platformhost

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/stripwm/stripwm/internal/platform"
)

// HostProcessPort lists real local processes as ProcessSnapshots,
// best-effort: gopsutil reads /proc (or the platform equivalent) and
// individual processes can disappear mid-scan, so entries with
// unreadable names are skipped rather than failing the whole scan.
type HostProcessPort struct{}

// NewHostProcessPort builds a HostProcessPort. There is no state to
// hold; a value exists only to give the type a discoverable name on
// the call site (`platformhost.NewHostProcessPort().List(ctx)`).
func NewHostProcessPort() *HostProcessPort { return &HostProcessPort{} }

// ProcessSnapshot is the subset of process state Phase A needs: enough
// to synthesize a PSN and an ApplicationLaunched event per process.
type ProcessSnapshot struct {
	PID  int32
	Name string
}

// List enumerates the local process table, sorted by PID for
// deterministic iteration order across calls.
func (HostProcessPort) List(ctx context.Context) ([]ProcessSnapshot, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("platformhost: list processes: %w", err)
	}

	out := make([]ProcessSnapshot, 0, len(procs))
	for _, p := range procs {
		name, nerr := p.NameWithContext(ctx)
		if nerr != nil || name == "" {
			continue
		}
		out = append(out, ProcessSnapshot{PID: p.Pid, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

// LaunchEvents converts a process listing into the ApplicationLaunched
// events startup Phase A already knows how to consume, synthesizing a
// PSN from the PID since the host process table has no notion of one.
func LaunchEvents(snaps []ProcessSnapshot) []platform.Event {
	out := make([]platform.Event, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, platform.ApplicationLaunched{
			PSN:  platform.PSN{High: 0, Low: uint32(s.PID)},
			Name: s.Name,
		})
	}
	return out
}
