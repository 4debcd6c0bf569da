//go:build linux

// Package rtsched gives the calling goroutine's OS thread a best-effort
// realtime scheduling hint, grounded on golang.org/x/sys/unix (used
// elsewhere in the pack for raw syscalls opd-ai/toxcore's async
// package reaches for, e.g. unix.Statfs in storage_limits.go). The
// audio callback's OS thread benefits from SCHED_FIFO priority so the
// scheduler preempts it less often; this is advisory only — sushi-go
// runs correctly, just with looser timing, if the call fails for lack
// of privilege.
package rtsched

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/justyntemme/sushi-go/internal/logx"
)

var log = logx.New("rtsched")

// PromoteCurrentThread locks the calling goroutine to its current OS
// thread and requests SCHED_FIFO at the given priority (1-99). Callers
// should invoke this once, early, on the goroutine that will run the
// audio callback loop. Failure is logged and the error is returned;
// realtime priority is an optimization, not a correctness requirement,
// so a caller may carry on without it.
func PromoteCurrentThread(priority int) error {
	runtime.LockOSThread()

	param := &unix.SchedParam{Priority: int32(priority)}
	if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, param); err != nil {
		log.WithField("priority", priority).WithField("error", err.Error()).
			Warn("could not set SCHED_FIFO, continuing at default priority")
		return fmt.Errorf("rtsched: SchedSetscheduler: %w", err)
	}
	log.WithField("priority", priority).Debug("audio thread promoted to SCHED_FIFO")
	return nil
}
