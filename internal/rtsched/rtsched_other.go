//go:build !linux

package rtsched

import "github.com/justyntemme/sushi-go/internal/logx"

var log = logx.New("rtsched")

// PromoteCurrentThread is a no-op outside Linux: SCHED_FIFO has no
// portable equivalent exposed through golang.org/x/sys/unix on other
// GOOS values, so the audio thread simply runs at default priority.
func PromoteCurrentThread(priority int) error {
	log.WithField("priority", priority).Debug("SCHED_FIFO not available on this platform, skipping")
	return nil
}
