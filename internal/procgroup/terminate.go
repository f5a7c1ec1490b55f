package procgroup

import (
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/ttvtools/ttvrec/internal/metrics"
)

// Terminate attempts to gracefully stop a process group.
// It sends SIGTERM, waits for the process to exit (via the provided wait
// channel), and if it doesn't exit within grace, sends SIGKILL.
// It consumes and returns the error from waitCh.
// It is safe to call on nil commands (returns nil).
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	// If the process already finished normally, Kill calls are no-ops or
	// harmless errors (ESRCH).
	if err := Kill(cmd, syscall.SIGTERM); err == nil {
		metrics.IncProcTerminate("SIGTERM", "sent")
	} else if alreadyGone(err) {
		metrics.IncProcTerminate("SIGTERM", "esrch")
	} else {
		metrics.IncProcTerminate("SIGTERM", "error")
	}

	select {
	case err := <-waitCh:
		// Process exited voluntarily or due to SIGTERM.
		return err
	case <-time.After(grace):
		if err := Kill(cmd, syscall.SIGKILL); err == nil {
			metrics.IncProcTerminate("SIGKILL", "sent")
		} else if alreadyGone(err) {
			metrics.IncProcTerminate("SIGKILL", "esrch")
		} else {
			metrics.IncProcTerminate("SIGKILL", "error")
		}

		// Always drain waitCh; SIGKILL should unblock the process.
		return <-waitCh
	}
}

func alreadyGone(err error) bool {
	return strings.Contains(err.Error(), "process already finished") ||
		strings.Contains(err.Error(), "no such process")
}
