// Package procgroup spawns and reaps external processes as process groups,
// so that termination also reaches any children the tool forks.
package procgroup

import (
	"os/exec"
)

// Set configures the command to start in a new process group.
// Mandatory for Kill and Terminate to reach the whole group.
func Set(cmd *exec.Cmd) {
	set(cmd)
}
