package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning indicates another process with the same executable name is alive.
var ErrAlreadyRunning = errors.New("instance already running")

// ProcessLister returns the running processes.
type ProcessLister func() ([]ps.Process, error)

// CheckSingleInstance returns ErrAlreadyRunning when another process
// runs an executable named like ours.
func CheckSingleInstance() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	return checkSingleInstance(ps.Processes, executableName(self), os.Getpid())
}

func checkSingleInstance(list ProcessLister, name string, selfPID int) error {
	processes, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, p := range processes {
		if p.Pid() == selfPID {
			continue
		}

		if sameExecutable(p.Executable(), name) {
			return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, p.Pid())
		}
	}

	return nil
}

func executableName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".exe")
}

// sameExecutable compares names; Linux truncates process names to 15 bytes.
func sameExecutable(candidate, name string) bool {
	const linuxCommLimit = 15

	candidate = strings.TrimSuffix(candidate, ".exe")
	if strings.EqualFold(candidate, name) {
		return true
	}

	return len(candidate) == linuxCommLimit && len(name) > linuxCommLimit && strings.HasPrefix(name, candidate)
}
