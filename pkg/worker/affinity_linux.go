//go:build linux

package worker

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// maxCPUs bounds the scan of the affinity mask (CPU_SETSIZE)
const maxCPUs = 1024

// pinCurrentThread binds the calling OS thread to one CPU of the process
// affinity set, chosen round-robin by worker index. The caller must hold
// runtime.LockOSThread.
func pinCurrentThread(workerID int) error {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return fmt.Errorf("pin worker %d: get affinity: %w", workerID, err)
	}

	count := allowed.Count()
	if count == 0 {
		return fmt.Errorf("pin worker %d: empty affinity set", workerID)
	}

	target := workerID % count
	for cpu, seen := 0, 0; cpu < maxCPUs; cpu++ {
		if !allowed.IsSet(cpu) {
			continue
		}
		if seen == target {
			var set unix.CPUSet
			set.Zero()
			set.Set(cpu)
			if err := unix.SchedSetaffinity(0, &set); err != nil {
				return fmt.Errorf("pin worker %d to cpu %d: %w", workerID, cpu, err)
			}
			return nil
		}
		seen++
	}
	return fmt.Errorf("pin worker %d: no cpu at position %d", workerID, target)
}
