package system

import (
	"fmt"
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// RaiseOpenFileLimit lifts the soft RLIMIT_NOFILE towards want, capped at
// the hard limit. Loader workers each hold a ground-truth table or image
// open, so large worker counts can exhaust the default of 256 on macOS.
// The returned value is the soft limit in effect afterwards.
func RaiseOpenFileLimit(want uint64) (uint64, error) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}
	if uint64(rLimit.Cur) >= want {
		return uint64(rLimit.Cur), nil
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, fmt.Errorf("setrlimit: %w", err)
	}
	return uint64(rLimit.Cur), nil
}

// DefaultWorkers picks the loader concurrency: physical cores when gopsutil
// can see them, logical CPUs otherwise.
func DefaultWorkers() int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	return n
}

// MemoryReport summarizes host memory for the startup log.
func MemoryReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("memory unavailable: %v", err)
	}
	const gib = 1 << 30
	return fmt.Sprintf("%.1f GiB available of %.1f GiB (%.0f%% used)",
		float64(vm.Available)/gib, float64(vm.Total)/gib, vm.UsedPercent)
}
