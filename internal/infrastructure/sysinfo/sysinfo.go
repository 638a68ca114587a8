//go:build linux

// Package sysinfo collects the one-time system details snapshot taken at
// the start of a collection run.
package sysinfo

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/kodflow/syswit/internal/domain/sample"
)

const (
	nodeDir = "/sys/devices/system/node"
	cmdlinePath = "/proc/cmdline"
	nodeDirPrefix = "node"
)

// Collect gathers hostname, kernel release, cpu count, NUMA node count, OS,
// architecture, the running binary's Go runtime version, network
// interface names, and the kernel command line: a one-shot snapshot of
// the host a run executed on.
func Collect() (*sample.SystemConfiguration, error) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return nil, fmt.Errorf("sysinfo: uname: %w", err)
	}

	numaNodes, err := CountNUMANodes()
	if err != nil {
		numaNodes = 1
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		ifaces = nil
	}
	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		names = append(names, iface.Name)
	}

	cmdline, err := os.ReadFile(cmdlinePath)
	if err != nil {
		cmdline = nil
	}

	return &sample.SystemConfiguration{
		Hostname: cstringToString(uname.Nodename[:]),
		KernelRelease: cstringToString(uname.Release[:]),
		CPUCount: runtime.NumCPU(),
		NUMANodes: numaNodes,
		OS: cstringToString(uname.Sysname[:]),
		Arch: cstringToString(uname.Machine[:]),
		RuntimeVersion: runtime.Version(),
		NetworkInterfaces: names,
		KernelCmdline: strings.TrimSpace(string(cmdline)),
	}, nil
}

// CountNUMANodes enumerates /sys/devices/system/node/node<N> directories.
func CountNUMANodes() (int, error) {
	entries, err := os.ReadDir(nodeDir)
	if err != nil {
		return 0, fmt.Errorf("sysinfo: reading %s: %w", nodeDir, err)
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), nodeDirPrefix) {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimPrefix(e.Name(), nodeDirPrefix)); err == nil {
			count++
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("sysinfo: no NUMA node directories under %s", nodeDir)
	}
	return count, nil
}

// NodeCPUList reads /sys/devices/system/node/node<N>/cpulist and parses its
// comma/range-separated CPU set.
func NodeCPUList(node int) ([]int, error) {
	path := filepath.Join(nodeDir, fmt.Sprintf("%s%d", nodeDirPrefix, node), "cpulist")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sysinfo: reading %s: %w", path, err)
	}
	return parseCPUList(strings.TrimSpace(string(data)))
}

func parseCPUList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(bounds[0])
			if err != nil {
				return nil, fmt.Errorf("sysinfo: parsing cpulist range %q: %w", part, err)
			}
			end, err := strconv.Atoi(bounds[1])
			if err != nil {
				return nil, fmt.Errorf("sysinfo: parsing cpulist range %q: %w", part, err)
			}
			for i := start; i <= end; i++ {
				out = append(out, i)
			}
		} else {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("sysinfo: parsing cpulist entry %q: %w", part, err)
			}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out, nil
}

// SetAffinity pins the calling thread's CPU affinity to the given CPU set
// using sched_setaffinity, mirroring the run controller's one-time pinning
// step.
func SetAffinity(cpus []int) error {
	if len(cpus) == 0 {
		return nil
	}
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sysinfo: sched_setaffinity: %w", err)
	}
	return nil
}

func cstringToString(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
