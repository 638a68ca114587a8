// Package affinity resolves the CPU set a collection run should pin its
// goroutines to, from user-supplied CPU and NUMA-node affinity strings.
package affinity

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sentinel errors for affinity resolution failures.
var (
	// ErrEmptyIntersection indicates the CPU and NUMA-node affinity
	// selections share no CPU in common.
	ErrEmptyIntersection = errors.New("affinity: cpu and node affinity selections do not intersect")
	// ErrInvalidElement indicates a malformed range or index in an
	// affinity string.
	ErrInvalidElement = errors.New("affinity: invalid list element")
	// ErrOutOfRange indicates a parsed cpu or node index falls outside
	// the host's actual range.
	ErrOutOfRange = errors.New("affinity: index out of range")
)

// ParseList parses a comma/colon affinity string such as "0:2,6" into the
// sorted, deduplicated set of indices it denotes: "0:2" is an inclusive
// range, "," unions terms. max bounds valid indices to [0, max).
func ParseList(input string, max int) ([]int, error) {
	seen := make(map[int]struct{})
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, ":") {
			bounds := strings.SplitN(part, ":", 2)
			if len(bounds) != 2 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidElement, part)
			}
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidElement, part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidElement, part)
			}
			for i := start; i <= end; i++ {
				if i >= 0 && i < max {
					seen[i] = struct{}{}
				}
			}
		} else {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidElement, part)
			}
			if v < 0 || v >= max {
				return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, v, max)
			}
			seen[v] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}

// NodeCPUs maps a NUMA node index to the CPUs it contains (the expansion of
// /sys/devices/system/node/nodeN/cpulist).
type NodeCPUs map[int][]int

// Resolve determines the final CPU set a run should pin to. cpuAffinity and
// nodeAffinity are the raw CLI strings (may be empty, meaning "unset").
// When only one of the two is set, it alone determines the CPU set. When
// both are set, the result is their intersection; an empty intersection is
// a fatal configuration error.
func Resolve(cpuAffinity, nodeAffinity string, cpuCount int, nodes NodeCPUs) ([]int, error) {
	var cpuList []int
	var err error
	if cpuAffinity != "" {
		cpuList, err = ParseList(cpuAffinity, cpuCount)
		if err != nil {
			return nil, err
		}
	}

	var nodeCPUs []int
	if nodeAffinity != "" {
		nodeIdxs, err := ParseList(nodeAffinity, len(nodes))
		if err != nil {
			return nil, err
		}
		seen := make(map[int]struct{})
		for _, n := range nodeIdxs {
			for _, cpu := range nodes[n] {
				seen[cpu] = struct{}{}
			}
		}
		for cpu := range seen {
			nodeCPUs = append(nodeCPUs, cpu)
		}
		sort.Ints(nodeCPUs)
	}

	switch {
	case cpuAffinity == "" && nodeAffinity == "":
		return nil, nil
	case cpuAffinity != "" && nodeAffinity == "":
		return cpuList, nil
	case cpuAffinity == "" && nodeAffinity != "":
		return nodeCPUs, nil
	default:
		result := intersect(cpuList, nodeCPUs)
		if len(result) == 0 {
			return nil, fmt.Errorf("%w: cpus=%v nodes=%v", ErrEmptyIntersection, cpuList, nodeCPUs)
		}
		return result, nil
	}
}

func intersect(a, b []int) []int {
	inB := make(map[int]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	var out []int
	for _, v := range a {
		if _, ok := inB[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
