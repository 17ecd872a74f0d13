package consistency

import (
	"github.com/paraxiom/fleet-monitor/pkg/types"
)

// Check computes the block height spread across the reachable snapshots and
// compares it to the lag threshold with a strict `>`. With fewer than two
// reachable nodes the check is skipped: absence of data is not evidence of
// desynchronization.
func Check(snapshots []types.HealthSnapshot, maxLag uint64) types.ConsistencyReport {
	report := types.ConsistencyReport{
		Heights: make(map[string]uint64),
	}

	for _, snapshot := range snapshots {
		if !snapshot.Reachable || snapshot.BlockHeight == nil {
			continue
		}
		report.Heights[snapshot.Endpoint.Name] = *snapshot.BlockHeight
	}

	if len(report.Heights) < 2 {
		return report
	}

	var min, max uint64
	first := true
	for _, height := range report.Heights {
		if first {
			min, max = height, height
			first = false
			continue
		}
		if height < min {
			min = height
		}
		if height > max {
			max = height
		}
	}

	report.MaxLag = max - min
	report.Exceeded = report.MaxLag > maxLag
	return report
}
