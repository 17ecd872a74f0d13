package health

import (
	"fmt"

	"github.com/paraxiom/fleet-monitor/pkg/types"
)

// Evaluate applies the fixed thresholds to one snapshot. An unreachable node
// yields exactly one CRITICAL issue and nothing else; otherwise the peer and
// syncing rules are checked independently.
func Evaluate(snapshot types.HealthSnapshot, minPeers uint) []types.Issue {
	name := snapshot.Endpoint.Name

	if !snapshot.Reachable {
		return []types.Issue{
			{
				Severity:     types.SeverityCritical,
				EndpointName: name,
				Description:  "unreachable",
			},
		}
	}

	var issues []types.Issue
	if snapshot.PeerCount != nil && *snapshot.PeerCount < minPeers {
		issues = append(issues, types.Issue{
			Severity:     types.SeverityWarning,
			EndpointName: name,
			Description:  fmt.Sprintf("low peer count: %d (min %d)", *snapshot.PeerCount, minPeers),
		})
	}
	if snapshot.IsSyncing != nil && *snapshot.IsSyncing {
		issues = append(issues, types.Issue{
			Severity:     types.SeverityWarning,
			EndpointName: name,
			Description:  "node is syncing",
		})
	}
	return issues
}

// Classify derives the node status from its issues: any CRITICAL issue is
// FAIL, any WARNING alone is WARN, none is OK.
func Classify(issues []types.Issue) types.NodeStatus {
	status := types.NodeOK
	for _, issue := range issues {
		if issue.Severity == types.SeverityCritical {
			return types.NodeFail
		}
		status = types.NodeWarn
	}
	return status
}
