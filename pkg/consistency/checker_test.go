package consistency

import (
	"testing"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/stretchr/testify/require"
)

func reachableAt(name string, height uint64) types.HealthSnapshot {
	return types.HealthSnapshot{
		Endpoint:    types.ValidatorEndpoint{Name: name},
		BlockHeight: &height,
		Reachable:   true,
	}
}

func unreachable(name string) types.HealthSnapshot {
	return types.HealthSnapshot{
		Endpoint: types.ValidatorEndpoint{Name: name},
	}
}

func TestCheckEqualHeights(t *testing.T) {
	report := Check([]types.HealthSnapshot{
		reachableAt("a", 100),
		reachableAt("b", 100),
		reachableAt("c", 100),
	}, 10)
	require.False(t, report.Exceeded)
	require.Equal(t, uint64(0), report.MaxLag)
	require.Len(t, report.Heights, 3)
}

func TestCheckExceeded(t *testing.T) {
	report := Check([]types.HealthSnapshot{
		reachableAt("a", 100),
		reachableAt("b", 85),
	}, 10)
	require.True(t, report.Exceeded)
	require.Equal(t, uint64(15), report.MaxLag)
}

func TestCheckLagEqualToThresholdNotExceeded(t *testing.T) {
	report := Check([]types.HealthSnapshot{
		reachableAt("a", 100),
		reachableAt("b", 90),
	}, 10)
	require.False(t, report.Exceeded)
	require.Equal(t, uint64(10), report.MaxLag)
}

func TestCheckSkipsUnreachable(t *testing.T) {
	report := Check([]types.HealthSnapshot{
		reachableAt("a", 100),
		unreachable("b"),
		reachableAt("c", 90),
	}, 10)
	require.False(t, report.Exceeded)
	require.Equal(t, uint64(10), report.MaxLag)
	require.Len(t, report.Heights, 2)
	require.NotContains(t, report.Heights, "b")
}

func TestCheckFewerThanTwoReachable(t *testing.T) {
	report := Check([]types.HealthSnapshot{
		reachableAt("a", 100),
		unreachable("b"),
	}, 10)
	require.False(t, report.Exceeded)
	require.Equal(t, uint64(0), report.MaxLag)

	report = Check(nil, 10)
	require.False(t, report.Exceeded)
	require.Empty(t, report.Heights)
}
