package tools

import (
	"testing"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRoadmap(t *testing.T) {
	items := []RoadmapItem{
		{Title: "onboarding revamp", Rice: RICEInput{Reach: 500, Impact: 2, Confidence: 80, Effort: 4}, Months: 2},
		{Title: "billing portal", Rice: RICEInput{Reach: 100, Impact: 1, Confidence: 80, Effort: 1}, Months: 3},
		{Title: "mobile app", Rice: RICEInput{Reach: 40, Impact: 0.5, Confidence: 100, Effort: 2}, Months: 8},
		{Title: "ai assistant", Rice: RICEInput{Reach: 10, Impact: 0.25, Confidence: 50, Effort: 0.25}, Months: 12},
	}

	rm, err := BuildRoadmap(items)
	require.NoError(t, err)

	require.Len(t, rm.Now, 2)
	require.Len(t, rm.Next, 1)
	require.Len(t, rm.Later, 1)

	// Within a horizon, higher scores come first.
	assert.Equal(t, "Onboarding Revamp", rm.Now[0].Title)
	assert.Equal(t, "Billing Portal", rm.Now[1].Title)
	assert.True(t, rm.Now[0].Score > rm.Now[1].Score)

	// Titles are normalized to title case.
	assert.Equal(t, "Mobile App", rm.Next[0].Title)
	assert.Equal(t, "Ai Assistant", rm.Later[0].Title)
}

func TestBuildRoadmap_HorizonBoundaries(t *testing.T) {
	rice := RICEInput{Reach: 10, Impact: 1, Confidence: 100, Effort: 1}

	tests := []struct {
		months float64
		want   string
	}{
		{1, HorizonNow},
		{3, HorizonNow},
		{4, HorizonNext},
		{9, HorizonNext},
		{10, HorizonLater},
	}

	for _, tt := range tests {
		rm, err := BuildRoadmap([]RoadmapItem{{Title: "item", Rice: rice, Months: tt.months}})
		require.NoError(t, err)

		var got string
		switch {
		case len(rm.Now) == 1:
			got = HorizonNow
		case len(rm.Next) == 1:
			got = HorizonNext
		case len(rm.Later) == 1:
			got = HorizonLater
		}
		assert.Equal(t, tt.want, got, "months=%v", tt.months)
	}
}

func TestBuildRoadmap_Validation(t *testing.T) {
	rice := RICEInput{Reach: 10, Impact: 1, Confidence: 100, Effort: 1}

	_, err := BuildRoadmap(nil)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, err = BuildRoadmap([]RoadmapItem{{Title: "  ", Rice: rice, Months: 1}})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, err = BuildRoadmap([]RoadmapItem{{Title: "item", Rice: rice, Months: 0}})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	// Invalid RICE factors surface from the scorer.
	_, err = BuildRoadmap([]RoadmapItem{{Title: "item", Rice: RICEInput{}, Months: 1}})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestBuildStarterPlan(t *testing.T) {
	for _, focus := range []string{FocusDiscovery, FocusExecution, FocusGrowth} {
		plan, err := BuildStarterPlan(focus)
		require.NoError(t, err)
		assert.Equal(t, focus, plan.Focus)
		require.Len(t, plan.Phases, 3)
		assert.Equal(t, 30, plan.Phases[0].Days)
		assert.Equal(t, 60, plan.Phases[1].Days)
		assert.Equal(t, 90, plan.Phases[2].Days)
		for _, phase := range plan.Phases {
			assert.NotEmpty(t, phase.Theme)
			assert.NotEmpty(t, phase.Objectives)
		}
	}

	// Input is normalized before lookup.
	plan, err := BuildStarterPlan("  Growth ")
	require.NoError(t, err)
	assert.Equal(t, FocusGrowth, plan.Focus)

	_, err = BuildStarterPlan("world domination")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestBuildStarterPlan_TemplatesAreImmutable(t *testing.T) {
	plan, err := BuildStarterPlan(FocusDiscovery)
	require.NoError(t, err)

	plan.Phases[0].Objectives[0] = "mutated"

	again, err := BuildStarterPlan(FocusDiscovery)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Phases[0].Objectives[0])
}
