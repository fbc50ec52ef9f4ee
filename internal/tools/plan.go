package tools

import (
	"strings"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
)

// Plan focus areas for the 30/60/90-day generator.
const (
	FocusDiscovery = "discovery"
	FocusExecution = "execution"
	FocusGrowth    = "growth"
)

// PlanPhase is one 30-day slice of a starter plan.
type PlanPhase struct {
	Days       int      `json:"days"`
	Theme      string   `json:"theme"`
	Objectives []string `json:"objectives"`
}

// StarterPlan is a 30/60/90-day onboarding plan for a PM role.
type StarterPlan struct {
	Focus  string      `json:"focus"`
	Phases []PlanPhase `json:"phases"`
}

// planTemplates holds the phase structure per focus area. Objectives are
// starting points the user edits, not prescriptions.
var planTemplates = map[string][]PlanPhase{
	FocusDiscovery: {
		{Days: 30, Theme: "Listen and map", Objectives: []string{
			"Interview 10 customers across segments",
			"Map the current user journey end to end",
			"Inventory existing research and support themes",
		}},
		{Days: 60, Theme: "Synthesize and frame", Objectives: []string{
			"Cluster findings into 3-5 problem statements",
			"Validate the top problems with targeted follow-ups",
			"Draft opportunity sizing for each problem",
		}},
		{Days: 90, Theme: "Commit to bets", Objectives: []string{
			"Pick two discovery bets and define success metrics",
			"Write one-pagers and socialize with stakeholders",
			"Schedule solution discovery sprints",
		}},
	},
	FocusExecution: {
		{Days: 30, Theme: "Stabilize delivery", Objectives: []string{
			"Audit the current backlog and kill stale items",
			"Establish a weekly prioritization ritual",
			"Agree on a definition of done with engineering",
		}},
		{Days: 60, Theme: "Tighten the loop", Objectives: []string{
			"Ship one meaningful improvement end to end",
			"Instrument the release with adoption metrics",
			"Run a retro and fix the top delivery bottleneck",
		}},
		{Days: 90, Theme: "Scale the system", Objectives: []string{
			"Publish a quarterly roadmap with confidence levels",
			"Set up a launch checklist and comms template",
			"Delegate one recurring process to the team",
		}},
	},
	FocusGrowth: {
		{Days: 30, Theme: "Find the levers", Objectives: []string{
			"Build the acquisition-to-retention funnel view",
			"Identify the biggest drop-off point",
			"Benchmark conversion against comparable products",
		}},
		{Days: 60, Theme: "Run experiments", Objectives: []string{
			"Launch 3 experiments against the top drop-off",
			"Set up an experiment review cadence",
			"Document wins and losses in a shared log",
		}},
		{Days: 90, Theme: "Double down", Objectives: []string{
			"Productize the winning experiment",
			"Set growth targets for the next two quarters",
			"Present the growth model to leadership",
		}},
	},
}

// BuildStarterPlan returns the 30/60/90-day plan for a focus area.
func BuildStarterPlan(focus string) (*StarterPlan, error) {
	const op = "tools.BuildStarterPlan"

	focus = strings.ToLower(strings.TrimSpace(focus))
	phases, ok := planTemplates[focus]
	if !ok {
		return nil, domain.Invalid(op, "Focus must be one of discovery, execution, or growth")
	}

	// Copy so callers can't mutate the templates.
	out := make([]PlanPhase, len(phases))
	for i, p := range phases {
		objectives := make([]string, len(p.Objectives))
		copy(objectives, p.Objectives)
		out[i] = PlanPhase{Days: p.Days, Theme: p.Theme, Objectives: objectives}
	}

	return &StarterPlan{Focus: focus, Phases: out}, nil
}
