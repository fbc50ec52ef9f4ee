// Package tools implements the PM planning toolkit: RICE prioritization
// scoring, roadmap horizon grouping, and 30/60/90-day plan generation.
package tools

import (
	"math"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
)

// Priority bands for RICE scores.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// RICEInput holds the four scoring factors for one initiative.
type RICEInput struct {
	// Reach is how many users the initiative touches per quarter.
	Reach float64 `json:"reach"`
	// Impact is the per-user effect: 0.25 minimal, 0.5 low, 1 medium,
	// 2 high, 3 massive.
	Impact float64 `json:"impact"`
	// Confidence is a percentage between 0 and 100.
	Confidence float64 `json:"confidence"`
	// Effort is the estimated person-months, at least 0.25.
	Effort float64 `json:"effort"`
}

// RICEResult is a computed score with its priority band.
type RICEResult struct {
	Score    float64 `json:"score"`
	Priority string  `json:"priority"`
}

// validImpacts are the levels of the standard RICE impact scale.
var validImpacts = map[float64]bool{0.25: true, 0.5: true, 1: true, 2: true, 3: true}

// ScoreRICE computes (Reach x Impact x Confidence%) / Effort, rounded to two
// decimal places, and assigns the priority band.
func ScoreRICE(in RICEInput) (*RICEResult, error) {
	const op = "tools.ScoreRICE"

	if in.Reach <= 0 {
		return nil, domain.Invalid(op, "Reach must be greater than zero")
	}
	if !validImpacts[in.Impact] {
		return nil, domain.Invalid(op, "Impact must be one of 0.25, 0.5, 1, 2, or 3")
	}
	if in.Confidence <= 0 || in.Confidence > 100 {
		return nil, domain.Invalid(op, "Confidence must be a percentage between 1 and 100")
	}
	if in.Effort < 0.25 {
		return nil, domain.Invalid(op, "Effort must be at least 0.25 person-months")
	}

	score := (in.Reach * in.Impact * (in.Confidence / 100)) / in.Effort
	score = math.Round(score*100) / 100

	return &RICEResult{
		Score:    score,
		Priority: priorityBand(score),
	}, nil
}

// priorityBand assigns a coarse band so non-quantitative stakeholders can
// read the output at a glance.
func priorityBand(score float64) string {
	switch {
	case score >= 100:
		return PriorityCritical
	case score >= 50:
		return PriorityHigh
	case score >= 10:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
