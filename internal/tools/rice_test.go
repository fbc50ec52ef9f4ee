package tools

import (
	"testing"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRICE(t *testing.T) {
	tests := []struct {
		name         string
		input        RICEInput
		wantScore    float64
		wantPriority string
	}{
		{
			name:         "textbook example",
			input:        RICEInput{Reach: 500, Impact: 2, Confidence: 80, Effort: 4},
			wantScore:    200,
			wantPriority: PriorityCritical,
		},
		{
			name:         "high band",
			input:        RICEInput{Reach: 100, Impact: 1, Confidence: 80, Effort: 1},
			wantScore:    80,
			wantPriority: PriorityHigh,
		},
		{
			name:         "medium band",
			input:        RICEInput{Reach: 40, Impact: 0.5, Confidence: 100, Effort: 2},
			wantScore:    10,
			wantPriority: PriorityMedium,
		},
		{
			name:         "low band with fractional effort",
			input:        RICEInput{Reach: 10, Impact: 0.25, Confidence: 50, Effort: 0.25},
			wantScore:    5,
			wantPriority: PriorityLow,
		},
		{
			name:         "rounds to two decimals",
			input:        RICEInput{Reach: 100, Impact: 1, Confidence: 33, Effort: 3},
			wantScore:    11,
			wantPriority: PriorityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScoreRICE(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantPriority, got.Priority)
		})
	}
}

func TestScoreRICE_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RICEInput
	}{
		{"zero reach", RICEInput{Reach: 0, Impact: 1, Confidence: 80, Effort: 1}},
		{"negative reach", RICEInput{Reach: -5, Impact: 1, Confidence: 80, Effort: 1}},
		{"off-scale impact", RICEInput{Reach: 10, Impact: 1.5, Confidence: 80, Effort: 1}},
		{"zero confidence", RICEInput{Reach: 10, Impact: 1, Confidence: 0, Effort: 1}},
		{"confidence above 100", RICEInput{Reach: 10, Impact: 1, Confidence: 120, Effort: 1}},
		{"effort below minimum", RICEInput{Reach: 10, Impact: 1, Confidence: 80, Effort: 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScoreRICE(tt.input)
			assert.Nil(t, got)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
}
