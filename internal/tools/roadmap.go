package tools

import (
	"sort"
	"strings"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Roadmap horizons, in delivery order.
const (
	HorizonNow   = "now"
	HorizonNext  = "next"
	HorizonLater = "later"
)

// RoadmapItem is one initiative to place on the roadmap.
type RoadmapItem struct {
	Title  string    `json:"title"`
	Rice   RICEInput `json:"rice"`
	Months float64   `json:"months"` // Estimated calendar months to deliver
}

// RoadmapEntry is a scored, titled item in a horizon.
type RoadmapEntry struct {
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Priority string  `json:"priority"`
}

// Roadmap groups the entries into delivery horizons, each sorted by
// descending RICE score.
type Roadmap struct {
	Now   []RoadmapEntry `json:"now"`
	Next  []RoadmapEntry `json:"next"`
	Later []RoadmapEntry `json:"later"`
}

var titleCaser = cases.Title(language.English)

// BuildRoadmap scores every item and places it in a horizon: "now" within 3
// months, "next" within 9, "later" beyond. Items inherit their RICE priority
// band so the roadmap reads consistently with the prioritization tool.
func BuildRoadmap(items []RoadmapItem) (*Roadmap, error) {
	const op = "tools.BuildRoadmap"

	if len(items) == 0 {
		return nil, domain.Invalid(op, "At least one roadmap item is required")
	}

	rm := &Roadmap{}
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			return nil, domain.Invalid(op, "Every roadmap item needs a title")
		}
		if item.Months <= 0 {
			return nil, domain.Invalid(op, "Every roadmap item needs a positive month estimate")
		}

		result, err := ScoreRICE(item.Rice)
		if err != nil {
			return nil, err
		}

		entry := RoadmapEntry{
			Title:    titleCaser.String(title),
			Score:    result.Score,
			Priority: result.Priority,
		}

		switch {
		case item.Months <= 3:
			rm.Now = append(rm.Now, entry)
		case item.Months <= 9:
			rm.Next = append(rm.Next, entry)
		default:
			rm.Later = append(rm.Later, entry)
		}
	}

	for _, horizon := range [][]RoadmapEntry{rm.Now, rm.Next, rm.Later} {
		sort.SliceStable(horizon, func(i, j int) bool {
			return horizon[i].Score > horizon[j].Score
		})
	}

	return rm, nil
}
