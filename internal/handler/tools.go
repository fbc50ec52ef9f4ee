// This file implements handlers for the PM toolkit endpoints.
//
// Routes:
//   - POST /api/tools/rice    -> ScoreRICE
//   - POST /api/tools/roadmap -> BuildRoadmap
//   - POST /api/tools/plan    -> BuildPlan
//
// Toolkit routes sit behind RequireActiveSubscription; the chat endpoint
// does not, since free-tier chat access is governed by the message quota.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/ValayAI/pm-pathfinder/internal/tools"
)

// ToolsHandler handles PM toolkit requests.
type ToolsHandler struct {
	logger *slog.Logger
}

// NewToolsHandler creates a new ToolsHandler.
func NewToolsHandler(logger *slog.Logger) *ToolsHandler {
	return &ToolsHandler{logger: logger}
}

// ScoreRICE handles POST /api/tools/rice.
func (h *ToolsHandler) ScoreRICE(w http.ResponseWriter, r *http.Request) {
	var req tools.RICEInput
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := tools.ScoreRICE(req)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// BuildRoadmap handles POST /api/tools/roadmap.
func (h *ToolsHandler) BuildRoadmap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []tools.RoadmapItem `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	roadmap, err := tools.BuildRoadmap(req.Items)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, roadmap)
}

// BuildPlan handles POST /api/tools/plan.
func (h *ToolsHandler) BuildPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Focus string `json:"focus"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	plan, err := tools.BuildStarterPlan(req.Focus)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
