package handler

import (
	"encoding/json"
	"net/http"

	"vouchy/internal/api/v1/dto"
	"vouchy/internal/middleware"
	"vouchy/internal/service"
	"vouchy/internal/util"

	"github.com/rs/zerolog"
)

type AIHandler struct {
	aiService service.AIService
	logger    zerolog.Logger
}

func NewAIHandler(aiService service.AIService, logger zerolog.Logger) *AIHandler {
	return &AIHandler{aiService: aiService, logger: logger}
}

func (h *AIHandler) RegisterRoutes(mux *http.ServeMux, wrap func(string, http.Handler) http.Handler, authMw func(http.Handler) http.Handler, paths ...string) {
	for _, p := range paths {
		mux.Handle(p, wrap("ai-features", authMw(http.HandlerFunc(h.AIFeatures))))
	}
}

// AIFeatures godoc
// @Summary Run an AI helper
// @Description Runs generate-script, enhance-text or extract-summary through the LLM gateway.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AIRequest true "Action and inputs"
// @Success 200 {object} dto.AIResponseDTO
// @Failure 400 {object} map[string]string "unknown action or missing input"
// @Failure 401 {object} map[string]string "unauthorized"
// @Failure 403 {object} map[string]string "monthly limit reached"
// @Failure 429 {object} map[string]string "gateway rate limited"
// @Failure 500 {object} map[string]string "gateway error"
// @Router /ai-features [post]
func (h *AIHandler) AIFeatures(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r.Context())
	if userID == "" {
		util.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.AIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	result, err := h.aiService.Run(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, dto.AIResponseDTO{Action: req.Action, Result: result})
}
