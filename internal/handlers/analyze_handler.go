package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/common"
	"github.com/oagarcia/proyecto-skandia/internal/interfaces"
	"github.com/oagarcia/proyecto-skandia/internal/models"
)

// AnalyzeHandler serves AI report generation and model listing.
type AnalyzeHandler struct {
	reports interfaces.ReportService
	logger  arbor.ILogger
}

func NewAnalyzeHandler(reports interfaces.ReportService) *AnalyzeHandler {
	return &AnalyzeHandler{
		reports: reports,
		logger:  common.GetLogger(),
	}
}

// AnalyzeRequestHandler generates an investment report for one portfolio.
func (h *AnalyzeHandler) AnalyzeRequestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.APIKey == "" {
		WriteError(w, http.StatusBadRequest, "apiKey is required")
		return
	}
	if req.Portfolio.Name == "" {
		WriteError(w, http.StatusBadRequest, "portfolio.name is required")
		return
	}

	result, err := h.reports.Analyze(r.Context(), &req)
	if err != nil {
		h.logger.Error().Str("portfolio", req.Portfolio.Name).Err(err).Msg("Report generation failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis failed: %v", err))
		return
	}

	response := map[string]interface{}{
		"success":   true,
		"analysis":  result.Analysis,
		"modelUsed": result.ModelUsed,
	}
	if result.PDFURL != "" {
		response["pdfUrl"] = result.PDFURL
	}
	WriteJSON(w, http.StatusOK, response)
}

// ModelsHandler lists the Gemini models available to the caller's API key.
func (h *AnalyzeHandler) ModelsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.APIKey == "" {
		WriteError(w, http.StatusBadRequest, "apiKey is required")
		return
	}

	modelNames, err := h.reports.ListModels(r.Context(), req.APIKey)
	if err != nil {
		h.logger.Error().Err(err).Msg("Model listing failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list models: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"models":  modelNames,
	})
}
