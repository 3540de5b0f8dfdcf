package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oagarcia/proyecto-skandia/internal/models"
)

type fakeReportService struct {
	result *models.AnalysisResult
	models []string
	err    error
	gotReq *models.AnalysisRequest
}

func (f *fakeReportService) Analyze(_ context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	f.gotReq = req
	return f.result, f.err
}

func (f *fakeReportService) ListModels(_ context.Context, _ string) ([]string, error) {
	return f.models, f.err
}

func analyzeBody(t *testing.T, apiKey, name string) *strings.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"portfolio": map[string]interface{}{"name": name},
		"apiKey":    apiKey,
	})
	require.NoError(t, err)
	return strings.NewReader(string(body))
}

func TestAnalyzeHandlerSuccess(t *testing.T) {
	svc := &fakeReportService{
		result: &models.AnalysisResult{
			Analysis:  "## Resumen Ejecutivo\nInforme generado.",
			ModelUsed: "gemini-2.5-flash",
			PDFURL:    "https://portal.example.com/doc.pdf",
		},
	}
	h := NewAnalyzeHandler(svc)

	w := httptest.NewRecorder()
	h.AnalyzeRequestHandler(w, httptest.NewRequest("POST", "/api/analyze", analyzeBody(t, "key-123", "Fondo A")))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "gemini-2.5-flash", resp["modelUsed"])
	assert.Equal(t, "https://portal.example.com/doc.pdf", resp["pdfUrl"])
	assert.Equal(t, "Fondo A", svc.gotReq.Portfolio.Name)
}

func TestAnalyzeHandlerOmitsEmptyPDFURL(t *testing.T) {
	svc := &fakeReportService{
		result: &models.AnalysisResult{Analysis: "texto", ModelUsed: "gemini-2.0-flash"},
	}
	h := NewAnalyzeHandler(svc)

	w := httptest.NewRecorder()
	h.AnalyzeRequestHandler(w, httptest.NewRequest("POST", "/api/analyze", analyzeBody(t, "key-123", "Fondo A")))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, present := resp["pdfUrl"]
	assert.False(t, present)
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	h := NewAnalyzeHandler(&fakeReportService{})

	t.Run("missing api key", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.AnalyzeRequestHandler(w, httptest.NewRequest("POST", "/api/analyze", analyzeBody(t, "", "Fondo A")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing portfolio name", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.AnalyzeRequestHandler(w, httptest.NewRequest("POST", "/api/analyze", analyzeBody(t, "key-123", "")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.AnalyzeRequestHandler(w, httptest.NewRequest("POST", "/api/analyze", strings.NewReader("{not json")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.AnalyzeRequestHandler(w, httptest.NewRequest("GET", "/api/analyze", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestAnalyzeHandlerServiceFailure(t *testing.T) {
	h := NewAnalyzeHandler(&fakeReportService{err: errors.New("all models failed")})

	w := httptest.NewRecorder()
	h.AnalyzeRequestHandler(w, httptest.NewRequest("POST", "/api/analyze", analyzeBody(t, "key-123", "Fondo A")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "all models failed")
}

func TestModelsHandler(t *testing.T) {
	svc := &fakeReportService{models: []string{"gemini-2.5-pro", "gemini-2.0-flash"}}
	h := NewAnalyzeHandler(svc)

	body := strings.NewReader(`{"apiKey":"key-123"}`)
	w := httptest.NewRecorder()
	h.ModelsHandler(w, httptest.NewRequest("POST", "/api/models", body))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool     `json:"success"`
		Models  []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.0-flash"}, resp.Models)
}

func TestModelsHandlerRequiresKey(t *testing.T) {
	h := NewAnalyzeHandler(&fakeReportService{})

	w := httptest.NewRecorder()
	h.ModelsHandler(w, httptest.NewRequest("POST", "/api/models", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
