package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oagarcia/proyecto-skandia/internal/models"
)

type fakeScraper struct {
	portfolios []models.Portfolio
	err        error
	gotFrom    string
	gotTo      string
}

func (f *fakeScraper) LoadPortfolios(_ context.Context, fromDate, toDate string) ([]models.Portfolio, error) {
	f.gotFrom = fromDate
	f.gotTo = toDate
	return f.portfolios, f.err
}

func fixedHandler(scraper *fakeScraper) *PortfolioHandler {
	h := NewPortfolioHandler(scraper)
	h.now = func() time.Time {
		return time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func TestListHandlerReturnsRecords(t *testing.T) {
	scraper := &fakeScraper{
		portfolios: []models.Portfolio{
			{ID: "numberOfRow0", Name: "Fondo A", Value: "100", Risk: models.RiskModerate},
			{ID: "numberOfRow1", Name: "Fondo B", Value: "200", Risk: models.RiskConservative},
		},
	}
	h := fixedHandler(scraper)

	req := httptest.NewRequest("GET", "/api/portfolios", nil)
	w := httptest.NewRecorder()
	h.ListHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    []models.Portfolio `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Fondo A", resp.Data[0].Name)
}

func TestListHandlerDefaultsToCurrentMonth(t *testing.T) {
	scraper := &fakeScraper{}
	h := fixedHandler(scraper)

	req := httptest.NewRequest("GET", "/api/portfolios", nil)
	h.ListHandler(httptest.NewRecorder(), req)

	assert.Equal(t, "2026-08-01", scraper.gotFrom)
	assert.Equal(t, "2026-08-31", scraper.gotTo)
}

func TestListHandlerPassesExplicitDatesThrough(t *testing.T) {
	scraper := &fakeScraper{}
	h := fixedHandler(scraper)

	req := httptest.NewRequest("GET", "/api/portfolios?from=2026-06-01&to=2026-06-30", nil)
	h.ListHandler(httptest.NewRecorder(), req)

	// The portal's date inputs take ISO dates, so no reformatting happens
	assert.Equal(t, "2026-06-01", scraper.gotFrom)
	assert.Equal(t, "2026-06-30", scraper.gotTo)
}

func TestListHandlerRejectsBadDates(t *testing.T) {
	h := fixedHandler(&fakeScraper{})

	tests := []struct {
		name string
		url  string
	}{
		{"malformed from", "/api/portfolios?from=junio"},
		{"malformed to", "/api/portfolios?to=2026/06/30"},
		{"inverted range", "/api/portfolios?from=2026-06-30&to=2026-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ListHandler(w, httptest.NewRequest("GET", tt.url, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestListHandlerScrapeFailure(t *testing.T) {
	h := fixedHandler(&fakeScraper{err: errors.New("browser crashed")})

	w := httptest.NewRecorder()
	h.ListHandler(w, httptest.NewRequest("GET", "/api/portfolios", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "browser crashed")
}

func TestListHandlerRejectsPost(t *testing.T) {
	h := fixedHandler(&fakeScraper{})

	w := httptest.NewRecorder()
	h.ListHandler(w, httptest.NewRequest("POST", "/api/portfolios", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
