package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/common"
	"github.com/oagarcia/proyecto-skandia/internal/interfaces"
)

// PortfolioHandler serves the scraped fund results table.
type PortfolioHandler struct {
	scraper interfaces.PortfolioScraper
	logger  arbor.ILogger
	now     func() time.Time
}

func NewPortfolioHandler(scraper interfaces.PortfolioScraper) *PortfolioHandler {
	return &PortfolioHandler{
		scraper: scraper,
		logger:  common.GetLogger(),
		now:     time.Now,
	}
}

// ListHandler scrapes and returns the results table for a date range. Dates
// arrive as YYYY-MM-DD query parameters and default to the current month.
func (h *PortfolioHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	from, to, err := h.dateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	portfolios, err := h.scraper.LoadPortfolios(r.Context(), from, to)
	if err != nil {
		h.logger.Error().Err(err).Msg("Portfolio scrape failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to scrape portfolio data: %v", err))
		return
	}

	WriteData(w, portfolios)
}

// dateRange validates the requested range and defaults to the first and last
// day of the current month. The portal's date inputs take ISO dates, so the
// YYYY-MM-DD strings pass through unchanged.
func (h *PortfolioHandler) dateRange(fromParam, toParam string) (string, string, error) {
	now := h.now()

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, -1)

	if fromParam != "" {
		parsed, err := time.Parse("2006-01-02", fromParam)
		if err != nil {
			return "", "", fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", fromParam)
		}
		from = parsed
	}
	if toParam != "" {
		parsed, err := time.Parse("2006-01-02", toParam)
		if err != nil {
			return "", "", fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", toParam)
		}
		to = parsed
	}

	if to.Before(from) {
		return "", "", fmt.Errorf("to date %s is before from date %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	return from.Format("2006-01-02"), to.Format("2006-01-02"), nil
}
