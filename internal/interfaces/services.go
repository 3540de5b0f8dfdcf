package interfaces

import (
	"context"

	"github.com/oagarcia/proyecto-skandia/internal/models"
)

// PortfolioScraper loads the fund results table from the portal for a date
// range. Dates are YYYY-MM-DD strings, written into the portal's date inputs
// verbatim.
type PortfolioScraper interface {
	LoadPortfolios(ctx context.Context, fromDate, toDate string) ([]models.Portfolio, error)
}

// FactSheetFetcher locates a fund on the portal by exact name and downloads
// its fact sheet document.
type FactSheetFetcher interface {
	FetchFactSheet(ctx context.Context, fundName string) (*models.FactSheet, error)
}

// HoldingsExtractor pulls the principal holding names out of a fact sheet
// document. Extraction is best effort: an empty slice with no error means
// the document had no recognizable holdings section.
type HoldingsExtractor interface {
	Extract(content []byte) ([]string, error)
}

// NewsSearcher gathers recent news context for a free-text query.
type NewsSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// QuoteResearcher gathers live market context for a portfolio whose name maps
// to known ticker symbols. The bool reports whether the portfolio had any
// mapped symbols at all.
type QuoteResearcher interface {
	ResearchContext(ctx context.Context, portfolioName string) (string, bool)
}

// ReportService generates AI investment reports for portfolios.
type ReportService interface {
	Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error)
	ListModels(ctx context.Context, apiKey string) ([]string, error)
}
