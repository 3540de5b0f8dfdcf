package app

import (
	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/common"
	"github.com/oagarcia/proyecto-skandia/internal/handlers"
	"github.com/oagarcia/proyecto-skandia/internal/services/analysis"
	"github.com/oagarcia/proyecto-skandia/internal/services/holdings"
	"github.com/oagarcia/proyecto-skandia/internal/services/news"
	"github.com/oagarcia/proyecto-skandia/internal/services/portal"
	"github.com/oagarcia/proyecto-skandia/internal/services/quotes"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Scraping services
	PortalService   *portal.Service
	HoldingsService *holdings.Extractor
	NewsService     *news.Service
	QuotesService   *quotes.Service

	// Report generation
	AnalysisService *analysis.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	PortfolioHandler *handlers.PortfolioHandler
	AnalyzeHandler   *handlers.AnalyzeHandler
}

// New creates the application with all services wired
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	a := &App{
		Config: config,
		Logger: logger,
	}

	// Services
	a.PortalService = portal.NewService(config, logger)
	a.HoldingsService = holdings.NewExtractor(config, logger)
	a.NewsService = news.NewService(config, logger)
	a.QuotesService = quotes.NewService(config, logger)
	a.AnalysisService = analysis.NewService(config, logger,
		a.PortalService, a.HoldingsService, a.NewsService, a.QuotesService)

	// Handlers
	a.APIHandler = handlers.NewAPIHandler()
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.PortalService)
	a.AnalyzeHandler = handlers.NewAnalyzeHandler(a.AnalysisService)

	logger.Info().Msg("Application services initialized")
	return a, nil
}

// Close releases application resources. Browser sessions are per-operation,
// so there is nothing long-lived to tear down beyond logging the shutdown.
func (a *App) Close() {
	a.Logger.Info().Msg("Application stopped")
}
