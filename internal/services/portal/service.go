package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/oagarcia/proyecto-skandia/internal/browser"
	"github.com/oagarcia/proyecto-skandia/internal/common"
	"github.com/oagarcia/proyecto-skandia/internal/models"
)

// Service scrapes the fund portal. All portal operations share one gate so at
// most one browser runs against the site at a time, with a minimum delay
// between scrapes.
type Service struct {
	config  *common.Config
	logger  arbor.ILogger
	driver  *browser.Driver
	gate    sync.Mutex
	limiter *rate.Limiter
}

// NewService creates a portal scraping service
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		config:  config,
		logger:  logger,
		driver:  browser.NewDriver(config.Browser.StepTimeout.Std(), logger),
		limiter: rate.NewLimiter(rate.Every(config.Portal.RequestDelay.Std()), 1),
	}
}

// LoadPortfolios navigates the portal, submits the date range, and extracts
// the full results table. Dates are YYYY-MM-DD strings written into the
// portal's date inputs verbatim.
func (s *Service) LoadPortfolios(ctx context.Context, fromDate, toDate string) ([]models.Portfolio, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("from", fromDate).
		Str("to", toDate).
		Msg("Scraping portfolio results")

	var portfolios []models.Portfolio
	err := browser.WithSession(ctx, &s.config.Browser, s.logger, func(bctx context.Context) error {
		if err := s.loadResults(bctx, fromDate, toDate); err != nil {
			return err
		}

		var raws []rawRow
		if err := chromedp.Run(bctx, chromedp.Evaluate(extractRowsScript, &raws)); err != nil {
			return fmt.Errorf("failed to extract result rows: %w", err)
		}

		portfolios = mapRows(raws)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(portfolios) == 0 {
		s.logger.Warn().Msg("Results table rendered but contained no rows")
	}
	s.logger.Info().Int("count", len(portfolios)).Msg("Portfolio scrape completed")

	return portfolios, nil
}

// loadResults drives the page to the results-loaded state: date range set,
// calculation triggered, first category container visible, rows settled.
func (s *Service) loadResults(bctx context.Context, fromDate, toDate string) error {
	return s.runWithSettleFallback(bctx, s.loadResultsRecipe(fromDate, toDate))
}

// runWithSettleFallback runs a results-loading recipe, degrading a failed
// row-settle poll to one fixed wait.
func (s *Service) runWithSettleFallback(bctx context.Context, recipe browser.Recipe) error {
	err := s.driver.Run(bctx, recipe)
	if err == nil {
		return nil
	}

	// When row settling cannot be observed, fall back to one fixed wait.
	// Everything else is a hard failure.
	var stepErr *browser.StepTimeoutError
	if errors.As(err, &stepErr) && stepErr.StepName == "settle-rows" {
		s.logger.Warn().
			Str("recipe", stepErr.Recipe).
			Msg("Row count never settled, using fixed settle delay")
		return s.driver.Run(bctx, browser.Recipe{
			Name: "settle-fallback",
			Steps: []browser.Step{
				{Kind: browser.StepSleep, Name: "settle-delay", Timeout: s.config.Browser.SettleDelay.Std()},
			},
		})
	}

	return err
}

// loadResultsRecipe builds the interaction sequence for loading the results
// table. Selectors come from the portal's rentabilidades page.
func (s *Service) loadResultsRecipe(fromDate, toDate string) browser.Recipe {
	cfg := s.config.Portal
	return browser.Recipe{
		Name: "load-results",
		Steps: []browser.Step{
			{Kind: browser.StepNavigate, Name: "open-portal", Target: cfg.URL, Timeout: s.config.Browser.NavigationTimeout.Std()},
			// The variable dropdown defaults correctly on most page loads;
			// clicking it is only needed to force the widget to initialize.
			{Kind: browser.StepClick, Name: "touch-variable", Target: "#variacionCb", Optional: true},
			{Kind: browser.StepSetValue, Name: "set-from-date", Target: "#datepickerFrom", Value: fromDate},
			{Kind: browser.StepSetValue, Name: "set-to-date", Target: "#datepickerTo", Value: toDate},
			{Kind: browser.StepClick, Name: "calculate", Target: ".calcularButton"},
			{Kind: browser.StepWaitVisible, Name: "wait-results", Target: "#tableData1", Timeout: cfg.ResultsTimeout.Std()},
			{Kind: browser.StepPoll, Name: "settle-rows", Expression: rowsSettledScript, Timeout: cfg.RowSettleTimeout.Std()},
		},
	}
}

// rowsSettledScript reports true once the row count is nonzero and unchanged
// between consecutive polls. The portal fills rows in asynchronously after
// the container appears.
const rowsSettledScript = `(() => {
	const n = document.querySelectorAll('div[id^="numberOfRow"]').length;
	const stable = n > 0 && n === window.__skRowCount;
	window.__skRowCount = n;
	return stable;
})()`
