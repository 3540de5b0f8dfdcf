package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/oagarcia/proyecto-skandia/internal/browser"
	"github.com/oagarcia/proyecto-skandia/internal/httpclient"
	"github.com/oagarcia/proyecto-skandia/internal/models"
)

// retrievalParams are the hidden form values the portal's document endpoint
// requires. All four must be present before a download is attempted.
type retrievalParams struct {
	Origin    string `json:"origin"`
	Portfolio string `json:"portfolio"`
	Product   string `json:"product"`
	Period    string `json:"period"`
}

func (p retrievalParams) complete() bool {
	return p.Origin != "" && p.Portfolio != "" && p.Product != "" && p.Period != ""
}

// FetchFactSheet locates a fund by exact name on the portal and downloads its
// latest fact sheet. The download happens over plain HTTP with the browser
// session's cookies replayed, since the endpoint requires the ASP.NET session
// established during navigation.
func (s *Service) FetchFactSheet(ctx context.Context, fundName string) (*models.FactSheet, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().Str("fund", fundName).Msg("Fetching fact sheet")

	var sheet *models.FactSheet
	err := browser.WithSession(ctx, &s.config.Browser, s.logger, func(bctx context.Context) error {
		if err := s.runWithSettleFallback(bctx, s.defaultResultsRecipe()); err != nil {
			return err
		}

		rowID, err := s.resolveFundRow(bctx, fundName)
		if err != nil {
			return err
		}

		params, err := s.openDocumentDropdown(bctx, rowID)
		if err != nil {
			return err
		}

		cookies, err := sessionCookies(bctx)
		if err != nil {
			return fmt.Errorf("failed to read browser cookies: %w", err)
		}

		sheet, err = s.downloadFactSheet(bctx, params, cookies)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("fund", fundName).
		Int("bytes", len(sheet.Content)).
		Msg("Fact sheet downloaded")

	return sheet, nil
}

// defaultResultsRecipe loads the portal with its default date range, which is
// enough to enumerate fund rows for document retrieval.
func (s *Service) defaultResultsRecipe() browser.Recipe {
	cfg := s.config.Portal
	return browser.Recipe{
		Name: "load-default-results",
		Steps: []browser.Step{
			{Kind: browser.StepNavigate, Name: "open-portal", Target: cfg.URL, Timeout: s.config.Browser.NavigationTimeout.Std()},
			{Kind: browser.StepWaitVisible, Name: "wait-results", Target: "#tableData1", Timeout: cfg.ResultsTimeout.Std()},
			{Kind: browser.StepPoll, Name: "settle-rows", Expression: rowsSettledScript, Timeout: cfg.RowSettleTimeout.Std()},
		},
	}
}

// resolveFundRow finds the result row whose long name matches fundName
// exactly and returns its element id.
func (s *Service) resolveFundRow(bctx context.Context, fundName string) (string, error) {
	script := fmt.Sprintf(`(() => {
		const rows = document.querySelectorAll('div[id^="numberOfRow"]');
		for (const row of rows) {
			const el = row.querySelector('.nombreLargo');
			if (el && el.textContent.trim() === %q) return row.id;
		}
		return '';
	})()`, fundName)

	var rowID string
	if err := chromedp.Run(bctx, chromedp.Evaluate(script, &rowID)); err != nil {
		return "", fmt.Errorf("failed to enumerate fund rows: %w", err)
	}
	if rowID == "" {
		return "", ErrFundNotFound
	}

	s.logger.Debug().Str("fund", fundName).Str("row", rowID).Msg("Fund row resolved")
	return rowID, nil
}

// openDocumentDropdown expands the fund row, waits for the period selector to
// populate, selects the latest period, and reads the hidden document
// parameters.
func (s *Service) openDocumentDropdown(bctx context.Context, rowID string) (retrievalParams, error) {
	cfg := s.config.Portal

	recipe := browser.Recipe{
		Name: "open-document-dropdown",
		Steps: []browser.Step{
			{Kind: browser.StepClick, Name: "expand-row", Target: "#" + rowID},
			{Kind: browser.StepWaitVisible, Name: "wait-periods", Target: "#customDate", Timeout: cfg.PeriodsTimeout.Std()},
			// The option list is filled asynchronously after the row expands.
			{Kind: browser.StepPoll, Name: "wait-period-options", Expression: periodOptionsScript, Timeout: cfg.PeriodsTimeout.Std()},
			{Kind: browser.StepEvaluate, Name: "select-latest-period", Expression: selectLatestPeriodScript},
		},
	}
	if err := s.driver.Run(bctx, recipe); err != nil {
		return retrievalParams{}, err
	}

	var params retrievalParams
	if err := chromedp.Run(bctx, chromedp.Evaluate(readParamsScript, &params)); err != nil {
		return retrievalParams{}, fmt.Errorf("failed to read document parameters: %w", err)
	}
	if !params.complete() {
		return retrievalParams{}, &RetrievalError{
			Reason: ReasonMissingParams,
			Detail: fmt.Sprintf("origin=%q portfolio=%q product=%q period=%q", params.Origin, params.Portfolio, params.Product, params.Period),
		}
	}

	return params, nil
}

const periodOptionsScript = `(() => {
	const sel = document.querySelector('#customDate');
	return !!sel && Array.from(sel.options).some((o) => o.value && o.value.trim() !== '');
})()`

// selectLatestPeriodScript picks the first option with a non-blank value.
// The portal lists periods newest first, with a "choose one" placeholder.
const selectLatestPeriodScript = `(() => {
	const sel = document.querySelector('#customDate');
	if (!sel) return '';
	for (const opt of sel.options) {
		if (opt.value && opt.value.trim() !== '') {
			sel.value = opt.value;
			sel.dispatchEvent(new Event('change', { bubbles: true }));
			return opt.value;
		}
	}
	return '';
})()`

const readParamsScript = `(() => {
	const v = (sel) => {
		const el = document.querySelector(sel);
		return el ? (el.value || '').trim() : '';
	};
	return {
		origin: v('#origin'),
		portfolio: v('#idPortfolio'),
		product: v('#idProduct'),
		period: v('#customDate'),
	};
})()`

// sessionCookies reads all cookies from the live browser session.
func sessionCookies(bctx context.Context) ([]*network.Cookie, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(bctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	return cookies, err
}

// downloadFactSheet fetches the document over HTTP with the browser's
// cookies, retrying transient failures, and validates the payload.
func (s *Service) downloadFactSheet(ctx context.Context, params retrievalParams, cookies []*network.Cookie) (*models.FactSheet, error) {
	cfg := s.config.Portal
	sheetURL := buildFactSheetURL(cfg.FactSheetURL, params)

	parsed, err := url.Parse(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid fact sheet URL: %w", err)
	}

	client, err := httpclient.NewHTTPClientWithBrowserCookies(cookies, parsed.Host, cfg.DownloadTimeout.Std())
	if err != nil {
		return nil, err
	}

	var content []byte
	var contentType string

	policy := httpclient.NewRetryPolicy()
	status, err := policy.ExecuteWithRetry(ctx, s.logger, func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sheetURL, nil)
		if err != nil {
			return 0, err
		}
		// Present the same identity as the browser session the cookies
		// came from.
		req.Header.Set("User-Agent", s.config.Browser.UserAgent)
		req.Header.Set("Accept", "application/pdf,application/x-pdf,*/*")
		req.Header.Set("Referer", cfg.URL)

		resp, err := client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, int64(cfg.MaxDocumentSize)))
		if err != nil {
			return resp.StatusCode, err
		}

		content = body
		contentType = resp.Header.Get("Content-Type")
		return resp.StatusCode, nil
	})
	if err != nil {
		if status > 0 {
			return nil, &RetrievalError{Reason: ReasonHTTPStatus, Detail: fmt.Sprintf("status %d", status)}
		}
		return nil, &RetrievalError{Reason: ReasonDownload, Detail: err.Error()}
	}

	if err := validateFactSheet(content, contentType); err != nil {
		return nil, err
	}

	return &models.FactSheet{Content: content, SourceURL: sheetURL}, nil
}

// buildFactSheetURL fills the document endpoint template. Parameter order is
// fixed by the template: origin, period, portfolio variable, product.
func buildFactSheetURL(template string, params retrievalParams) string {
	return fmt.Sprintf(template,
		url.QueryEscape(params.Origin),
		url.QueryEscape(params.Period),
		url.QueryEscape(params.Portfolio),
		url.QueryEscape(params.Product),
	)
}

// validateFactSheet accepts a payload when it carries the PDF magic bytes or
// the server declared a PDF content type. The endpoint serves error pages
// with status 200, so the status code alone proves nothing.
func validateFactSheet(content []byte, contentType string) error {
	if bytes.HasPrefix(content, []byte("%PDF")) {
		return nil
	}
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return nil
	}
	return &RetrievalError{
		Reason: ReasonInvalidContent,
		Detail: fmt.Sprintf("content-type %q, %d bytes", contentType, len(content)),
	}
}
