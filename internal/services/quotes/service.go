package quotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/browser"
	"github.com/oagarcia/proyecto-skandia/internal/common"
)

// Service researches live market data for portfolios whose names map to
// known ticker symbols. The mapping lives in config; portfolios without an
// entry fall through to the generic news search.
type Service struct {
	config *common.Config
	logger arbor.ILogger
}

// NewService creates a market quote research service
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		config: config,
		logger: logger,
	}
}

// ResearchContext gathers quote and headline context for every symbol mapped
// to the portfolio. The bool reports whether the portfolio had mapped
// symbols; when false the caller should use the news search instead.
func (s *Service) ResearchContext(ctx context.Context, portfolioName string) (string, bool) {
	symbols := s.SymbolsFor(portfolioName)
	if len(symbols) == 0 {
		return "", false
	}

	var sections []string
	for _, symbol := range symbols {
		section, err := s.researchSymbol(ctx, symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Symbol research failed, skipping")
			continue
		}
		sections = append(sections, section)
	}

	if len(sections) == 0 {
		return "No fue posible obtener datos de mercado para los símbolos asociados.", true
	}

	s.logger.Info().
		Str("portfolio", portfolioName).
		Int("symbols", len(sections)).
		Msg("Market context gathered")

	return strings.Join(sections, "\n\n"), true
}

// SymbolsFor returns the ticker symbols mapped to a portfolio name, matching
// case-insensitively on the exact name.
func (s *Service) SymbolsFor(portfolioName string) []string {
	for name, symbols := range s.config.Quotes.Symbols {
		if strings.EqualFold(name, portfolioName) {
			return symbols
		}
	}
	return nil
}

// researchSymbol scrapes a symbol's quote page and up to MaxArticles of its
// related news articles.
func (s *Service) researchSymbol(ctx context.Context, symbol string) (string, error) {
	quoteURL := fmt.Sprintf(s.config.Quotes.QuoteURL, symbol)

	var quoteHTML string
	var articleHTMLs []string

	err := browser.WithSession(ctx, &s.config.Browser, s.logger, func(bctx context.Context) error {
		if err := chromedp.Run(bctx,
			chromedp.Navigate(quoteURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &quoteHTML),
		); err != nil {
			return err
		}

		// Follow the top related articles in the same session
		q := parseQuote(quoteHTML, s.config.Quotes.MaxNews)
		for i, art := range q.News {
			if i >= s.config.Quotes.MaxArticles {
				break
			}
			var html string
			if err := chromedp.Run(bctx,
				chromedp.Navigate(art.URL),
				chromedp.WaitReady("body", chromedp.ByQuery),
				chromedp.OuterHTML("html", &html),
			); err != nil {
				s.logger.Debug().Str("url", art.URL).Err(err).Msg("Article fetch failed")
				continue
			}
			articleHTMLs = append(articleHTMLs, html)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	quote := parseQuote(quoteHTML, s.config.Quotes.MaxNews)
	var summaries []string
	for _, html := range articleHTMLs {
		if summary := summarizeArticle(html); summary != "" {
			summaries = append(summaries, summary)
		}
	}

	return formatSymbolContext(symbol, quote, summaries), nil
}

// quoteData is the parsed state of a quote page.
type quoteData struct {
	Price         string
	Change        string
	ChangePercent string
	News          []article
}

type article struct {
	Title string
	URL   string
}

// parseQuote reads the price streamers and related-news links from a quote
// page snapshot.
func parseQuote(html string, maxNews int) quoteData {
	var q quoteData

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return q
	}

	streamer := func(field string) string {
		sel := doc.Find(fmt.Sprintf(`fin-streamer[data-field=%q]`, field)).First()
		if v, ok := sel.Attr("data-value"); ok && v != "" {
			return v
		}
		return strings.TrimSpace(sel.Text())
	}

	q.Price = streamer("regularMarketPrice")
	q.Change = streamer("regularMarketChange")
	q.ChangePercent = streamer("regularMarketChangePercent")

	seen := make(map[string]bool)
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || !isArticleURL(href) || seen[href] {
			return true
		}
		title := strings.Join(strings.Fields(sel.Text()), " ")
		if title == "" {
			return true
		}
		seen[href] = true
		q.News = append(q.News, article{Title: title, URL: absoluteArticleURL(href)})
		return len(q.News) < maxNews
	})

	return q
}

// isArticleURL accepts only links into Yahoo Finance's own article sections.
func isArticleURL(href string) bool {
	if strings.HasPrefix(href, "/news/") || strings.HasPrefix(href, "/m/") {
		return true
	}
	return strings.HasPrefix(href, "https://finance.yahoo.com/news/") ||
		strings.HasPrefix(href, "https://finance.yahoo.com/m/")
}

func absoluteArticleURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return "https://finance.yahoo.com" + href
	}
	return href
}

// summarizeArticle pulls the lead substantive paragraphs from an article
// body. Short fragments (captions, bylines, ads) are skipped.
func summarizeArticle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var paragraphs []string
	doc.Find(".caas-body p, article p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if len(text) > 50 {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < 5
	})

	return strings.Join(paragraphs, " ")
}

// formatSymbolContext renders one symbol's research as a markdown section.
func formatSymbolContext(symbol string, q quoteData, summaries []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("### %s\n", symbol))

	if q.Price != "" {
		sb.WriteString(fmt.Sprintf("Precio actual: %s", q.Price))
		if q.Change != "" {
			sb.WriteString(fmt.Sprintf(" (%s", q.Change))
			if q.ChangePercent != "" {
				sb.WriteString(fmt.Sprintf(", %s%%", q.ChangePercent))
			}
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}

	if len(q.News) > 0 {
		sb.WriteString("Noticias recientes:\n")
		for _, art := range q.News {
			sb.WriteString("- " + art.Title + "\n")
		}
	}

	for _, summary := range summaries {
		sb.WriteString("\n" + summary + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
