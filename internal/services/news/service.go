package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/browser"
	"github.com/oagarcia/proyecto-skandia/internal/common"
)

// fallbackContext is returned when the news scrape fails. Report generation
// treats missing market context as acceptable, never as a hard failure.
const fallbackContext = "No se encontraron noticias recientes relevantes."

// Service scrapes recent news headlines to give the analyst prompt current
// market context.
type Service struct {
	config *common.Config
	logger arbor.ILogger
}

// NewService creates a news search service
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		config: config,
		logger: logger,
	}
}

// Search renders a news search for the query and returns the top headlines
// as markdown bullet lines. Scrape failures degrade to a fallback message.
func (s *Service) Search(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf(s.config.News.SearchURL, url.QueryEscape(query))

	var html string
	err := browser.WithSession(ctx, &s.config.Browser, s.logger, func(bctx context.Context) error {
		return chromedp.Run(bctx,
			chromedp.Navigate(searchURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &html),
		)
	})
	if err != nil {
		s.logger.Warn().Str("query", query).Err(err).Msg("News search failed, using fallback context")
		return fallbackContext, nil
	}

	items := parseResults(html, s.config.News.MaxResults)
	if len(items) == 0 {
		s.logger.Debug().Str("query", query).Msg("News search returned no parseable results")
		return fallbackContext, nil
	}

	s.logger.Info().Str("query", query).Int("results", len(items)).Msg("News context gathered")
	return formatResults(items), nil
}

// newsItem is one parsed search result.
type newsItem struct {
	Title   string
	Source  string
	Snippet string
	Age     string
}

// parseResults extracts headline cards from a rendered news results page.
// Both card layouts the results page alternates between are handled.
func parseResults(html string, maxResults int) []newsItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []newsItem
	doc.Find("div.SoaBEf, div.MjjYud").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := cleanText(sel.Find(`div[role="heading"]`).First().Text())
		if title == "" {
			title = cleanText(sel.Find("h3").First().Text())
		}
		if title == "" {
			return true
		}

		item := newsItem{
			Title:   title,
			Source:  cleanText(sel.Find(".NUnG9d, .MgUUmf").First().Text()),
			Snippet: cleanText(sel.Find(".GI74Re, .OSrXXb").First().Text()),
			Age:     cleanText(sel.Find(".LfVVr, .OSrXXb span").First().Text()),
		}

		items = append(items, item)
		return len(items) < maxResults
	})

	return items
}

// formatResults renders the headlines as markdown bullets for the prompt.
func formatResults(items []newsItem) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item.Title)
		if item.Source != "" {
			sb.WriteString(fmt.Sprintf(" (%s", item.Source))
			if item.Age != "" {
				sb.WriteString(", " + item.Age)
			}
			sb.WriteString(")")
		} else if item.Age != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", item.Age))
		}
		if item.Snippet != "" {
			sb.WriteString(": " + item.Snippet)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
