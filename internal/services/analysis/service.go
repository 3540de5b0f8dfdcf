package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/oagarcia/proyecto-skandia/internal/common"
	"github.com/oagarcia/proyecto-skandia/internal/interfaces"
	"github.com/oagarcia/proyecto-skandia/internal/models"
	"github.com/oagarcia/proyecto-skandia/internal/services/portal"
)

// Service generates AI investment reports. Each request carries its own API
// key, so a Gemini client is created per call and never cached.
type Service struct {
	config     *common.Config
	logger     arbor.ILogger
	factSheets interfaces.FactSheetFetcher
	holdings   interfaces.HoldingsExtractor
	news       interfaces.NewsSearcher
	quotes     interfaces.QuoteResearcher
}

// NewService creates a report generation service
func NewService(
	config *common.Config,
	logger arbor.ILogger,
	factSheets interfaces.FactSheetFetcher,
	holdings interfaces.HoldingsExtractor,
	news interfaces.NewsSearcher,
	quotes interfaces.QuoteResearcher,
) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		config:     config,
		logger:     logger,
		factSheets: factSheets,
		holdings:   holdings,
		news:       news,
		quotes:     quotes,
	}
}

// Analyze builds the full report context for a portfolio and generates the
// report, falling through the configured model chain until one succeeds.
// A missing fact sheet degrades to a text-only analysis, never to a failure.
func (s *Service) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	if req.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if req.Portfolio.Name == "" {
		return nil, errors.New("portfolio name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.AnalysisTimeout())
	defer cancel()

	sheet, holdingNames := s.gatherDocumentContext(ctx, req.Portfolio.Name)
	marketContext := s.gatherMarketContext(ctx, req.Portfolio.Name, holdingNames)

	prompt := buildPrompt(req.Portfolio, holdingNames, marketContext, sheet != nil)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	contents := buildContents(prompt, sheet)
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Analysis.Temperature),
	}

	candidates := modelCandidates(req.Model, s.config.Analysis.Models)
	analysis, modelUsed, err := tryEach(candidates, func(model string) (string, error) {
		s.logger.Debug().Str("model", model).Msg("Attempting report generation")
		result, err := client.Models.GenerateContent(ctx, model, contents, genConfig)
		if err != nil {
			return "", err
		}
		text := extractResponseText(result)
		if text == "" {
			return "", fmt.Errorf("model %s returned an empty response", model)
		}
		return text, nil
	})
	if err != nil {
		return nil, s.fallbackExhaustedError(ctx, req.APIKey, err)
	}

	s.logger.Info().
		Str("portfolio", req.Portfolio.Name).
		Str("model", modelUsed).
		Int("holdings", len(holdingNames)).
		Bool("fact_sheet", sheet != nil).
		Msg("Report generated")

	result := &models.AnalysisResult{
		Analysis:  analysis,
		ModelUsed: modelUsed,
	}
	if sheet != nil {
		result.PDFURL = sheet.SourceURL
	}
	return result, nil
}

// gatherDocumentContext fetches the fund's fact sheet and extracts its
// holdings. Both steps are best effort.
func (s *Service) gatherDocumentContext(ctx context.Context, fundName string) (*models.FactSheet, []string) {
	sheet, err := s.factSheets.FetchFactSheet(ctx, fundName)
	if err != nil {
		if errors.Is(err, portal.ErrFundNotFound) {
			s.logger.Info().Str("fund", fundName).Msg("Fund has no portal row, generating text-only analysis")
		} else {
			s.logger.Warn().Str("fund", fundName).Err(err).Msg("Fact sheet unavailable, generating text-only analysis")
		}
		return nil, nil
	}

	names, err := s.holdings.Extract(sheet.Content)
	if err != nil {
		s.logger.Warn().Str("fund", fundName).Err(err).Msg("Holdings extraction failed, continuing without holdings")
		return sheet, nil
	}
	return sheet, names
}

// gatherMarketContext prefers live quote research for mapped portfolios and
// falls back to a news search on the fund's holdings or name.
func (s *Service) gatherMarketContext(ctx context.Context, fundName string, holdingNames []string) string {
	if marketCtx, ok := s.quotes.ResearchContext(ctx, fundName); ok {
		return marketCtx
	}

	query := fundName
	if len(holdingNames) > 0 {
		n := len(holdingNames)
		if n > 3 {
			n = 3
		}
		query = fundName + " " + strings.Join(holdingNames[:n], " ")
	}

	marketCtx, err := s.news.Search(ctx, query)
	if err != nil {
		s.logger.Warn().Str("query", query).Err(err).Msg("News search failed, continuing without market context")
		return ""
	}
	return marketCtx
}

// buildContents assembles the request parts, attaching the fact sheet inline
// when one was retrieved.
func buildContents(prompt string, sheet *models.FactSheet) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if sheet != nil {
		parts = append(parts, genai.NewPartFromBytes(sheet.Content, "application/pdf"))
	}
	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
}

// modelCandidates orders the models to try: the caller's preference first,
// then the configured fallback chain, without duplicates.
func modelCandidates(preferred string, fallbacks []string) []string {
	candidates := make([]string, 0, len(fallbacks)+1)
	seen := make(map[string]bool)

	add := func(model string) {
		if model == "" || seen[model] {
			return
		}
		seen[model] = true
		candidates = append(candidates, model)
	}

	add(preferred)
	for _, model := range fallbacks {
		add(model)
	}
	return candidates
}

// tryEach runs fn against each candidate in order until one succeeds,
// returning the successful candidate alongside its result.
func tryEach[T any](candidates []string, fn func(string) (T, error)) (T, string, error) {
	var zero T
	var lastErr error

	for _, candidate := range candidates {
		result, err := fn(candidate)
		if err == nil {
			return result, candidate, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no candidates to try")
	}
	return zero, "", lastErr
}

// extractResponseText concatenates the text parts of the first candidate.
func extractResponseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// fallbackExhaustedError enriches a total generation failure with the
// account's actually-available models, so a stale model list is diagnosable
// from the error alone.
func (s *Service) fallbackExhaustedError(ctx context.Context, apiKey string, lastErr error) error {
	available, listErr := s.ListModels(ctx, apiKey)
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("all models failed: %w", lastErr)
	}
	return fmt.Errorf("all models failed: %w (models available to this key: %s)", lastErr, strings.Join(available, ", "))
}
