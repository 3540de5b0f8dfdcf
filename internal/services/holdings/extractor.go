package holdings

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/common"
)

// Strategy turns extracted document text into a list of holding names. The
// layout heuristic lives behind this interface so a new fact sheet layout
// only needs a new strategy, not a new extractor.
type Strategy interface {
	Holdings(lines []string) []string
}

// Extractor pulls principal holding names out of fact sheet PDFs.
type Extractor struct {
	config   *common.PortalConfig
	logger   arbor.ILogger
	strategy Strategy
}

// NewExtractor creates a holdings extractor with the current fact sheet
// layout strategy.
func NewExtractor(config *common.Config, logger arbor.ILogger) *Extractor {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Extractor{
		config: &config.Portal,
		logger: logger,
		strategy: &markerTableStrategy{
			maxHoldings: config.Portal.MaxHoldings,
		},
	}
}

// Extract reads the document's text layer and applies the layout strategy.
// Extraction is best effort: a document without a recognizable holdings
// section yields an empty list and no error.
func (e *Extractor) Extract(content []byte) ([]string, error) {
	lines, totalLen, err := extractTextLines(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read document text: %w", err)
	}

	if totalLen < e.config.MinHoldingTextSize {
		e.logger.Debug().Int("text_length", totalLen).Msg("Document text too short for holdings parsing")
		return []string{}, nil
	}

	names := e.strategy.Holdings(lines)
	e.logger.Debug().Int("holdings", len(names)).Msg("Holdings extraction completed")
	return names, nil
}

// extractTextLines reads the PDF's text layer page by page, preserving row
// structure so table lines survive as lines.
func extractTextLines(content []byte) ([]string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, 0, err
	}

	var lines []string
	total := 0

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// A single unreadable page should not sink the document
			continue
		}

		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			line := strings.TrimSpace(sb.String())
			if line != "" {
				lines = append(lines, line)
				total += len(line)
			}
		}
	}

	return lines, total, nil
}

// markerTableStrategy matches the current fact sheet layout: a holdings table
// introduced by a fixed Spanish heading, rows ending in a percentage weight.
type markerTableStrategy struct {
	maxHoldings int
}

const holdingsMarker = "Principales inversiones del portafolio"

// headerPrefixes mark the table's column header lines, which sit between the
// marker and the first data row.
var headerPrefixes = []string{
	"Emisores",
	"Tipo de Inversión",
}

// typeKeywords are asset-class labels the table mixes into the issuer cell.
var typeKeywords = []string{
	"Rv. Internacional",
	"Derivados",
	"Liquidez",
	"Fondo Internacional",
	"Financiero Local",
}

var weightSuffixRe = regexp.MustCompile(`\d+\.\d+%$`)

func (s *markerTableStrategy) Holdings(lines []string) []string {
	start := markerIndex(lines)
	if start < 0 {
		return []string{}
	}

	names := []string{}
	for _, line := range lines[start+1:] {
		if isHeaderLine(line) {
			continue
		}
		if !weightSuffixRe.MatchString(line) {
			continue
		}

		name := weightSuffixRe.ReplaceAllString(line, "")
		// The type label ends the issuer cell; anything after it belongs to
		// other table columns, so the line is cut at the label.
		for _, keyword := range typeKeywords {
			if idx := strings.Index(name, keyword); idx >= 0 {
				name = name[:idx]
			}
		}
		name = strings.TrimSpace(name)

		if len(name) <= 3 {
			continue
		}

		names = append(names, name)
		if len(names) >= s.maxHoldings {
			break
		}
	}

	return names
}

func markerIndex(lines []string) int {
	// Text extraction sometimes drops spaces between words, so the marker is
	// matched space-insensitively.
	want := stripSpaces(holdingsMarker)
	for i, line := range lines {
		if strings.Contains(stripSpaces(line), want) {
			return i
		}
	}
	return -1
}

func isHeaderLine(line string) bool {
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) || strings.HasPrefix(stripSpaces(line), stripSpaces(prefix)) {
			return true
		}
	}
	return false
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
