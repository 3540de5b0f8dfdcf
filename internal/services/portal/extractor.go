package portal

import (
	"strings"

	"github.com/oagarcia/proyecto-skandia/internal/models"
)

// Category labels in container order. The first container is mandatory on a
// loaded results page; the other two appear only when the portal has funds in
// those categories.
var categoryLabels = []string{
	"Portafolios Abiertos",
	"Portafolios a la Medida",
	"Portafolios Especiales",
}

// extractRowsScript reads all result rows from the three category containers
// in a single DOM pass. Field reads never throw on missing elements; absent
// fields come back as empty strings and get their placeholders in Go.
const extractRowsScript = `(() => {
	const containers = ['#tableData1', '#tableData2', '#tableData3'];
	const rows = [];
	containers.forEach((sel, idx) => {
		const container = document.querySelector(sel);
		if (!container) return;
		container.querySelectorAll('div[id^="numberOfRow"]').forEach((row) => {
			const text = (cls) => {
				const el = row.querySelector(cls);
				return el ? el.textContent.trim() : '';
			};
			const img = row.querySelector('.perfilRiesgo img');
			const days = Array.from(row.querySelectorAll('.days')).map((d) => d.textContent.trim());
			rows.push({
				id: row.id,
				categoryIndex: idx,
				name: text('.nombreLargo'),
				type: text('.tipoInversion'),
				value: text('.valorFondo'),
				riskIcon: img ? (img.getAttribute('src') || '') : '',
				days: days,
			});
		});
	});
	return rows;
})()`

// rawRow is one row as returned by extractRowsScript, before typing.
type rawRow struct {
	ID            string   `json:"id"`
	CategoryIndex int      `json:"categoryIndex"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Value         string   `json:"value"`
	RiskIcon      string   `json:"riskIcon"`
	Days          []string `json:"days"`
}

// mapRows converts raw DOM rows into typed fund records.
func mapRows(raws []rawRow) []models.Portfolio {
	portfolios := make([]models.Portfolio, 0, len(raws))
	for _, raw := range raws {
		portfolios = append(portfolios, mapRow(raw))
	}
	return portfolios
}

// mapRow types a single raw row, applying placeholders so every field is
// always populated.
func mapRow(raw rawRow) models.Portfolio {
	value := raw.Value
	if value == "" {
		value = "0"
	}

	category := ""
	if raw.CategoryIndex >= 0 && raw.CategoryIndex < len(categoryLabels) {
		category = categoryLabels[raw.CategoryIndex]
	}

	return models.Portfolio{
		ID:       raw.ID,
		Category: category,
		Name:     raw.Name,
		Type:     raw.Type,
		Value:    value,
		Risk:     riskFromIcon(raw.RiskIcon),
		Returns:  returnsFromDays(raw.Days),
	}
}

// riskFromIcon maps the risk icon filename to its label. The portal encodes
// risk only in the icon's name.
func riskFromIcon(src string) string {
	switch {
	case strings.Contains(src, "pRiesgo1"):
		return models.RiskConservative
	case strings.Contains(src, "pRiesgo2"):
		return models.RiskModerate
	case strings.Contains(src, "pRiesgo3"):
		return models.RiskAggressive
	default:
		return models.RiskUnknown
	}
}

// returnsFromDays maps the four return cells (daily, monthly, six-month,
// yearly, in DOM order) to the record's return windows.
func returnsFromDays(days []string) models.Returns {
	at := func(i int) string {
		if i < len(days) && days[i] != "" {
			return days[i]
		}
		return models.ReturnPlaceholder
	}
	return models.Returns{
		Daily:     at(0),
		Monthly:   at(1),
		SixMonths: at(2),
		Yearly:    at(3),
	}
}
