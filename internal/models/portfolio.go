package models

// Risk level labels as shown on the portal, mapped from the row's risk icon.
const (
	RiskConservative = "Conservador"
	RiskModerate     = "Moderado"
	RiskAggressive   = "Agresivo"
	RiskUnknown      = "Unknown"
)

// ReturnPlaceholder fills a return window the portal did not report for a
// fund, keeping every record's return fields parseable.
const ReturnPlaceholder = "0%"

// Returns holds the annualized return figures for the standard report windows,
// kept as display strings exactly as the portal renders them.
type Returns struct {
	Daily     string `json:"daily"`
	Monthly   string `json:"monthly"`
	SixMonths string `json:"sixMonths"`
	Yearly    string `json:"yearly"`
}

// Portfolio is one fund row from the portal results table.
type Portfolio struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Value    string  `json:"value"`
	Risk     string  `json:"risk"`
	Returns  Returns `json:"returns"`
}

// FactSheet is a fund's downloaded fact sheet document.
type FactSheet struct {
	Content   []byte
	SourceURL string
}
