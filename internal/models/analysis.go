package models

// AnalysisRequest carries everything needed to generate an investment report
// for a single portfolio. The API key is caller-supplied and never persisted.
type AnalysisRequest struct {
	Portfolio Portfolio `json:"portfolio"`
	APIKey    string    `json:"apiKey"`
	Model     string    `json:"model,omitempty"`
}

// AnalysisResult is the outcome of a successful report generation.
type AnalysisResult struct {
	Analysis  string `json:"analysis"`
	ModelUsed string `json:"modelUsed"`
	PDFURL    string `json:"pdfUrl,omitempty"`
}
