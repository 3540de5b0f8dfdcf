package portal

import (
	"errors"
	"fmt"
)

// ErrFundNotFound is returned when no results row matches the requested fund
// name exactly.
var ErrFundNotFound = errors.New("fund not found in portal results")

// Retrieval failure reasons.
const (
	ReasonMissingParams  = "missing-params"
	ReasonHTTPStatus     = "http-status"
	ReasonInvalidContent = "invalid-content"
	ReasonDownload       = "download"
)

// RetrievalError describes why a fact sheet download failed after the fund
// row itself was found.
type RetrievalError struct {
	Reason string
	Detail string
}

func (e *RetrievalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("fact sheet retrieval failed: %s", e.Reason)
	}
	return fmt.Sprintf("fact sheet retrieval failed: %s: %s", e.Reason, e.Detail)
}
