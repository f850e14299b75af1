package models

// Requests for the dashboard HTTP endpoints. Defined in domain for
// consistency and reuse.

type HistoryRequest struct {
	Token string `query:"token" json:"token" validate:"required"`
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=5000"`
}

type ScanRequest struct {
	// Tokens optionally restricts the scan to a subset of the configured
	// universe by display name. Empty means scan everything.
	Tokens []string `json:"tokens"`
}
