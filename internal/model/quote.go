package model

// QuoteItem is the single "latest" quote shown on the public site.
// It is overwritten wholesale on each admin update; no history is kept.
type QuoteItem struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
