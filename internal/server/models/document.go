package models

// DocumentInfo describes one stored blob owned by a user. Key is the
// namespaced storage key; Name is the original upload filename kept in
// blob metadata.
type DocumentInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ExtractionStatus tags the outcome of OCR for a single document.
type ExtractionStatus string

const (
	ExtractionOK     ExtractionStatus = "ok"
	ExtractionFailed ExtractionStatus = "failed"
)

// ExtractionResult is the per-document outcome of one OCR cycle. A failed
// document carries an empty Text and a Reason; it never aborts aggregation.
type ExtractionResult struct {
	Key    string           `json:"key"`
	Name   string           `json:"name"`
	Text   string           `json:"-"`
	Status ExtractionStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
}
