package models

import "time"

// Corpus holds the combined OCR text of all documents a user currently has
// stored, rebuilt in full after every upload and delete.
type Corpus struct {
	PhoneNumber  string
	CombinedText string
	UpdatedAt    time.Time
}
