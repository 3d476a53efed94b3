package port

import "context"

// HeaderColumn maps one bank-specific column label to the standard vocabulary.
type HeaderColumn struct {
	OriginalLabel    string `json:"original_label"`
	StandardizedName string `json:"standardized_name"`
}

// HeaderClassification is the result of locating the header row within a
// reconstructed-row preview. HeaderRowIndex is -1 when no header was found.
type HeaderClassification struct {
	HeaderRowIndex int            `json:"header_row_index"`
	Columns        []HeaderColumn `json:"columns"`
}

// HeaderClassifier abstracts the external text-understanding service that
// identifies the header row and standardizes column labels. Every bank names
// its columns differently, so this is the one non-deterministic collaborator
// in the parse pipeline; callers must degrade gracefully when it fails.
type HeaderClassifier interface {
	ClassifyHeaders(ctx context.Context, rowPreview string) (*HeaderClassification, error)
}
