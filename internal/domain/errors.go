package domain

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrEmptyDocument     = errors.New("document text is empty")
	ErrInvalidOCRQuality = errors.New("ocr_quality must be within [0,1]")
)
