package scraper

import "errors"

// Extraction-local sentinel errors. Each is caught at the single-URL
// boundary and downgraded to an error Result; none of them aborts a run.
var (
	// ErrValidation indicates the request yields no URL tasks or fails
	// shape validation.
	ErrValidation = errors.New("invalid scrape request")

	// ErrContainerNotFound indicates no scrollable container resolved
	// for chat entry collection.
	ErrContainerNotFound = errors.New("scrollable container not found")

	// ErrNoEntriesCollected indicates the scroll loop finished without
	// collecting a single entry.
	ErrNoEntriesCollected = errors.New("no chat entries collected")

	// ErrNoFieldsFound indicates none of the metadata fields matched
	// any element.
	ErrNoFieldsFound = errors.New("no metadata fields found")

	// ErrNavigation indicates a navigation failed after the one-shot
	// reload retry.
	ErrNavigation = errors.New("page navigation failed")
)
