package services

import "errors"

// Service errors
var (
	// View errors
	ErrUnknownView   = errors.New("unknown view")
	ErrUnknownEntity = errors.New("unknown entity list")

	// Export errors
	ErrExportFailed = errors.New("export failed")
)

// EmptyResultWarning is attached to a view that produced no rows.
const EmptyResultWarning = "no data for the selected filters"
