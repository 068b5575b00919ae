package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Tracking URL resolution errors
	ErrUnsupportedURL = fmt.Errorf("unsupported tracking URL")

	// Provider errors
	ErrFetchFailed        = fmt.Errorf("provider fetch failed")
	ErrIncompleteMetadata = fmt.Errorf("incomplete provider metadata")
	ErrMissingCredentials = fmt.Errorf("missing provider credentials")

	// Store errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
