package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Job errors
	ErrInvalidTarget = fmt.Errorf("invalid target")
	ErrJobRunning    = fmt.Errorf("job already running")
	ErrInvalidHeader = fmt.Errorf("invalid header")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrStatsUnavailable   = fmt.Errorf("statistics unavailable")
	ErrTableNotFound      = fmt.Errorf("table not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
