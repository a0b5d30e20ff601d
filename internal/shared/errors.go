package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Provider selection and dispatch errors
	ErrUnsupportedFormat = fmt.Errorf("no provider supports this format")
	ErrProviderFailure   = fmt.Errorf("provider reported failure")
	ErrOpenFailure       = fmt.Errorf("failed to open handle")
	ErrNoSaveSupport     = fmt.Errorf("provider cannot save")
	ErrVersionRejected   = fmt.Errorf("provider version outside supported window")

	// Pipeline errors
	ErrPipelineClosed     = fmt.Errorf("pipeline is closed")
	ErrFormatNegotiation  = fmt.Errorf("output rejected audio format")
	ErrPlaybackInProgress = fmt.Errorf("a decode session is already running")

	// Library errors
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
