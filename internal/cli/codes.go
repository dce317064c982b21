package cli

// Error codes for CLI responses.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeConfig        = "E002" // Invalid or unreadable configuration
	ErrCodeStore         = "E003" // Store unreachable or schema failed
	ErrCodeSource        = "E004" // Source directory or file unreadable
	ErrCodeLoadFailed    = "E005" // Fatal store error during a load
	ErrCodeRecordsFailed = "E006" // Load finished but records were rejected
	ErrCodeGraph         = "E007" // Graph export disabled or failed
)
