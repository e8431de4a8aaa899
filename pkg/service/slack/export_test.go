package slack

// Export internal functions for testing
var (
	BuildCaseMessage   = buildCaseMessage
	TruncateToMaxBytes = truncateToMaxBytes
)
