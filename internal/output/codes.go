// Package output provides JSON output formatting and error handling.
package output

// Exit codes.
const (
	ExitOK      = 0 // Success
	ExitUsage   = 1 // Invalid arguments or flags
	ExitAuth    = 2 // Not authorized / authorization failed
	ExitNetwork = 3 // Connection/DNS/timeout error
	ExitAPI     = 4 // Provider returned an error
	ExitStorage = 5 // Credential file I/O failure
)

// Error codes for the JSON envelope.
const (
	CodeUsage   = "usage"
	CodeAuth    = "auth_required"
	CodeNetwork = "network"
	CodeAPI     = "api_error"
	CodeStorage = "storage"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeAuth:
		return ExitAuth
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	case CodeStorage:
		return ExitStorage
	default:
		return ExitAPI
	}
}
