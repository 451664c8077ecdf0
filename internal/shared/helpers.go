// Package shared provides small helpers used by the adapters and the
// deploy service.
package shared

import (
	"fmt"
	"strings"

	"ios-deploy/internal/types"
)

// NormalizeNotifyGroups maps the "no groups" spellings of the notify user
// groups input ("" and "none") onto an empty value.
func NormalizeNotifyGroups(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, types.NotifyGroupsNone) {
		return ""
	}
	return trimmed
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for unexpected HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}

// TrimURL removes surrounding whitespace and trailing slashes so paths can
// be appended with a single separator.
func TrimURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}
