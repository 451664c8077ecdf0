package types

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// UploadRequest is the complete input of one deploy run.
type UploadRequest struct {
	BuildURL         string
	APIToken         string
	PackagePath      string
	NotifyUserGroups string
	NotifyEmails     string
	EnablePublicPage bool
	Mode             UploadMode
}

// ParseUploadMode maps a configuration value onto an UploadMode. An empty
// value selects the metadata mode.
func ParseUploadMode(value string) (UploadMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(UploadModeMetadata):
		return UploadModeMetadata, nil
	case string(UploadModeBasic):
		return UploadModeBasic, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported upload mode '" + value + "'")
	}
}

// ParseYesFlag reports whether a step input is the literal "yes".
func ParseYesFlag(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "yes")
}
