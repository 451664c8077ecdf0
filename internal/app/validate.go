package app

import (
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ios-deploy/internal/types"
)

// validateUploadRequest checks the inputs in a fixed order and returns the
// resolved upload mode. The package file is opened once to prove it is
// readable.
func validateUploadRequest(req types.UploadRequest) (types.UploadMode, error) {
	if strings.TrimSpace(req.BuildURL) == "" {
		return "", configError("No Build URL provided", nil)
	}
	if strings.TrimSpace(req.APIToken) == "" {
		return "", configError("No Build API Token provided", nil)
	}
	packagePath := strings.TrimSpace(req.PackagePath)
	if packagePath == "" {
		return "", configError("No IPA path provided", nil)
	}
	info, err := os.Stat(packagePath)
	if err != nil {
		return "", configError("IPA does not exist at the provided path", err)
	}
	if info.IsDir() {
		return "", configError("IPA does not exist at the provided path", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(packagePath+" is a directory"))
	}
	file, err := os.Open(packagePath)
	if err != nil {
		return "", configError("IPA is not readable at the provided path", err)
	}
	_ = file.Close()
	mode, err := types.ParseUploadMode(string(req.Mode))
	if err != nil {
		return "", types.NewConfigError(err)
	}
	return mode, nil
}

func configError(msg string, cause error) error {
	if cause == nil {
		return types.NewConfigError(errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(msg))
	}
	return types.NewConfigError(errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg).
		WithCause(cause))
}
