package adapters

import (
	"context"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ios-deploy/internal/ports"
	"ios-deploy/internal/shared"
	"ios-deploy/internal/types"
)

// EnvmanExporterAdapter hands output values to the pipeline through
// `envman add`.
type EnvmanExporterAdapter struct {
	Binary string
}

func NewEnvmanExporterAdapter(binary string) EnvmanExporterAdapter {
	if strings.TrimSpace(binary) == "" {
		binary = "envman"
	}
	return EnvmanExporterAdapter{Binary: binary}
}

func (a EnvmanExporterAdapter) Export(ctx context.Context, key string, value string) error {
	if strings.TrimSpace(key) == "" {
		return types.NewExportError(errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("export key is empty"))
	}
	cmd := exec.CommandContext(ctx, a.Binary, "add", "--key", key, "--value", value)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return types.NewExportError(errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("Failed to export " + key).
			WithCause(shared.CommandError(output, err)))
	}
	return nil
}

var _ ports.ExporterPort = EnvmanExporterAdapter{}
