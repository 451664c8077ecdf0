package adapters

import (
	"context"
	"os/exec"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ios-deploy/internal/ports"
	"ios-deploy/internal/shared"
	"ios-deploy/internal/types"
)

// TransferCurlAdapter delegates the PUT to curl, for agents whose proxy
// setup only curl is configured for.
type TransferCurlAdapter struct {
	Binary string
}

func NewTransferCurlAdapter(binary string) TransferCurlAdapter {
	if binary == "" {
		binary = "curl"
	}
	return TransferCurlAdapter{Binary: binary}
}

func (a TransferCurlAdapter) Upload(ctx context.Context, filePath string, uploadURL string) error {
	if err := ctx.Err(); err != nil {
		return types.NewTransferError(err)
	}
	cmd := exec.CommandContext(ctx, a.Binary, "--fail", "--silent", "--show-error", "-T", filePath, "-X", "PUT", uploadURL)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return types.NewTransferError(errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(transferFailedMsg).
			WithCause(shared.CommandError(output, err)))
	}
	return nil
}

var _ ports.TransferPort = TransferCurlAdapter{}
