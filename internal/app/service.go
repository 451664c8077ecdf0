package app

import (
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ios-deploy/internal/adapters"
	"ios-deploy/internal/ports"
	"ios-deploy/internal/types"
)

type Service struct {
	Metadata ports.MetadataExtractorPort
	Registry ports.ArtifactRegistryPort
	Transfer ports.TransferPort
	Reporter ports.ReporterPort
	Exporter ports.ExporterPort
}

func NewService(cfg ServiceConfig, console io.Writer) (Service, error) {
	if console == nil {
		console = os.Stdout
	}
	transfer, err := newTransfer(cfg)
	if err != nil {
		return Service{}, err
	}
	return Service{
		Metadata: adapters.NewIPAMetadataAdapter(),
		Registry: adapters.NewArtifactRegistryHTTPAdapter(cfg.HTTPTimeoutSec),
		Transfer: transfer,
		Reporter: adapters.NewFormattedOutputAdapter(console, cfg.FormattedOutputPath, cfg.Secrets...),
		Exporter: adapters.NewEnvmanExporterAdapter(cfg.EnvmanBinary),
	}, nil
}

func newTransfer(cfg ServiceConfig) (ports.TransferPort, error) {
	backend := types.TransferBackend(strings.ToLower(strings.TrimSpace(string(cfg.TransferBackend))))
	switch backend {
	case "", types.TransferBackendHTTP:
		return adapters.NewTransferHTTPAdapter(), nil
	case types.TransferBackendCurl:
		return adapters.NewTransferCurlAdapter(cfg.CurlBinary), nil
	default:
		return nil, types.NewConfigError(errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported transfer backend '" + string(cfg.TransferBackend) + "'"))
	}
}
