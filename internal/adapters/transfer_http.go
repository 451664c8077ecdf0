package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog/log"

	"ios-deploy/internal/ports"
	"ios-deploy/internal/shared"
	"ios-deploy/internal/types"
)

const transferFailedMsg = "Failed to upload the Artifact file"

// TransferHTTPAdapter streams the package to the upload URL with a single
// PUT. The client has no timeout; large packages on slow links are
// expected to take a while.
type TransferHTTPAdapter struct {
	Client *http.Client
}

func NewTransferHTTPAdapter() TransferHTTPAdapter {
	return TransferHTTPAdapter{Client: cleanhttp.DefaultClient()}
}

func (a TransferHTTPAdapter) Upload(ctx context.Context, filePath string, uploadURL string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return types.NewTransferError(errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(transferFailedMsg).
			WithCause(err))
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return types.NewTransferError(errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(transferFailedMsg).
			WithCause(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return types.NewTransferError(errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(transferFailedMsg).
			WithCause(err))
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	client := a.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	log.Ctx(ctx).Debug().
		Str("url", redactQuery(uploadURL)).
		Int64("bytes", info.Size()).
		Msg("uploading package")
	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactQuery(urlErr.URL)
		}
		return types.NewTransferError(errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(transferFailedMsg).
			WithCause(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxRegistryResponseSize))
	return types.NewTransferError(errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(transferFailedMsg).
		WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, redactQuery(uploadURL), strings.TrimSpace(string(body)))))
}

// redactQuery drops the query string of a pre-signed URL so signatures do
// not end up in logs.
func redactQuery(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}

var _ ports.TransferPort = TransferHTTPAdapter{}
