package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog/log"

	"ios-deploy/internal/ports"
	"ios-deploy/internal/shared"
	"ios-deploy/internal/types"
)

const defaultRegistryTimeout = 60 * time.Second
const maxRegistryResponseSize = 1 << 20

const (
	createFailedMsg = "Failed to create the Build Artifact on Bitrise"
	finishFailedMsg = "Failed to send 'finished' to Bitrise"
)

type ArtifactRegistryHTTPAdapter struct {
	Client *http.Client
}

func NewArtifactRegistryHTTPAdapter(timeoutSec int) ArtifactRegistryHTTPAdapter {
	client := cleanhttp.DefaultClient()
	client.Timeout = normalizeRegistryTimeout(timeoutSec)
	return ArtifactRegistryHTTPAdapter{Client: client}
}

type createArtifactResponse struct {
	UploadURL string     `json:"upload_url"`
	ID        artifactID `json:"id"`
	ErrorMsg  *string    `json:"error_msg"`
}

type finishArtifactResponse struct {
	Status               string  `json:"status"`
	PublicInstallPageURL string  `json:"public_install_page_url"`
	ErrorMsg             *string `json:"error_msg"`
}

// artifactID accepts both JSON strings and numbers.
type artifactID string

func (id *artifactID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*id = artifactID(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return err
	}
	*id = artifactID(number.String())
	return nil
}

func (a ArtifactRegistryHTTPAdapter) CreateArtifact(ctx context.Context, buildURL string, token string, fileName string) (types.ArtifactHandle, error) {
	endpoint := shared.TrimURL(buildURL) + "/artifacts.json"
	form := url.Values{}
	form.Set("api_token", token)
	form.Set("title", fileName)
	form.Set("filename", fileName)
	form.Set("artifact_type", types.ArtifactTypeIPA)

	status, body, err := a.postForm(ctx, endpoint, form)
	if err != nil {
		return types.ArtifactHandle{}, types.NewRegistryError(types.ReasonTransport, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(createFailedMsg).
			WithCause(err))
	}
	log.Ctx(ctx).Debug().Int("status", status).Str("url", endpoint).Msg("create artifact response")
	if status != http.StatusOK {
		return types.ArtifactHandle{}, types.NewRegistryError(types.ReasonStatus, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s - code: %d", createFailedMsg, status)).
			WithCause(shared.HTTPStatusErrorWithBody(status, endpoint, strings.TrimSpace(string(body)))))
	}
	var parsed createArtifactResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.ArtifactHandle{}, types.NewRegistryError(types.ReasonDecode, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(createFailedMsg+": invalid response").
			WithCause(err))
	}
	if parsed.ErrorMsg != nil {
		return types.ArtifactHandle{}, types.NewRegistryError(types.ReasonServiceError, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(createFailedMsg+": "+*parsed.ErrorMsg))
	}
	if strings.TrimSpace(parsed.UploadURL) == "" {
		return types.ArtifactHandle{}, types.NewRegistryError(types.ReasonMissingUploadURL, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("No upload_url provided for the artifact"))
	}
	if strings.TrimSpace(string(parsed.ID)) == "" {
		return types.ArtifactHandle{}, types.NewRegistryError(types.ReasonMissingID, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("No artifact_id provided for the artifact"))
	}
	return types.ArtifactHandle{
		ID:        string(parsed.ID),
		UploadURL: parsed.UploadURL,
	}, nil
}

func (a ArtifactRegistryHTTPAdapter) FinishArtifact(ctx context.Context, buildURL string, token string, artifactID string, req types.FinishRequest) (types.FinishOutcome, error) {
	endpoint := fmt.Sprintf("%s/artifacts/%s/finish_upload.json", shared.TrimURL(buildURL), url.PathEscape(artifactID))
	form := url.Values{}
	form.Set("api_token", token)
	if req.ArtifactInfo != nil {
		info, err := json.Marshal(req.ArtifactInfo)
		if err != nil {
			return types.FinishOutcome{}, types.NewRegistryError(types.ReasonDecode, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode artifact info").
				WithCause(err))
		}
		form.Set("artifact_info", string(info))
	}
	form.Set("notify_user_groups", shared.NormalizeNotifyGroups(req.NotifyUserGroups))
	form.Set("notify_emails", strings.TrimSpace(req.NotifyEmails))
	form.Set("is_enable_public_page", strconv.FormatBool(req.EnablePublicPage))

	status, body, err := a.postForm(ctx, endpoint, form)
	if err != nil {
		return types.FinishOutcome{}, types.NewRegistryError(types.ReasonTransport, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(finishFailedMsg).
			WithCause(err))
	}
	log.Ctx(ctx).Debug().Int("status", status).Str("url", endpoint).Msg("finish artifact response")
	if status != http.StatusOK {
		return types.FinishOutcome{}, types.NewRegistryError(types.ReasonStatus, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s - code: %d", finishFailedMsg, status)).
			WithCause(shared.HTTPStatusErrorWithBody(status, endpoint, strings.TrimSpace(string(body)))))
	}
	var parsed finishArtifactResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.FinishOutcome{}, types.NewRegistryError(types.ReasonDecode, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(finishFailedMsg+": invalid response").
			WithCause(err))
	}
	if parsed.ErrorMsg != nil {
		return types.FinishOutcome{}, types.NewRegistryError(types.ReasonServiceError, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(finishFailedMsg+": "+*parsed.ErrorMsg))
	}
	if parsed.Status != "ok" {
		return types.FinishOutcome{}, types.NewRegistryError(types.ReasonFinishStatus, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(finishFailedMsg).
			WithCause(fmt.Errorf("status=%q", parsed.Status)))
	}
	if req.EnablePublicPage && strings.TrimSpace(parsed.PublicInstallPageURL) == "" {
		return types.FinishOutcome{}, types.NewRegistryError(types.ReasonMissingPublicPage, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("Public install page was enabled, but no public install page URL is available"))
	}
	return types.FinishOutcome{
		Status:               parsed.Status,
		PublicInstallPageURL: parsed.PublicInstallPageURL,
	}, nil
}

func (a ArtifactRegistryHTTPAdapter) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	client := a.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
		client.Timeout = defaultRegistryTimeout
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRegistryResponseSize))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func normalizeRegistryTimeout(value int) time.Duration {
	timeout := time.Duration(value) * time.Second
	if timeout <= 0 {
		return defaultRegistryTimeout
	}
	return timeout
}

var _ ports.ArtifactRegistryPort = ArtifactRegistryHTTPAdapter{}
