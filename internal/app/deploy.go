package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/docker/go-units"
	"github.com/rs/zerolog/log"

	"ios-deploy/internal/types"
)

// Deploy runs one deploy of an .ipa to the artifact registry. Stages run in
// order and the first failure skips every later remote stage. The returned
// result always carries a terminal outcome; the error is non-nil exactly
// when the outcome is a failure.
func (s Service) Deploy(ctx context.Context, req types.UploadRequest) (DeployResult, error) {
	run := &deployRun{service: s, req: req}
	err := run.execute(ctx)
	err = run.report(ctx, err)
	run.enter(ctx, StageTerminal)
	return run.result, err
}

type deployRun struct {
	service       Service
	req           types.UploadRequest
	result        DeployResult
	publicPageURL string
}

func (r *deployRun) enter(ctx context.Context, stage Stage) {
	r.result.Stages = append(r.result.Stages, stage)
	log.Ctx(ctx).Debug().Str("stage", string(stage)).Msg("deploy stage")
}

func (r *deployRun) execute(ctx context.Context) error {
	r.enter(ctx, StageValidatingInput)
	r.narrate(ctx, r.optionsLine())
	mode, err := validateUploadRequest(r.req)
	if err != nil {
		return err
	}
	r.req.Mode = mode
	r.narrate(ctx, "* Inputs validated")

	var info *types.ArtifactInfo
	if mode == types.UploadModeMetadata {
		r.enter(ctx, StageExtractingMetadata)
		r.narrate(ctx, "* Reading package metadata")
		metadata, err := r.service.Metadata.Extract(ctx, r.req.PackagePath)
		if err != nil {
			return err
		}
		r.result.Metadata = &metadata
		r.narrate(ctx, fmt.Sprintf("* Package metadata: %s %s (%s), profile %q",
			metadata.Bundle.BundleID, metadata.Bundle.Version, metadata.Bundle.BuildNumber, metadata.Provisioning.ProfileName))
	}

	r.enter(ctx, StageCreatingArtifact)
	r.narrate(ctx, "* Creating the Build Artifact")
	fileName := filepath.Base(r.req.PackagePath)
	handle, err := r.service.Registry.CreateArtifact(ctx, r.req.BuildURL, r.req.APIToken, fileName)
	if err != nil {
		return err
	}
	assert.NotEmpty(ctx, handle.ID, "artifact id must be set after create")
	assert.NotEmpty(ctx, handle.UploadURL, "upload url must be set after create")
	r.result.Artifact = handle
	r.narrate(ctx, "* Build Artifact created (id: "+handle.ID+")")

	r.enter(ctx, StageTransferringBinary)
	stat, err := os.Stat(r.req.PackagePath)
	if err != nil {
		return types.NewTransferError(errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("Failed to upload the Artifact file").
			WithCause(err))
	}
	r.result.FileSizeBytes = stat.Size()
	r.narrate(ctx, fmt.Sprintf("* Uploading %s (%s)", fileName, units.HumanSize(float64(stat.Size()))))
	if err := r.service.Transfer.Upload(ctx, r.req.PackagePath, handle.UploadURL); err != nil {
		return err
	}
	r.narrate(ctx, "* Upload finished")
	if r.result.Metadata != nil {
		built := types.NewArtifactInfo(stat.Size(), *r.result.Metadata)
		info = &built
	}

	r.enter(ctx, StageFinishingArtifact)
	r.narrate(ctx, "* Finishing the Build Artifact")
	finished, err := r.service.Registry.FinishArtifact(ctx, r.req.BuildURL, r.req.APIToken, handle.ID, types.FinishRequest{
		ArtifactInfo:     info,
		NotifyUserGroups: r.req.NotifyUserGroups,
		NotifyEmails:     r.req.NotifyEmails,
		EnablePublicPage: r.req.EnablePublicPage,
	})
	if err != nil {
		return err
	}
	if r.req.EnablePublicPage {
		r.publicPageURL = finished.PublicInstallPageURL
	}
	r.narrate(ctx, "* Build Artifact finished")
	return nil
}

// report exports the public install page location, settles the outcome and
// writes the closing sections. An export failure turns a successful run
// into a failed one.
func (r *deployRun) report(ctx context.Context, err error) error {
	r.enter(ctx, StageReporting)
	if err == nil && r.publicPageURL != "" {
		if exportErr := r.service.Exporter.Export(ctx, types.PublicInstallPageURLEnvKey, r.publicPageURL); exportErr != nil {
			err = exportErr
		}
	}
	if err != nil {
		reason := failureMessage(err)
		r.result.Outcome = types.FailureOutcome(reason)
		log.Ctx(ctx).Error().Err(err).Str("kind", string(types.KindOf(err))).Msg("deploy failed")
		r.narrate(ctx, " [!] Error: "+err.Error())
		r.section(ctx, "## Failed")
		r.section(ctx, reason)
		r.section(ctx, "Check the Logs for details.")
		return err
	}

	r.result.Outcome = types.SuccessOutcome(r.req.BuildURL, r.publicPageURL)
	r.section(ctx, "## Success")
	r.section(ctx, "You can find the Artifact on Bitrise, on the [Build's page]("+r.req.BuildURL+")")
	if r.publicPageURL != "" {
		r.section(ctx, "Public Install Page: "+r.publicPageURL)
		r.narrate(ctx, "* "+types.PublicInstallPageURLEnvKey+" exported")
	}
	return nil
}

func (r *deployRun) narrate(ctx context.Context, text string) {
	if r.service.Reporter == nil {
		return
	}
	if err := r.service.Reporter.Line(text); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to write progress line")
	}
}

func (r *deployRun) section(ctx context.Context, text string) {
	if r.service.Reporter == nil {
		return
	}
	if err := r.service.Reporter.Section(text); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to write report section")
	}
}

func (r *deployRun) optionsLine() string {
	token := ""
	if strings.TrimSpace(r.req.APIToken) != "" {
		token = "***"
	}
	mode := r.req.Mode
	if parsed, err := types.ParseUploadMode(string(mode)); err == nil {
		mode = parsed
	}
	return fmt.Sprintf("Options: build_url=%s api_token=%s ipa_path=%s notify_user_groups=%s notify_email_list=%s is_enable_public_page=%t mode=%s",
		r.req.BuildURL, token, r.req.PackagePath, r.req.NotifyUserGroups, r.req.NotifyEmails, r.req.EnablePublicPage, mode)
}

func failureMessage(err error) string {
	var deployErr *types.DeployError
	if errors.As(err, &deployErr) {
		return strings.TrimSpace(deployErr.Message())
	}
	return strings.TrimSpace(err.Error())
}
