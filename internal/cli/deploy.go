package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ios-deploy/internal/app"
	"ios-deploy/internal/types"
)

type deployOptions struct {
	BuildURL         string
	APIToken         string
	IPAPath          string
	NotifyUserGroups string
	NotifyEmailList  string
	EnablePublicPage string
	Mode             string
	TransferBackend  string
	HTTPTimeoutSec   int
	FormattedOutput  string
	EnvmanPath       string
}

func newDeployCommand() *cobra.Command {
	opts := deployOptions{}
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload an .ipa as a build artifact and finish it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.BuildURL, "build-url", "", "Build URL on the artifact registry")
	cmd.Flags().StringVar(&opts.APIToken, "api-token", "", "Build API token")
	cmd.Flags().StringVar(&opts.IPAPath, "ipa-path", "", "Path to the .ipa file")
	cmd.Flags().StringVar(&opts.NotifyUserGroups, "notify-user-groups", "", "User groups to notify (none disables)")
	cmd.Flags().StringVar(&opts.NotifyEmailList, "notify-email-list", "", "Email addresses to notify")
	cmd.Flags().StringVar(&opts.EnablePublicPage, "is-enable-public-page", "", "Enable the public install page (yes/no)")
	cmd.Flags().StringVar(&opts.Mode, "mode", string(types.UploadModeMetadata), "Upload mode (metadata or basic)")
	cmd.Flags().StringVar(&opts.TransferBackend, "transfer-backend", string(types.TransferBackendHTTP), "Upload backend (http or curl)")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "Registry HTTP timeout in seconds (0 = default)")
	cmd.Flags().StringVar(&opts.FormattedOutput, "formatted-output", "", "Append the report to this file")
	cmd.Flags().StringVar(&opts.EnvmanPath, "envman-path", "envman", "envman binary used to export outputs")
	_ = viper.BindPFlag("build_url", cmd.Flags().Lookup("build-url"))
	_ = viper.BindPFlag("api_token", cmd.Flags().Lookup("api-token"))
	_ = viper.BindPFlag("ipa_path", cmd.Flags().Lookup("ipa-path"))
	_ = viper.BindPFlag("notify_user_groups", cmd.Flags().Lookup("notify-user-groups"))
	_ = viper.BindPFlag("notify_email_list", cmd.Flags().Lookup("notify-email-list"))
	_ = viper.BindPFlag("is_enable_public_page", cmd.Flags().Lookup("is-enable-public-page"))
	_ = viper.BindPFlag("mode", cmd.Flags().Lookup("mode"))
	_ = viper.BindPFlag("transfer_backend", cmd.Flags().Lookup("transfer-backend"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("formatted_output_file_path", cmd.Flags().Lookup("formatted-output"))
	_ = viper.BindPFlag("envman_path", cmd.Flags().Lookup("envman-path"))
	return cmd
}

func runDeploy(ctx context.Context, cmd *cobra.Command, opts deployOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.Logger.WithContext(ctx)

	req := deployRequest(cmd, opts)
	service, err := newAppService(cmd, opts, req.APIToken)
	if err != nil {
		return err
	}
	result, err := service.Deploy(ctx, req)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().
		Str("artifact_id", result.Artifact.ID).
		Int64("size", result.FileSizeBytes).
		Msg("deploy finished")
	return nil
}

func deployRequest(cmd *cobra.Command, opts deployOptions) types.UploadRequest {
	return types.UploadRequest{
		BuildURL:         resolveString(cmd, opts.BuildURL, "build_url", "build-url"),
		APIToken:         resolveString(cmd, opts.APIToken, "api_token", "api-token"),
		PackagePath:      resolveString(cmd, opts.IPAPath, "ipa_path", "ipa-path"),
		NotifyUserGroups: resolveString(cmd, opts.NotifyUserGroups, "notify_user_groups", "notify-user-groups"),
		NotifyEmails:     resolveString(cmd, opts.NotifyEmailList, "notify_email_list", "notify-email-list"),
		EnablePublicPage: types.ParseYesFlag(resolveString(cmd, opts.EnablePublicPage, "is_enable_public_page", "is-enable-public-page")),
		Mode:             types.UploadMode(resolveString(cmd, opts.Mode, "mode", "mode")),
	}
}

func newAppService(cmd *cobra.Command, opts deployOptions, token string) (app.Service, error) {
	return app.NewService(app.ServiceConfig{
		HTTPTimeoutSec:      resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout_sec", "http-timeout"),
		TransferBackend:     types.TransferBackend(resolveString(cmd, opts.TransferBackend, "transfer_backend", "transfer-backend")),
		EnvmanBinary:        resolveString(cmd, opts.EnvmanPath, "envman_path", "envman-path"),
		FormattedOutputPath: resolveString(cmd, opts.FormattedOutput, "formatted_output_file_path", "formatted-output"),
		Secrets:             []string{token},
	}, os.Stdout)
}
