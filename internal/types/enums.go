package types

type UploadMode string

const (
	UploadModeMetadata UploadMode = "metadata"
	UploadModeBasic    UploadMode = "basic"
)

type TransferBackend string

const (
	TransferBackendHTTP TransferBackend = "http"
	TransferBackendCurl TransferBackend = "curl"
)

const (
	ArtifactTypeIPA = "ios-ipa"

	NotifyGroupsNone = "none"

	PublicInstallPageURLEnvKey = "BITRISE_PUBLIC_INSTALL_PAGE_URL"
)
