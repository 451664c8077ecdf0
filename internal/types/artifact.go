package types

import "time"

type ArtifactHandle struct {
	ID        string
	UploadURL string
}

type ProvisioningInfo struct {
	CreationDate         time.Time `json:"creation_date"`
	ExpirationDate       time.Time `json:"expire_date"`
	DeviceUDIDs          []string  `json:"device_UDID_list"`
	TeamName             string    `json:"team_name"`
	ProfileName          string    `json:"profile_name"`
	ProvisionsAllDevices bool      `json:"provisions_all_devices"`
}

type BundleInfo struct {
	AppTitle       string `json:"app_title"`
	BundleID       string `json:"bundle_id"`
	Version        string `json:"version"`
	BuildNumber    string `json:"build_number"`
	MinOSVersion   string `json:"min_OS_version"`
	DeviceFamilies []int  `json:"device_family_list"`
}

type PackageMetadata struct {
	Provisioning ProvisioningInfo
	Bundle       BundleInfo
}

// ArtifactInfo is the artifact_info payload of the finish call.
type ArtifactInfo struct {
	FileSizeBytes    int64            `json:"file_size_bytes"`
	AppInfo          BundleInfo       `json:"app_info"`
	ProvisioningInfo ProvisioningInfo `json:"provisioning_info"`
}

func NewArtifactInfo(size int64, metadata PackageMetadata) ArtifactInfo {
	return ArtifactInfo{
		FileSizeBytes:    size,
		AppInfo:          metadata.Bundle,
		ProvisioningInfo: metadata.Provisioning,
	}
}

// FinishRequest carries everything the finish call sends besides the
// token and artifact id. ArtifactInfo is nil in basic mode.
type FinishRequest struct {
	ArtifactInfo     *ArtifactInfo
	NotifyUserGroups string
	NotifyEmails     string
	EnablePublicPage bool
}

type FinishOutcome struct {
	Status               string
	PublicInstallPageURL string
}
