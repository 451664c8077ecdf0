package adapters

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
	"go.mozilla.org/pkcs7"
	"howett.net/plist"

	"ios-deploy/internal/ports"
	"ios-deploy/internal/types"
)

const defaultMaxMetadataEntrySize int64 = 16 << 20

var (
	infoPlistPattern = regexp.MustCompile(`^Payload/[^/]+\.app/Info\.plist$`)
	profilePattern   = regexp.MustCompile(`^Payload/[^/]+\.app/embedded\.mobileprovision$`)
)

type IPAMetadataAdapter struct {
	MaxEntrySize int64
}

func NewIPAMetadataAdapter() IPAMetadataAdapter {
	return IPAMetadataAdapter{MaxEntrySize: defaultMaxMetadataEntrySize}
}

type infoPlist struct {
	BundleName               string `plist:"CFBundleName"`
	BundleDisplayName        string `plist:"CFBundleDisplayName"`
	BundleIdentifier         string `plist:"CFBundleIdentifier"`
	BundleShortVersionString string `plist:"CFBundleShortVersionString"`
	BundleVersion            string `plist:"CFBundleVersion"`
	MinimumOSVersion         string `plist:"MinimumOSVersion"`
	DeviceFamily             []int  `plist:"UIDeviceFamily"`
}

type provisioningProfile struct {
	CreationDate         time.Time `plist:"CreationDate"`
	ExpirationDate       time.Time `plist:"ExpirationDate"`
	ProvisionedDevices   []string  `plist:"ProvisionedDevices"`
	TeamName             string    `plist:"TeamName"`
	Name                 string    `plist:"Name"`
	ProvisionsAllDevices bool      `plist:"ProvisionsAllDevices"`
}

// Extract reads the bundle descriptor and the embedded provisioning profile
// of the top-level app in an .ipa. The archive is closed before returning
// on every path.
func (a IPAMetadataAdapter) Extract(ctx context.Context, packagePath string) (types.PackageMetadata, error) {
	if err := ctx.Err(); err != nil {
		return types.PackageMetadata{}, types.NewExtractionError(err)
	}
	archive, err := zip.OpenReader(packagePath)
	if err != nil {
		return types.PackageMetadata{}, types.NewExtractionError(errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open ipa archive").
			WithCause(err))
	}
	defer archive.Close()

	infoEntry := findEntry(archive.File, infoPlistPattern)
	if infoEntry == nil {
		return types.PackageMetadata{}, types.NewExtractionError(errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("Info.plist not found in ipa"))
	}
	profileEntry := findEntry(archive.File, profilePattern)
	if profileEntry == nil {
		return types.PackageMetadata{}, types.NewExtractionError(errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("embedded.mobileprovision not found in ipa"))
	}

	bundle, err := a.readBundleInfo(infoEntry)
	if err != nil {
		return types.PackageMetadata{}, types.NewExtractionError(err)
	}
	provisioning, err := a.readProvisioningInfo(profileEntry)
	if err != nil {
		return types.PackageMetadata{}, types.NewExtractionError(err)
	}

	log.Ctx(ctx).Debug().
		Str("bundle_id", bundle.BundleID).
		Str("version", bundle.Version).
		Str("profile", provisioning.ProfileName).
		Int("devices", len(provisioning.DeviceUDIDs)).
		Msg("package metadata extracted")

	return types.PackageMetadata{
		Provisioning: provisioning,
		Bundle:       bundle,
	}, nil
}

func (a IPAMetadataAdapter) readBundleInfo(entry *zip.File) (types.BundleInfo, error) {
	data, err := a.readEntry(entry)
	if err != nil {
		return types.BundleInfo{}, err
	}
	var info infoPlist
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return types.BundleInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to decode Info.plist").
			WithCause(err)
	}
	if strings.TrimSpace(info.BundleIdentifier) == "" {
		return types.BundleInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("Info.plist has no CFBundleIdentifier")
	}
	title := info.BundleName
	if strings.TrimSpace(title) == "" {
		title = info.BundleDisplayName
	}
	return types.BundleInfo{
		AppTitle:       title,
		BundleID:       info.BundleIdentifier,
		Version:        info.BundleShortVersionString,
		BuildNumber:    info.BundleVersion,
		MinOSVersion:   info.MinimumOSVersion,
		DeviceFamilies: info.DeviceFamily,
	}, nil
}

func (a IPAMetadataAdapter) readProvisioningInfo(entry *zip.File) (types.ProvisioningInfo, error) {
	data, err := a.readEntry(entry)
	if err != nil {
		return types.ProvisioningInfo{}, err
	}
	envelope, err := pkcs7.Parse(data)
	if err != nil {
		return types.ProvisioningInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse provisioning profile envelope").
			WithCause(err)
	}
	var profile provisioningProfile
	if _, err := plist.Unmarshal(envelope.Content, &profile); err != nil {
		return types.ProvisioningInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to decode provisioning profile").
			WithCause(err)
	}
	return types.ProvisioningInfo{
		CreationDate:         profile.CreationDate,
		ExpirationDate:       profile.ExpirationDate,
		DeviceUDIDs:          profile.ProvisionedDevices,
		TeamName:             profile.TeamName,
		ProfileName:          profile.Name,
		ProvisionsAllDevices: profile.ProvisionsAllDevices,
	}, nil
}

func (a IPAMetadataAdapter) readEntry(entry *zip.File) ([]byte, error) {
	limit := a.MaxEntrySize
	if limit <= 0 {
		limit = defaultMaxMetadataEntrySize
	}
	reader, err := entry.Open()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open " + entry.Name).
			WithCause(err)
	}
	defer reader.Close()
	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read " + entry.Name).
			WithCause(err)
	}
	if int64(len(data)) > limit {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s exceeds %d bytes", entry.Name, limit))
	}
	return data, nil
}

func findEntry(files []*zip.File, pattern *regexp.Regexp) *zip.File {
	for _, file := range files {
		if pattern.MatchString(file.Name) {
			return file
		}
	}
	return nil
}

var _ ports.MetadataExtractorPort = IPAMetadataAdapter{}
