package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ios-deploy/internal/types"
	"ios-deploy/tests/testutil"
)

func TestIPAMetadataAdapterExtract(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	expected := types.PackageMetadata{
		Provisioning: types.ProvisioningInfo{
			CreationDate:   created,
			ExpirationDate: created.AddDate(1, 0, 0),
			DeviceUDIDs:    []string{"00008030-001A", "00008110-002B"},
			TeamName:       "Example Team",
			ProfileName:    "Example Ad Hoc",
		},
		Bundle: types.BundleInfo{
			AppTitle:       "Sample",
			BundleID:       "io.example.sample",
			Version:        "1.4.0",
			BuildNumber:    "42",
			MinOSVersion:   "15.0",
			DeviceFamilies: []int{1, 2},
		},
	}

	tests := []struct {
		name    string
		fixture func() testutil.IPAFixture
	}{
		{
			name:    "xml info plist",
			fixture: testutil.DefaultIPAFixture,
		},
		{
			name: "binary info plist",
			fixture: func() testutil.IPAFixture {
				fixture := testutil.DefaultIPAFixture()
				fixture.BinaryInfo = true
				return fixture
			},
		},
		{
			name: "nested extension bundles are ignored",
			fixture: func() testutil.IPAFixture {
				fixture := testutil.DefaultIPAFixture()
				fixture.ExtraEntries = map[string][]byte{
					"Payload/Sample.app/PlugIns/Widget.appex/Info.plist": []byte("not a plist"),
				}
				return fixture
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteIPA(t, t.TempDir(), tt.fixture())

			metadata, err := NewIPAMetadataAdapter().Extract(t.Context(), path)
			require.NoError(t, err)
			if diff := cmp.Diff(expected, metadata); diff != "" {
				t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIPAMetadataAdapterTitleFallsBackToDisplayName(t *testing.T) {
	fixture := testutil.DefaultIPAFixture()
	fixture.RawInfo = []byte(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleDisplayName</key>
	<string>Sample Display</string>
	<key>CFBundleIdentifier</key>
	<string>io.example.sample</string>
	<key>CFBundleShortVersionString</key>
	<string>1.4.0</string>
	<key>CFBundleVersion</key>
	<string>42</string>
</dict>
</plist>`)
	path := testutil.WriteIPA(t, t.TempDir(), fixture)

	metadata, err := NewIPAMetadataAdapter().Extract(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, "Sample Display", metadata.Bundle.AppTitle)
	assert.Empty(t, metadata.Bundle.DeviceFamilies)
}

func TestIPAMetadataAdapterProvisionsAllDevices(t *testing.T) {
	fixture := testutil.DefaultIPAFixture()
	fixture.Profile.ProvisionedDevices = nil
	fixture.Profile.ProvisionsAllDevices = true
	path := testutil.WriteIPA(t, t.TempDir(), fixture)

	metadata, err := NewIPAMetadataAdapter().Extract(t.Context(), path)
	require.NoError(t, err)
	assert.True(t, metadata.Provisioning.ProvisionsAllDevices)
	assert.Empty(t, metadata.Provisioning.DeviceUDIDs)
}

func TestIPAMetadataAdapterFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string) string
		message string
	}{
		{
			name: "not a zip archive",
			setup: func(t *testing.T, dir string) string {
				return testutil.WriteFile(t, dir, "broken.ipa", []byte("plain text"))
			},
			message: "failed to open ipa archive",
		},
		{
			name: "missing file",
			setup: func(_ *testing.T, dir string) string {
				return filepath.Join(dir, "missing.ipa")
			},
			message: "failed to open ipa archive",
		},
		{
			name: "missing Info.plist",
			setup: func(t *testing.T, dir string) string {
				fixture := testutil.DefaultIPAFixture()
				fixture.OmitInfo = true
				return testutil.WriteIPA(t, dir, fixture)
			},
			message: "Info.plist not found in ipa",
		},
		{
			name: "missing provisioning profile",
			setup: func(t *testing.T, dir string) string {
				fixture := testutil.DefaultIPAFixture()
				fixture.OmitProfile = true
				return testutil.WriteIPA(t, dir, fixture)
			},
			message: "embedded.mobileprovision not found in ipa",
		},
		{
			name: "undecodable Info.plist",
			setup: func(t *testing.T, dir string) string {
				fixture := testutil.DefaultIPAFixture()
				fixture.RawInfo = []byte("bplist00\x00\x01truncated")
				return testutil.WriteIPA(t, dir, fixture)
			},
			message: "failed to decode Info.plist",
		},
		{
			name: "Info.plist without bundle identifier",
			setup: func(t *testing.T, dir string) string {
				fixture := testutil.DefaultIPAFixture()
				fixture.Info.BundleIdentifier = ""
				return testutil.WriteIPA(t, dir, fixture)
			},
			message: "Info.plist has no CFBundleIdentifier",
		},
		{
			name: "profile without signed envelope",
			setup: func(t *testing.T, dir string) string {
				fixture := testutil.DefaultIPAFixture()
				fixture.RawProfile = []byte("<?xml version=\"1.0\"?><plist><dict/></plist>")
				return testutil.WriteIPA(t, dir, fixture)
			},
			message: "failed to parse provisioning profile envelope",
		},
		{
			name: "profile envelope without plist content",
			setup: func(t *testing.T, dir string) string {
				fixture := testutil.DefaultIPAFixture()
				fixture.RawProfile = testutil.SignedEnvelope(t, []byte("bplist00\x00\x01truncated"))
				return testutil.WriteIPA(t, dir, fixture)
			},
			message: "failed to decode provisioning profile",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t, t.TempDir())

			_, err := NewIPAMetadataAdapter().Extract(t.Context(), path)
			require.Error(t, err)
			assert.Equal(t, types.ErrorKindExtraction, types.KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestIPAMetadataAdapterEntrySizeLimit(t *testing.T) {
	path := testutil.WriteIPA(t, t.TempDir(), testutil.DefaultIPAFixture())

	adapter := IPAMetadataAdapter{MaxEntrySize: 16}
	_, err := adapter.Extract(t.Context(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestIPAMetadataAdapterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIPAMetadataAdapter().Extract(ctx, filepath.Join(os.TempDir(), "unused.ipa"))
	require.Error(t, err)
	assert.Equal(t, types.ErrorKindExtraction, types.KindOf(err))
}
