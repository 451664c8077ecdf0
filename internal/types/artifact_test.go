package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestArtifactInfoJSONRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		info ArtifactInfo
	}{
		{
			name: "full metadata",
			info: NewArtifactInfo(1048576, PackageMetadata{
				Provisioning: ProvisioningInfo{
					CreationDate:         created,
					ExpirationDate:       created.AddDate(1, 0, 0),
					DeviceUDIDs:          []string{"00008030-001A", "00008110-002B"},
					TeamName:             "Example Team",
					ProfileName:          "Example Ad Hoc",
					ProvisionsAllDevices: false,
				},
				Bundle: BundleInfo{
					AppTitle:       "Sample",
					BundleID:       "io.example.sample",
					Version:        "1.4.0",
					BuildNumber:    "42",
					MinOSVersion:   "15.0",
					DeviceFamilies: []int{1, 2},
				},
			}),
		},
		{
			name: "enterprise profile without devices",
			info: NewArtifactInfo(7, PackageMetadata{
				Provisioning: ProvisioningInfo{
					CreationDate:         created,
					ExpirationDate:       created.Add(24 * time.Hour),
					TeamName:             "Enterprise",
					ProfileName:          "In House",
					ProvisionsAllDevices: true,
				},
				Bundle: BundleInfo{
					AppTitle:       "Internal",
					BundleID:       "io.example.internal",
					Version:        "2.0",
					BuildNumber:    "2000",
					MinOSVersion:   "16.4",
					DeviceFamilies: []int{1},
				},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.info)
			require.NoError(t, err)

			var decoded ArtifactInfo
			require.NoError(t, json.Unmarshal(raw, &decoded))
			if diff := cmp.Diff(tt.info, decoded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArtifactInfoWireKeys(t *testing.T) {
	raw, err := json.Marshal(NewArtifactInfo(3, PackageMetadata{}))
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &top))
	require.Contains(t, top, "file_size_bytes")

	var appInfo, provisioningInfo map[string]interface{}
	require.NoError(t, json.Unmarshal(top["app_info"], &appInfo))
	require.NoError(t, json.Unmarshal(top["provisioning_info"], &provisioningInfo))
	for _, key := range []string{"app_title", "bundle_id", "version", "build_number", "min_OS_version", "device_family_list"} {
		require.Contains(t, appInfo, key)
	}
	for _, key := range []string{"creation_date", "expire_date", "device_UDID_list", "team_name", "profile_name", "provisions_all_devices"} {
		require.Contains(t, provisioningInfo, key)
	}
}
