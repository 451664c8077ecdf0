package testutil

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
	"go.mozilla.org/pkcs7"
	"howett.net/plist"
)

// InfoPlist mirrors the Info.plist keys the extractor reads.
type InfoPlist struct {
	BundleName               string `plist:"CFBundleName"`
	BundleIdentifier         string `plist:"CFBundleIdentifier"`
	BundleShortVersionString string `plist:"CFBundleShortVersionString"`
	BundleVersion            string `plist:"CFBundleVersion"`
	MinimumOSVersion         string `plist:"MinimumOSVersion"`
	DeviceFamily             []int  `plist:"UIDeviceFamily"`
	BundleExecutable         string `plist:"CFBundleExecutable,omitempty"`
	BundlePackageType        string `plist:"CFBundlePackageType,omitempty"`
}

// ProvisioningProfile mirrors the provisioning profile keys the extractor reads.
type ProvisioningProfile struct {
	CreationDate         time.Time `plist:"CreationDate"`
	ExpirationDate       time.Time `plist:"ExpirationDate"`
	ProvisionedDevices   []string  `plist:"ProvisionedDevices,omitempty"`
	TeamName             string    `plist:"TeamName"`
	Name                 string    `plist:"Name"`
	ProvisionsAllDevices bool      `plist:"ProvisionsAllDevices,omitempty"`
}

// IPAFixture describes a synthetic .ipa archive.
type IPAFixture struct {
	AppName      string
	Info         InfoPlist
	Profile      ProvisioningProfile
	BinaryInfo   bool
	OmitInfo     bool
	OmitProfile  bool
	RawInfo      []byte
	RawProfile   []byte
	ExtraEntries map[string][]byte
}

// DefaultIPAFixture returns a fixture with a complete ad-hoc profile.
func DefaultIPAFixture() IPAFixture {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return IPAFixture{
		AppName: "Sample",
		Info: InfoPlist{
			BundleName:               "Sample",
			BundleIdentifier:         "io.example.sample",
			BundleShortVersionString: "1.4.0",
			BundleVersion:            "42",
			MinimumOSVersion:         "15.0",
			DeviceFamily:             []int{1, 2},
			BundleExecutable:         "Sample",
			BundlePackageType:        "APPL",
		},
		Profile: ProvisioningProfile{
			CreationDate:       created,
			ExpirationDate:     created.AddDate(1, 0, 0),
			ProvisionedDevices: []string{"00008030-001A", "00008110-002B"},
			TeamName:           "Example Team",
			Name:               "Example Ad Hoc",
		},
	}
}

// WriteIPA writes the fixture as <dir>/<AppName>.ipa and returns its path.
func WriteIPA(t *testing.T, dir string, fixture IPAFixture) string {
	t.Helper()
	appName := fixture.AppName
	if appName == "" {
		appName = "Sample"
	}
	appDir := "Payload/" + appName + ".app/"

	entries := map[string][]byte{
		appDir + appName: []byte("\xcf\xfa\xed\xfe binary"),
	}
	if !fixture.OmitInfo {
		info := fixture.RawInfo
		if info == nil {
			format := plist.XMLFormat
			if fixture.BinaryInfo {
				format = plist.BinaryFormat
			}
			encoded, err := plist.Marshal(fixture.Info, format)
			require.NoError(t, err)
			info = encoded
		}
		entries[appDir+"Info.plist"] = info
	}
	if !fixture.OmitProfile {
		profile := fixture.RawProfile
		if profile == nil {
			encoded, err := plist.MarshalIndent(fixture.Profile, plist.XMLFormat, "\t")
			require.NoError(t, err)
			profile = SignedEnvelope(t, encoded)
		}
		entries[appDir+"embedded.mobileprovision"] = profile
	}
	for name, content := range fixture.ExtraEntries {
		entries[name] = content
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range entries {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	path := filepath.Join(dir, appName+".ipa")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// SignedEnvelope wraps content in a PKCS#7 SignedData envelope signed by a
// throwaway self-signed certificate, the way provisioning profiles ship.
func SignedEnvelope(t *testing.T, content []byte) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Test Profile Signing"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	signed, err := pkcs7.NewSignedData(content)
	require.NoError(t, err)
	require.NoError(t, signed.AddSigner(cert, key, pkcs7.SignerInfoConfig{}))
	envelope, err := signed.Finish()
	require.NoError(t, err)
	return envelope
}
