package adapters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormattedOutputAdapterConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	reporter := NewFormattedOutputAdapter(&console, "")

	require.NoError(t, reporter.Line("* creating artifact"))
	require.NoError(t, reporter.Section("## Success"))

	assert.Equal(t, "* creating artifact\n\n## Success\n\n", console.String())
}

func TestFormattedOutputAdapterMirrorsToFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "formatted.md")
	require.NoError(t, os.WriteFile(path, []byte("previous step\n"), 0o644))
	reporter := NewFormattedOutputAdapter(&console, path)

	require.NoError(t, reporter.Section("## Failed"))
	require.NoError(t, reporter.Line("reason"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous step\n\n## Failed\n\nreason\n", string(content))
	assert.Equal(t, "\n## Failed\n\nreason\n", console.String())
}

func TestFormattedOutputAdapterMasksSecrets(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "formatted.md")
	reporter := NewFormattedOutputAdapter(&console, path, "s3cr3t-token", "")

	require.NoError(t, reporter.Line("Options: api_token=s3cr3t-token"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, console.String(), "s3cr3t-token")
	assert.NotContains(t, string(content), "s3cr3t-token")
	assert.Contains(t, console.String(), "*****")
}

func TestFormattedOutputAdapterUnwritableFile(t *testing.T) {
	var console bytes.Buffer
	reporter := NewFormattedOutputAdapter(&console, filepath.Join(t.TempDir(), "missing", "formatted.md"))

	err := reporter.Line("text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open formatted output file")
	assert.Equal(t, "text\n", console.String())
}

func TestFormattedOutputAdapterShortSecretLeavesTextIntact(t *testing.T) {
	var console bytes.Buffer
	reporter := NewFormattedOutputAdapter(&console, "", "T")

	require.NoError(t, reporter.Section("IPA does not exist at the provided path"))
	require.NoError(t, reporter.Section("## Success"))

	assert.Equal(t, "\nIPA does not exist at the provided path\n\n\n## Success\n\n", console.String())
}

func TestFormattedOutputAdapterMasksOnlyWholeSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		text     string
		expected string
	}{
		{
			name:     "secret prefix is kept",
			secret:   "build-token",
			text:     "[Build's page](https://x/build-toke/1)",
			expected: "[Build's page](https://x/build-toke/1)\n",
		},
		{
			name:     "every occurrence is masked",
			secret:   "build-token",
			text:     "a build-token b build-tokenn",
			expected: "a ***** b *****n\n",
		},
		{
			name:     "secret absent",
			secret:   "build-token",
			text:     "You can find the Artifact on Bitrise, on the [Build's page](https://x/build1)",
			expected: "You can find the Artifact on Bitrise, on the [Build's page](https://x/build1)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console bytes.Buffer
			reporter := NewFormattedOutputAdapter(&console, "", tt.secret)

			require.NoError(t, reporter.Line(tt.text))
			assert.Equal(t, tt.expected, console.String())
		})
	}
}
