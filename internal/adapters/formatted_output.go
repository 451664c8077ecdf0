package adapters

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fluxcd/pkg/masktoken"

	"ios-deploy/internal/ports"
)

// FormattedOutputAdapter mirrors progress text to the console and, when
// FilePath is set, appends it to the step's formatted output file. Every
// secret is masked before anything is written.
type FormattedOutputAdapter struct {
	Console  io.Writer
	FilePath string
	Secrets  []string
}

func NewFormattedOutputAdapter(console io.Writer, filePath string, secrets ...string) FormattedOutputAdapter {
	if console == nil {
		console = os.Stdout
	}
	return FormattedOutputAdapter{
		Console:  console,
		FilePath: strings.TrimSpace(filePath),
		Secrets:  secrets,
	}
}

func (a FormattedOutputAdapter) Line(text string) error {
	return a.write(text + "\n")
}

func (a FormattedOutputAdapter) Section(text string) error {
	return a.write("\n" + text + "\n\n")
}

func (a FormattedOutputAdapter) write(content string) error {
	masked, err := a.mask(content)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(a.Console, masked); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write console output").
			WithCause(err)
	}
	if a.FilePath == "" {
		return nil
	}
	file, err := os.OpenFile(a.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to open formatted output file %s", a.FilePath)).
			WithCause(err)
	}
	defer file.Close()
	if _, err := io.WriteString(file, masked); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to append formatted output file %s", a.FilePath)).
			WithCause(err)
	}
	return nil
}

// minMaskedSecretLength keeps very short secrets from masking ordinary
// report text.
const minMaskedSecretLength = 4

// mask replaces exact occurrences of each secret. masktoken's pattern also
// matches the secret without its last character, so it is only applied to
// the secret itself to produce the replacement.
func (a FormattedOutputAdapter) mask(content string) (string, error) {
	masked := content
	for _, secret := range a.Secrets {
		if len(strings.TrimSpace(secret)) < minMaskedSecretLength || !strings.Contains(masked, secret) {
			continue
		}
		replacement, err := masktoken.MaskTokenFromString(secret, secret)
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to mask secret in output").
				WithCause(err)
		}
		masked = strings.ReplaceAll(masked, secret, replacement)
	}
	return masked, nil
}

var _ ports.ReporterPort = FormattedOutputAdapter{}
