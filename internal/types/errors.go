package types

import (
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorKind classifies a failed deploy run by the stage that failed.
type ErrorKind string

const (
	ErrorKindConfig     ErrorKind = "config"
	ErrorKindExtraction ErrorKind = "extraction"
	ErrorKindRegistry   ErrorKind = "registry"
	ErrorKindTransfer   ErrorKind = "transfer"
	ErrorKindExport     ErrorKind = "export"
)

// FailureReason distinguishes registry failures that share a kind.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonTransport         FailureReason = "transport"
	ReasonStatus            FailureReason = "status"
	ReasonDecode            FailureReason = "decode"
	ReasonServiceError      FailureReason = "service-error"
	ReasonMissingUploadURL  FailureReason = "missing-upload-url"
	ReasonMissingID         FailureReason = "missing-id"
	ReasonFinishStatus      FailureReason = "finish-status"
	ReasonMissingPublicPage FailureReason = "missing-public-page"
)

// DeployError tags an underlying error with its kind and, for registry
// failures, the reason. Err is usually an errbuilder error.
type DeployError struct {
	Kind   ErrorKind
	Reason FailureReason
	Err    error
}

func (e *DeployError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " error"
	}
	return e.Err.Error()
}

func (e *DeployError) Unwrap() error { return e.Err }

// Message returns the human-readable failure text without the wrapped
// cause chain when the underlying error carries a message of its own.
func (e *DeployError) Message() string {
	var builder *errbuilder.ErrBuilder
	if errors.As(e.Err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return e.Error()
}

func NewConfigError(err error) error {
	return &DeployError{Kind: ErrorKindConfig, Err: err}
}

func NewExtractionError(err error) error {
	return &DeployError{Kind: ErrorKindExtraction, Err: err}
}

func NewRegistryError(reason FailureReason, err error) error {
	return &DeployError{Kind: ErrorKindRegistry, Reason: reason, Err: err}
}

func NewTransferError(err error) error {
	return &DeployError{Kind: ErrorKindTransfer, Err: err}
}

func NewExportError(err error) error {
	return &DeployError{Kind: ErrorKindExport, Err: err}
}

// KindOf returns the kind of the first DeployError in err's chain, or an
// empty kind when there is none.
func KindOf(err error) ErrorKind {
	var deployErr *DeployError
	if errors.As(err, &deployErr) {
		return deployErr.Kind
	}
	return ""
}

func ReasonOf(err error) FailureReason {
	var deployErr *DeployError
	if errors.As(err, &deployErr) {
		return deployErr.Reason
	}
	return ReasonNone
}
