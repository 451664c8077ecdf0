package app

import "ios-deploy/internal/types"

// Stage is a state of the deploy state machine. Stages only move forward.
type Stage string

const (
	StageValidatingInput    Stage = "validating-input"
	StageExtractingMetadata Stage = "extracting-metadata"
	StageCreatingArtifact   Stage = "creating-artifact"
	StageTransferringBinary Stage = "transferring-binary"
	StageFinishingArtifact  Stage = "finishing-artifact"
	StageReporting          Stage = "reporting"
	StageTerminal           Stage = "terminal"
)

type DeployResult struct {
	Outcome       types.Outcome
	Stages        []Stage
	Artifact      types.ArtifactHandle
	Metadata      *types.PackageMetadata
	FileSizeBytes int64
}

type ServiceConfig struct {
	HTTPTimeoutSec      int
	TransferBackend     types.TransferBackend
	CurlBinary          string
	EnvmanBinary        string
	FormattedOutputPath string
	Secrets             []string
}
