package ports

import (
	"context"

	"ios-deploy/internal/types"
)

type ArtifactRegistryPort interface {
	CreateArtifact(ctx context.Context, buildURL string, token string, fileName string) (types.ArtifactHandle, error)
	FinishArtifact(ctx context.Context, buildURL string, token string, artifactID string, req types.FinishRequest) (types.FinishOutcome, error)
}
