package ports

import (
	"context"

	"ios-deploy/internal/types"
)

type MetadataExtractorPort interface {
	Extract(ctx context.Context, packagePath string) (types.PackageMetadata, error)
}
