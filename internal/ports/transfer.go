package ports

import "context"

type TransferPort interface {
	Upload(ctx context.Context, filePath string, uploadURL string) error
}
