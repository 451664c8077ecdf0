package ports

import "context"

type ExporterPort interface {
	Export(ctx context.Context, key string, value string) error
}
