package port

import "context"

// FileStorage persists uploaded document contents. Paths are relative
// to the storage root; metadata stays in DocumentRepository.
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
}
