package ports

import (
	"context"

	"shoplens/domain/dataset"
)

// DatasetLoader produces the immutable dataset the dashboard filters. Loaders
// are called once per source identity; the result is cached by SourceID.
type DatasetLoader interface {
	// Load reads the whole source into memory
	Load(ctx context.Context) (*dataset.Dataset, error)
	// SourceID identifies the current contents of the source. It changes
	// when the underlying data changes (file size/mtime, table name).
	SourceID() string
}
