package signals

import (
	"context"
	"fmt"
	"os"

	"github.com/newthinker/sigtrail/internal/core"
)

// Source produces a batch of signal records.
type Source interface {
	Name() string
	FetchSignals(ctx context.Context) ([]Record, error)
}

// FileSource reads a batch from a local JSON file.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string {
	return "file"
}

// FetchSignals reads and decodes the file.
func (f *FileSource) FetchSignals(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, core.WrapError(core.ErrSourceFailed, fmt.Errorf("reading %s: %w", f.Path, err))
	}
	return DecodeBatch(data)
}
