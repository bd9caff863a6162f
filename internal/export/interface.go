package export

import (
	"context"
	"fmt"

	"github.com/newthinker/sigtrail/internal/core"
)

// Sink stores exported reports
type Sink interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Sink types
const (
	TypeLocalFS = "localfs"
	TypeS3      = "s3"
)

// Config selects and configures a sink
type Config struct {
	Type string   `mapstructure:"type"`
	Path string   `mapstructure:"path"`
	S3   S3Config `mapstructure:"s3"`
}

// New creates the sink named by cfg.Type. An empty type disables export
// and returns a nil Sink.
func New(cfg Config) (Sink, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case TypeLocalFS:
		if cfg.Path == "" {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("export.path is required for localfs"))
		}
		return NewLocalFS(cfg.Path)
	case TypeS3:
		if cfg.S3.Bucket == "" {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("export.s3.bucket is required"))
		}
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown export type %q", cfg.Type))
	}
}
