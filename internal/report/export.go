package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/newthinker/sigtrail/internal/core"
	"github.com/newthinker/sigtrail/internal/export"
)

// ReportPrefix is the sink path under which CSV reports are written.
const ReportPrefix = "reports"

// Export renders rows as CSV and writes them to sink under
// reports/<uuid>.csv. It returns the path written.
func Export(ctx context.Context, sink export.Sink, rows []Row) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return "", core.WrapError(core.ErrExportFailed, err)
	}

	path := fmt.Sprintf("%s/%s.csv", ReportPrefix, uuid.NewString())
	if err := sink.Write(ctx, path, buf.Bytes()); err != nil {
		return "", core.WrapError(core.ErrExportFailed, fmt.Errorf("writing %s: %w", path, err))
	}
	return path, nil
}
