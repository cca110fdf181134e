package sink

import (
	"context"
	"fmt"
	"strings"

	"csvanon/internal/csvio"
	"csvanon/internal/table"
)

func init() {
	Register("file", newFileSink)
}

// fileSink writes a delimited file via csvio (temp-then-rename).
type fileSink struct {
	path string
	opt  csvio.WriteOptions
}

func newFileSink(_ context.Context, cfg Config) (Sink, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("file sink: path is required")
	}
	return &fileSink{
		path: cfg.Path,
		opt: csvio.WriteOptions{
			Encoding:  cfg.Encoding,
			Delimiter: cfg.Delimiter,
		},
	}, nil
}

func (s *fileSink) Write(_ context.Context, t table.Table) error {
	return csvio.WriteTable(s.path, t, s.opt)
}

func (s *fileSink) Close() error { return nil }
