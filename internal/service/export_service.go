package service

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/openfoodfacts/open-prices/internal/models"
	"github.com/openfoodfacts/open-prices/internal/repository"
)

// Export kinds.
const (
	ExportPrices   = "prices"
	ExportProducts = "products"
)

// ErrExportExists is returned instead of overwriting an earlier export.
var ErrExportExists = errors.New("export already exists")

// ExportKinds lists every exportable table.
var ExportKinds = []string{ExportPrices, ExportProducts}

// ExportResult describes one written export file.
type ExportResult struct {
	Kind     string    `json:"kind"`
	RunID    string    `json:"run_id"`
	Location string    `json:"location"` // object key, or local path when storage is disabled
	Rows     int       `json:"rows"`
	Bytes    int       `json:"bytes"`
	Remote   bool      `json:"remote"`
	At       time.Time `json:"at"`
}

// ExportService dumps tables as gzip-compressed JSON Lines.
type ExportService struct {
	repos   *repository.Repositories
	storage *StorageService
	prefix  string
	dir     string
	logger  *slog.Logger
}

// NewExportService creates a new export service. Files go to storage when it
// is enabled, otherwise to dir.
func NewExportService(repos *repository.Repositories, storage *StorageService, prefix, dir string, logger *slog.Logger) *ExportService {
	return &ExportService{
		repos:   repos,
		storage: storage,
		prefix:  prefix,
		dir:     dir,
		logger:  logger,
	}
}

// Run exports the given kinds, or all of them when none is given. Every
// file of one run shares the same run id.
func (s *ExportService) Run(ctx context.Context, kinds ...string) ([]ExportResult, error) {
	if len(kinds) == 0 {
		kinds = ExportKinds
	}
	runID := ulid.Make().String()

	results := make([]ExportResult, 0, len(kinds))
	for _, kind := range kinds {
		res, err := s.export(ctx, kind, runID)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func (s *ExportService) export(ctx context.Context, kind, runID string) (*ExportResult, error) {
	if kind != ExportPrices && kind != ExportProducts {
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}
	name := fmt.Sprintf("%s-%s.jsonl.gz", kind, runID)
	remote := s.storage != nil && s.storage.IsEnabled()
	res := &ExportResult{Kind: kind, RunID: runID, Remote: remote}
	if remote {
		res.Location = path.Join(s.prefix, name)
		exists, err := s.storage.Exists(ctx, res.Location)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrExportExists, res.Location)
		}
	} else {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create export dir: %w", err)
		}
		res.Location = filepath.Join(s.dir, name)
		if _, err := os.Stat(res.Location); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrExportExists, res.Location)
		}
	}

	// Rows are streamed into a temp file, next to the destination for local
	// exports, so memory stays flat whatever the table size.
	tmpDir := s.dir
	if remote {
		tmpDir = os.TempDir()
	}
	tmp, err := os.CreateTemp(tmpDir, "."+kind+"-*.jsonl.gz")
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	rows, size, err := s.write(ctx, kind, tmp)
	if err != nil {
		return nil, err
	}
	res.Rows, res.Bytes = rows, int(size)

	if remote {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind %s export: %w", kind, err)
		}
		if err := s.storage.Put(ctx, Object{
			Key:             res.Location,
			Body:            tmp,
			Size:            size,
			ContentType:     "application/jsonl",
			ContentEncoding: "gzip",
		}); err != nil {
			return nil, err
		}
	} else {
		// CreateTemp makes the file private; exports are meant to be read.
		if err := tmp.Chmod(0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s export: %w", kind, err)
		}
		if err := tmp.Close(); err != nil {
			return nil, fmt.Errorf("failed to write %s export: %w", kind, err)
		}
		if err := os.Rename(tmp.Name(), res.Location); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", res.Location, err)
		}
	}
	res.At = time.Now().UTC()

	s.logger.Info("export written",
		"kind", kind,
		"run_id", runID,
		"location", res.Location,
		"rows", rows,
		"bytes", size,
	)
	return res, nil
}

// write encodes every row of kind into w as gzip-compressed JSON Lines and
// returns the row count and the compressed size.
func (s *ExportService) write(ctx context.Context, kind string, w io.Writer) (int, int64, error) {
	cw := &countingWriter{w: w}
	zw := gzip.NewWriter(cw)
	enc := json.NewEncoder(zw)

	rows := 0
	var err error
	switch kind {
	case ExportPrices:
		err = s.repos.Price.Each(ctx, func(p *models.Price) error {
			rows++
			return enc.Encode(p)
		})
	case ExportProducts:
		err = s.repos.Product.Each(ctx, func(p *models.Product) error {
			rows++
			return enc.Encode(p)
		})
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to export %s: %w", kind, err)
	}
	if err := zw.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to compress %s export: %w", kind, err)
	}
	return rows, cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
