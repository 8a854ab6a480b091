package documents

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/veldt-labs/arbiter/pkg/formatting"
)

// System defines the public contract for document intake operations.
type System interface {
	// List returns every PDF document in the input directory in name order.
	List(ctx context.Context) ([]Document, error)
	// ExtractText returns the document's plain text content.
	ExtractText(ctx context.Context, doc Document) (string, error)
}

type system struct {
	cfg     *Config
	maxSize int64
	logger  *slog.Logger
}

// NewSystem creates the document intake system.
func NewSystem(cfg *Config, logger *slog.Logger) System {
	return &system{
		cfg:     cfg,
		maxSize: cfg.MaxDocumentSizeBytes(),
		logger:  logger.With("system", "documents"),
	}
}

func (s *system) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read input directory %s: %w", ErrDocumentRead, s.cfg.Dir, err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %w", ErrDocumentRead, entry.Name(), err)
		}

		path := filepath.Join(s.cfg.Dir, entry.Name())
		pages, err := api.PageCountFile(path)
		if err != nil {
			// Extraction will surface the underlying failure for this run.
			s.logger.Warn("page count unavailable", "filename", entry.Name(), "error", err)
			pages = 0
		}

		docs = append(docs, Document{
			Filename:  entry.Name(),
			Path:      path,
			SizeBytes: info.Size(),
			PageCount: pages,
		})
	}

	slices.SortFunc(docs, func(a, b Document) int {
		return strings.Compare(a.Filename, b.Filename)
	})

	s.logger.Info("documents discovered", "dir", s.cfg.Dir, "count", len(docs))
	return docs, nil
}

func (s *system) ExtractText(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if doc.SizeBytes > s.maxSize {
		return "", fmt.Errorf("%w: %s is %s, limit %s", ErrDocumentTooLarge, doc.Filename,
			formatting.FormatBytes(doc.SizeBytes, 1), formatting.FormatBytes(s.maxSize, 0))
	}

	f, reader, err := pdf.Open(doc.Path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrDocumentRead, doc.Filename, err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract %s: %w", ErrDocumentRead, doc.Filename, err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrDocumentRead, doc.Filename, err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: %s contains no extractable text", ErrDocumentRead, doc.Filename)
	}

	s.logger.Info("document text extracted",
		"filename", doc.Filename,
		"pages", doc.PageCount,
		"chars", len(text),
	)
	return text, nil
}
