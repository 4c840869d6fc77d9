// Package filesystem lists and reads spec sheet sources from a local directory.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
)

// DefaultPdftotext is the poppler binary used to extract PDF text.
const DefaultPdftotext = "pdftotext"

// maxStderr caps the command output kept in error messages.
const maxStderr = 2 << 10

// DefaultExtensions are the source types read when none are configured.
var DefaultExtensions = []string{"pdf", "txt"}

// Reader lists and reads PDF and TXT spec sheets.
type Reader struct {
	pdftotext string
	exts      map[string]struct{}
	runner    Runner
	logger    *zap.Logger
}

// NewReader creates a reader. Empty arguments select the defaults.
func NewReader(pdftotext string, extensions []string) *Reader {
	if pdftotext == "" {
		pdftotext = DefaultPdftotext
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts[e] = struct{}{}
		}
	}
	return &Reader{pdftotext: pdftotext, exts: exts, runner: execRunner{}, logger: zap.NewNop()}
}

// WithRunner replaces the external command runner.
func (r *Reader) WithRunner(runner Runner) *Reader {
	if runner != nil {
		r.runner = runner
	}
	return r
}

// WithLogger configures the reader logger.
func (r *Reader) WithLogger(l *zap.Logger) *Reader {
	if l != nil {
		r.logger = l
	}
	return r
}

// List walks dir and returns the matching source files in lexical order.
// Hidden files and directories are skipped.
func (r *Reader) List(ctx context.Context, dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("source directory: %w", domain.ErrInvalidInput)
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != dir && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !r.accepts(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	r.logger.Debug("Sources listed", zap.String("dir", dir), zap.Int("count", len(paths)))
	return paths, nil
}

// Read returns the plain text of one source. TXT files are read as-is,
// PDF files go through pdftotext.
func (r *Reader) Read(ctx context.Context, path string) (string, error) {
	switch ext(path) {
	case "txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("read %s: not UTF-8 text: %w", path, domain.ErrUnsupportedSource)
		}
		return string(data), nil
	case "pdf":
		return r.pdfToText(ctx, path)
	default:
		return "", fmt.Errorf("%s: %w", path, domain.ErrUnsupportedSource)
	}
}

func (r *Reader) pdfToText(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := r.runner.Run(ctx, r.pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", r.pdftotext, path, err, truncate(string(errb), maxStderr))
	}
	return string(out), nil
}

func (r *Reader) accepts(path string) bool {
	_, ok := r.exts[ext(path)]
	return ok
}

func ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}
