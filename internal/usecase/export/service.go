package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
)

// SheetName is the worksheet holding the catalog.
const SheetName = "Catalog"

// DefaultPageSize is the number of records fetched per store round trip.
const DefaultPageSize = 500

// Service renders the catalog as a spreadsheet.
type Service struct {
	repo     Repository
	pageSize int
	logger   *zap.Logger
}

// New creates an export service.
func New(repo Repository) *Service {
	return &Service{repo: repo, pageSize: DefaultPageSize, logger: zap.NewNop()}
}

// WithPageSize configures the store page size.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// WithLogger configures the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Headers returns the column titles in sheet order.
func Headers() []string {
	h := []string{"File"}
	for _, n := range field.All() {
		h = append(h, string(n))
	}
	return append(h, "IngestedAt")
}

// XLSX returns every catalog record as an XLSX workbook, one row per record
// ordered by identity. Absent fields are left blank; Price is numeric.
func (s *Service) XLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := Headers()
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i := range recs {
		if err := writeRow(f, i+2, &recs[i]); err != nil {
			return nil, err
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(SheetName, "A", "A", 32)
	_ = f.SetColWidth(SheetName, "B", last, 18)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("Catalog exported",
		zap.Int("rows", len(recs)),
		zap.Duration("duration", time.Since(start)),
	)
	return buf.Bytes(), nil
}

func (s *Service) all(ctx context.Context) ([]record.Record, error) {
	var out []record.Record
	for offset := 0; ; offset += s.pageSize {
		page, total, err := s.repo.Find(ctx, predicate.Predicate{}, offset, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		out = append(out, page...)
		if len(page) == 0 || offset+s.pageSize >= total {
			return out, nil
		}
	}
}

func writeRow(f *excelize.File, row int, rec *record.Record) error {
	values := []any{rec.Source()}
	fs := rec.Fields()
	for _, n := range field.All() {
		v := fs.Get(n)
		if i, ok := v.Int(); ok {
			values = append(values, i)
			continue
		}
		values = append(values, v.String())
	}
	values = append(values, rec.IngestedAt().UTC().Format(time.RFC3339))

	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}
