package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/soltools/sol-viewer/internal/repository"
)

// Service is a tiny façade over the job repository that produces XLSX
// bytes for exports.
type Service struct {
	jobsRepo repository.ParseJobRepository
	logger   *slog.Logger
}

func NewService(jobsRepo repository.ParseJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobsRepo: jobsRepo, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook (as bytes) listing every
// parse job joined with its vault file, newest first.
func (s *Service) ExportJobsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	reports, err := s.jobsRepo.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Vaults"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"File Path",
		"Email",
		"Password",
		"Status",
		"Outcome",
		"Token Count",
		"Duration (ms)",
		"Parsed At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rep := range reports {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, truncate(rep.SourcePath, 200))
		write(2, strOrEmpty(rep.Job.Email))
		write(3, strOrEmpty(rep.Job.Password))
		write(4, rep.Job.Status)
		write(5, strOrEmpty(rep.Job.Outcome))
		write(6, rep.Job.TokenCount)
		write(7, rep.Job.DurationMS)
		if rep.Job.FinishedAt != nil {
			write(8, rep.Job.FinishedAt.UTC().Format("2006-01-02 15:04:05"))
		} else {
			write(8, "")
		}

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 60) // path
	_ = f.SetColWidth(sheet, "B", "C", 28) // credentials
	_ = f.SetColWidth(sheet, "D", "E", 14) // status/outcome
	_ = f.SetColWidth(sheet, "H", "H", 20) // timestamp

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(reports),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
