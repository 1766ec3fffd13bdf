package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/matchbot/internal/domain/model"
)

const sheetName = "Candidates"

var exportHeader = []any{"ID", "Name", "Role", "Location", "Score", "Experience", "Strengths", "Weaknesses"} //nolint:gochecknoglobals // static header

// Export writes the current candidates as an xlsx workbook to w.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	cands, err := s.Candidates(ctx)
	if err != nil {
		return err
	}
	return WriteWorkbook(w, cands)
}

// WriteWorkbook renders cands into a single sheet workbook.
func WriteWorkbook(w io.Writer, cands []model.DashboardCandidate) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	header := exportHeader
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "H1", bold); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	for i, c := range cands {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
		row := []any{
			c.ID, c.Name, c.Role, c.Location, c.Score, c.Experience,
			strings.Join(c.Strengths, ", "), strings.Join(c.Weaknesses, ", "),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "H", 22); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}
