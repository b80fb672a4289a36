package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes one sheet per account to an Excel workbook at path.
func WriteXLSX(path string, histories []AccountHistory) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, h := range histories {
		if _, err := f.NewSheet(h.Account); err != nil {
			return fmt.Errorf("creating sheet %s: %w", h.Account, err)
		}
		for rowIdx, row := range sheetValues(h) {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("building cell name: %w", err)
			}
			if err := f.SetSheetRow(h.Account, cell, &row); err != nil {
				return fmt.Errorf("writing sheet %s row %d: %w", h.Account, rowIdx+1, err)
			}
		}
	}

	// Drop the default sheet so the workbook holds only account sheets.
	if len(histories) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
