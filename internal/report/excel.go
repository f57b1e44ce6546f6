// Package report renders the notification delivery log as an Excel
// workbook for the ops endpoint.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"campuspulse/internal/store"
)

const sheetName = "Notifications"

var columns = []string{"User ID", "Email", "Send Date", "Kind", "Sent At"}

// WriteNotificationLog writes the delivery records as an xlsx workbook.
func WriteNotificationLog(w io.Writer, entries []store.NotificationLogEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheetName, startCell, endCell, style)
	}

	for i, e := range entries {
		values := []interface{}{
			e.UserID,
			e.Email,
			e.SendDate.Format("2006-01-02"),
			string(e.Kind),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for j, val := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
