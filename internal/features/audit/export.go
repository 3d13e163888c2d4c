package audit

import (
	"fmt"

	"go-approvals/internal/common/models"

	"github.com/xuri/excelize/v2"
)

const timelineSheet = "Timeline"

var timelineColumns = []string{"Timestamp (UTC)", "Action", "Performed By", "Remarks"}

// ExportTimeline renders entries as an .xlsx workbook, one row per entry.
func ExportTimeline(task *models.ApprovalTask, logs []models.AuditLog) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(timelineSheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range timelineColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(timelineSheet, cell, col)
		f.SetCellStyle(timelineSheet, cell, cell, headerStyle)
	}

	for rowIdx, log := range logs {
		actor := log.ActorName
		if actor == "" {
			actor = "System"
			if log.PerformedBy != nil {
				actor = *log.PerformedBy
			}
		}
		values := []any{
			log.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			string(log.Action),
			actor,
			log.Remarks,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(timelineSheet, cell, v)
		}
	}

	f.SetColWidth(timelineSheet, "A", "C", 22)
	f.SetColWidth(timelineSheet, "D", "D", 60)

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buffer.Bytes(), fmt.Sprintf("task-%s-audit.xlsx", task.ID), nil
}
